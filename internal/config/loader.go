// Package config loads the gateway's process-wide configuration: transport
// settings, the default model-agent provider, and the per-provider model
// table, with environment-variable overrides exactly the way the teacher's
// original LLM router config did.
package config

import (
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	kenv "github.com/knadh/koanf/providers/env"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// GatewayConfig is the root config structure: transport/server settings
// layered on top of the model table, the way hwpx_mcp's ServerConfig
// layers transport settings on top of model settings.
type GatewayConfig struct {
	Transport string                 `koanf:"transport"`
	Host      string                 `koanf:"host"`
	Port      int                    `koanf:"port"`
	Agent     AgentConfig            `koanf:"agent"`
	Models    map[string]ModelConfig `koanf:"models"`
}

// AgentConfig carries the external-model agent's process-wide defaults;
// a per-request runtime override can still replace any of these fields.
type AgentConfig struct {
	Provider     string `koanf:"provider"`
	Model        string `koanf:"model"`
	APIKey       string `koanf:"api_key"`
	MaxRounds    int    `koanf:"max_rounds"`
	SiteURL      string `koanf:"site_url"`
	SiteName     string `koanf:"site_name"`
}

// ModelConfig defines a single model entry in config.
type ModelConfig struct {
	Provider                 string `koanf:"provider"`
	Model                    string `koanf:"model"`
	APIKey                   string `koanf:"api_key"`
	SupportsTools            bool   `koanf:"supports_tools"`
	SupportsStructuredOutput bool   `koanf:"supports_structured_output"`
	ContextWindow            int    `koanf:"context_window"`
	MaxOutputTokens          int    `koanf:"max_output_tokens"`
}

var (
	loadOnce sync.Once
	loaded   *GatewayConfig
	loadErr  error
)

// Load loads configuration from path or default locations. Load is safe
// for repeated calls; only the first call's path/env state takes effect.
//
// Priority:
// 1. GATEWAY_CONFIG_PATH if set
// 2. ./config.yaml
func Load() (*GatewayConfig, error) {
	loadOnce.Do(func() {
		k := koanf.New(".")

		path := os.Getenv("GATEWAY_CONFIG_PATH")
		if path == "" {
			path = "config.yaml"
		}

		if err := k.Load(kfile.Provider(path), yaml.Parser()); err != nil {
			loadErr = err
			return
		}

		// Environment overrides: GATEWAY__AGENT__api_key=...,
		// GATEWAY__MODELS__openrouter__model=... Double underscore splits
		// levels; the GATEWAY prefix is kept as the root "gateway" key that
		// the config is unmarshaled from.
		if err := k.Load(kenv.Provider("GATEWAY__", "__", func(s string) string {
			return strings.ToLower(s)
		}), nil); err != nil {
			loadErr = err
			return
		}

		var cfg GatewayConfig
		if err := k.Unmarshal("gateway", &cfg); err != nil {
			loadErr = err
			return
		}

		applyDefaults(&cfg)
		resolveEnvVars(&cfg)

		loaded = &cfg
	})
	return loaded, loadErr
}

func applyDefaults(cfg *GatewayConfig) {
	if cfg.Transport == "" {
		cfg.Transport = "stdio"
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8787
	}
	if cfg.Agent.MaxRounds == 0 {
		cfg.Agent.MaxRounds = 8
	}
	if cfg.Agent.Provider == "" {
		cfg.Agent.Provider = "openrouter"
	}
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// resolveEnvVars resolves ${VAR} patterns in config string fields.
func resolveEnvVars(cfg *GatewayConfig) {
	cfg.Agent.APIKey = resolveEnvString(cfg.Agent.APIKey)
	cfg.Agent.Provider = resolveEnvString(cfg.Agent.Provider)
	cfg.Agent.Model = resolveEnvString(cfg.Agent.Model)
	for key, model := range cfg.Models {
		model.APIKey = resolveEnvString(model.APIKey)
		model.Provider = resolveEnvString(model.Provider)
		model.Model = resolveEnvString(model.Model)
		cfg.Models[key] = model
	}
}

// resolveEnvString replaces ${VAR} with environment variable values.
func resolveEnvString(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}
