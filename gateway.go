// Package gateway is the public façade over the tool registry, hybrid
// retriever and hierarchical router: refresh, search, describe, call, and
// route_and_call, plus response normalization.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hwpx-agentic/gateway/internal/core"
	"github.com/hwpx-agentic/gateway/internal/registry"
	"github.com/hwpx-agentic/gateway/internal/router"
)

// Re-exported aliases so callers outside this module never need to import
// the internal packages directly.
type ToolRecord = core.ToolRecord
type GroupRoute = core.GroupRoute
type ToolScore = core.ToolScore
type GroupName = core.GroupName

// Option configures a Gateway at construction time.
type Option func(*Gateway)

// WithLogger sets a custom slog logger.
func WithLogger(l *slog.Logger) Option { return func(g *Gateway) { g.logger = l } }

// Gateway is the process-wide façade in front of one backend. The current
// registry and router are held behind atomic pointers: refresh replaces
// both together, and readers never observe a half-built pair.
type Gateway struct {
	backend Backend
	logger  *slog.Logger

	refreshMu sync.Mutex
	registry  atomic.Pointer[[]core.ToolRecord]
	router    atomic.Pointer[router.HierarchicalRouter]
}

// New builds a Gateway over backend. The registry is empty until the
// first RefreshRegistry call (explicit, or implicit on first use).
func New(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{backend: backend, logger: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// RefreshResult is the response envelope for RefreshRegistry.
type RefreshResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// RefreshRegistry rebuilds the registry and router atomically. A
// BackendUnavailable failure propagates as an error; the prior registry
// (if any) remains visible to readers until a build succeeds.
func (g *Gateway) RefreshRegistry(ctx context.Context) (RefreshResult, error) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	records, err := registry.Build(ctx, backendToolProvider{g.backend})
	if err != nil {
		return RefreshResult{}, err
	}

	newRouter := router.New(records)
	g.registry.Store(&records)
	g.router.Store(newRouter)

	g.logger.Info("registry refreshed", slog.Int("tool_count", len(records)))
	return RefreshResult{Success: true, Count: len(records)}, nil
}

// ensureRegistry performs the implicit first-use refresh spec.md's gateway
// methods rely on; it is a no-op once a registry has been built.
func (g *Gateway) ensureRegistry(ctx context.Context) error {
	if g.registry.Load() != nil {
		return nil
	}
	_, err := g.RefreshRegistry(ctx)
	return err
}

func (g *Gateway) currentRecords() []core.ToolRecord {
	if p := g.registry.Load(); p != nil {
		return *p
	}
	return nil
}

func (g *Gateway) currentRouter() *router.HierarchicalRouter {
	return g.router.Load()
}

func (g *Gateway) recordByID(toolID string) (core.ToolRecord, bool) {
	for _, record := range g.currentRecords() {
		if record.ToolID == toolID {
			return record, true
		}
	}
	return core.ToolRecord{}, false
}

// SearchResult is one hit in a tool_search response.
type SearchResult struct {
	ToolID      string         `json:"tool_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Group       core.GroupName `json:"group"`
	Score       float64        `json:"score"`
	Reason      string         `json:"reason"`
}

// RouteInfo is the group decision attached to a search or routed call.
type RouteInfo struct {
	Group      core.GroupName `json:"group"`
	Reason     string         `json:"reason"`
	Confidence float64        `json:"confidence"`
}

// SearchResponse is the response envelope for ToolSearch.
type SearchResponse struct {
	Success bool           `json:"success"`
	Query   string         `json:"query,omitempty"`
	Route   RouteInfo      `json:"route,omitempty"`
	Results []SearchResult `json:"results,omitempty"`
	Message string         `json:"message,omitempty"`
}

// ToolSearch ensures the registry is built, then runs a hybrid search
// either within a caller-supplied group (confidence fixed at 1.0, reason
// "user_selected") or via the router's own group decision. An unrecognized
// group name is an expected failure, not an error.
func (g *Gateway) ToolSearch(ctx context.Context, query string, k int, group string) (SearchResponse, error) {
	if err := g.ensureRegistry(ctx); err != nil {
		return SearchResponse{}, err
	}
	r := g.currentRouter()

	var (
		scores []core.ToolScore
		route  RouteInfo
	)
	if group != "" {
		selected := core.GroupName(group)
		if !core.IsValidGroup(selected) {
			return SearchResponse{Success: false, Message: "invalid group: " + group}, nil
		}
		scores = r.SelectTools(query, selected, k)
		route = RouteInfo{Group: selected, Reason: "user_selected", Confidence: 1.0}
	} else {
		groupRoute := r.RouteGroup(query)
		scores = r.SelectTools(query, groupRoute.Group, k)
		route = RouteInfo{Group: groupRoute.Group, Reason: groupRoute.Reason, Confidence: groupRoute.Confidence}
	}

	results := make([]SearchResult, 0, len(scores))
	for _, score := range scores {
		record, ok := g.recordByID(score.ToolID)
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			ToolID:      record.ToolID,
			Name:        record.Name,
			Description: record.Description,
			Group:       record.Group,
			Score:       score.Score,
			Reason:      score.Reason,
		})
	}

	return SearchResponse{Success: true, Query: query, Route: route, Results: results}, nil
}

// DescribedTool is the full record returned by ToolDescribe.
type DescribedTool struct {
	ToolID       string         `json:"tool_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Group        core.GroupName `json:"group"`
	Tags         []string       `json:"tags"`
	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
	SchemaHash   string         `json:"schema_hash"`
}

// DescribeResponse is the response envelope for ToolDescribe.
type DescribeResponse struct {
	Success bool           `json:"success"`
	Tool    *DescribedTool `json:"tool,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (g *Gateway) ToolDescribe(ctx context.Context, toolID string) (DescribeResponse, error) {
	if err := g.ensureRegistry(ctx); err != nil {
		return DescribeResponse{}, err
	}
	record, ok := g.recordByID(toolID)
	if !ok {
		return DescribeResponse{Success: false, Message: "tool_id not found: " + toolID}, nil
	}
	return DescribeResponse{
		Success: true,
		Tool: &DescribedTool{
			ToolID:       record.ToolID,
			Name:         record.Name,
			Description:  record.Description,
			Group:        record.Group,
			Tags:         append([]string(nil), record.Tags...),
			InputSchema:  record.InputSchema,
			OutputSchema: record.OutputSchema,
			SchemaHash:   record.SchemaHash,
		},
	}, nil
}

// CallResponse is the response envelope for ToolCall.
type CallResponse struct {
	Success  bool   `json:"success"`
	ToolID   string `json:"tool_id,omitempty"`
	ToolName string `json:"tool_name,omitempty"`
	Result   any    `json:"result,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ToolCall resolves tool_id to a name and forwards to
// backend.CallTool. Backend errors propagate; an unknown tool_id is an
// expected failure returned in the envelope.
func (g *Gateway) ToolCall(ctx context.Context, toolID string, arguments map[string]any) (CallResponse, error) {
	if err := g.ensureRegistry(ctx); err != nil {
		return CallResponse{}, err
	}
	record, ok := g.recordByID(toolID)
	if !ok {
		return CallResponse{Success: false, Message: "tool_id not found: " + toolID}, nil
	}

	raw, err := g.backend.CallTool(ctx, record.Name, arguments)
	if err != nil {
		return CallResponse{}, err
	}
	return CallResponse{
		Success:  true,
		ToolID:   toolID,
		ToolName: record.Name,
		Result:   normalizeToolResult(raw),
	}, nil
}

// SelectedTool names the candidate RouteAndCall actually invoked.
type SelectedTool struct {
	ToolID string  `json:"tool_id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
}

// RouteAndCallResponse is the response envelope for RouteAndCall.
type RouteAndCallResponse struct {
	Success  bool          `json:"success"`
	Route    RouteInfo     `json:"route,omitempty"`
	Selected *SelectedTool `json:"selected,omitempty"`
	Result   any           `json:"result,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// RouteAndCall routes a query to a group, picks the first in-group
// candidate, and calls it with arguments (defaulting to an empty map).
func (g *Gateway) RouteAndCall(ctx context.Context, query string, arguments map[string]any, topK int) (RouteAndCallResponse, error) {
	if err := g.ensureRegistry(ctx); err != nil {
		return RouteAndCallResponse{}, err
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	if topK < 1 {
		topK = 1
	}

	r := g.currentRouter()
	route := r.RouteGroup(query)
	routeInfo := RouteInfo{Group: route.Group, Reason: route.Reason, Confidence: route.Confidence}

	candidates := r.SelectTools(query, route.Group, topK)
	if len(candidates) == 0 {
		return RouteAndCallResponse{Success: false, Route: routeInfo, Message: "no candidate tools found"}, nil
	}

	selected := candidates[0]
	record, ok := g.recordByID(selected.ToolID)
	if !ok {
		return RouteAndCallResponse{Success: false, Message: "selected tool missing from registry"}, nil
	}

	raw, err := g.backend.CallTool(ctx, record.Name, arguments)
	if err != nil {
		return RouteAndCallResponse{}, err
	}

	return RouteAndCallResponse{
		Success: true,
		Route:   routeInfo,
		Selected: &SelectedTool{
			ToolID: record.ToolID,
			Name:   record.Name,
			Score:  selected.Score,
		},
		Result: normalizeToolResult(raw),
	}, nil
}

// contentItem is the shape of one element of a sequence-valued backend
// result: a textual payload to try as JSON, or a model-dump-capable value.
type contentItem interface {
	Text() (string, bool)
}

type modelDumper interface {
	ModelDump() map[string]any
}

// normalizeToolResult mirrors the Python gateway's result normalization:
// sequence results have each item's textual payload JSON-decoded when
// possible, or a model-dump substituted when available; everything else
// passes through unchanged. Normalizing an already-normalized (plain map
// or slice of maps) result is the identity.
func normalizeToolResult(result any) any {
	items, ok := result.([]any)
	if !ok {
		return result
	}

	normalized := make([]any, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case contentItem:
			if text, ok := v.Text(); ok {
				normalized = append(normalized, parseJSONOrKeep(text))
				continue
			}
			normalized = append(normalized, item)
		case modelDumper:
			normalized = append(normalized, v.ModelDump())
		default:
			normalized = append(normalized, item)
		}
	}
	return normalized
}

func parseJSONOrKeep(text string) any {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed
	}
	return text
}

// backendToolProvider adapts Backend to registry.ToolProvider, converting
// the public ToolDump shape to the internal registry.ToolDump shape.
type backendToolProvider struct {
	backend Backend
}

func (b backendToolProvider) ListTools(ctx context.Context) ([]registry.ToolDump, error) {
	dumps, err := b.backend.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]registry.ToolDump, len(dumps))
	for i, d := range dumps {
		out[i] = registry.ToolDump{
			Name:         d.Name,
			Description:  d.Description,
			InputSchema:  coerceJSONObject(d.InputSchema),
			OutputSchema: coerceJSONObject(d.OutputSchema),
		}
	}
	return out, nil
}

// coerceJSONObject round-trips v through JSON so any concrete struct or
// map type a Backend returns ends up as a plain map[string]any, matching
// the Python original's isinstance(value, dict) coercion.
func coerceJSONObject(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(map[string]any); ok {
		return v
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(encoded, &obj); err != nil {
		return nil
	}
	return obj
}

// Registry exposes a read-only snapshot of the current tool catalog, for
// callers (like the Tool-Only Agent) that need the full record list rather
// than a search result.
func (g *Gateway) Registry() []core.ToolRecord {
	records := g.currentRecords()
	out := make([]core.ToolRecord, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RawBackend returns the backend this Gateway wraps, for callers that need
// the DirectDispatcher fast path alongside gateway-normalized calls.
func (g *Gateway) RawBackend() Backend { return g.backend }
