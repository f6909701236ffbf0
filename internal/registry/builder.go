package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/hwpx-agentic/gateway/errors"
	"github.com/hwpx-agentic/gateway/internal/core"
)

// ToolProvider is the narrow backend capability the registry builder
// needs: a way to list the current tool catalog. The gateway adapts its
// Backend to this interface (backendToolProvider in gateway.go).
type ToolProvider interface {
	ListTools(ctx context.Context) ([]ToolDump, error)
}

// Build fetches the live tool list from backend, converts and fingerprints
// every entry, and returns the records sorted ascending by name. A partial
// list is never returned: any ListTools failure aborts the whole build.
func Build(ctx context.Context, backend ToolProvider) ([]core.ToolRecord, error) {
	dumps, err := backend.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrBackendUnavailable, err)
	}

	records := make([]core.ToolRecord, 0, len(dumps))
	for _, dump := range dumps {
		record, err := convertTool(dump)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}
