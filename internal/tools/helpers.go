// Package tools provides MCP tool handlers for the knowledge engine and the
// series registry.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Domain failures (bad input, unknown ids) come back as tool errors, never as
// Go errors, so the agent can read and correct them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/metrics"
)

// Tool is implemented by every handler in this package.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// idArg extracts an entity id. Missing or non-numeric ids come back as 0,
// which the engine rejects as required. Fractional ids are an error.
func idArg(req mcp.CallToolRequest, key string) (int64, error) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return 0, nil
	}
	if v != math.Trunc(v) {
		return 0, &knowledge.ValidationInputError{Field: key, Message: "must be a whole number"}
	}
	return int64(v), nil
}

// idArgs reads several ids in order, stopping at the first bad one.
func idArgs(req mcp.CallToolRequest, keys ...string) ([]int64, error) {
	out := make([]int64, len(keys))
	for i, key := range keys {
		id, err := idArg(req, key)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// optionalBool returns nil when the argument is absent so the engine can
// apply its own default.
func optionalBool(req mcp.CallToolRequest, key string) *bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult turns an engine or store error into a tool error.
func errorResult(err error) *mcp.CallToolResult {
	switch {
	case knowledge.IsValidationInput(err), knowledge.IsNotFound(err):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("storage error: %v", err))
	}
}

// finish records the operation and builds the tool result.
func finish(name string, start time.Time, v any, err error) (*mcp.CallToolResult, error) {
	metrics.ObserveOperation(name, metrics.TransportMCP, start, err)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(v)
}
