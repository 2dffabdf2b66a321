// Package tools implements the MCP tool handlers for Planka checklists,
// checklist items and card comments.
//
// Each tool follows the same shape:
// - A struct with its manager injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() validates arguments, calls one manager operation and renders
//   the result as indented JSON
//
// Argument problems and Planka failures are reported as tool errors
// (mcp.NewToolResultError), never as Go errors, so the agent sees them.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// floatArg returns a pointer to a numeric argument, or nil when absent.
// JSON numbers arrive as float64.
func floatArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// boolArg returns a pointer to a boolean argument, or nil when absent.
func boolArg(req mcp.CallToolRequest, key string) *bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// stringArg returns a pointer to a string argument, or nil when absent.
// An explicitly empty string is returned as a pointer to "".
func stringArg(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// bindArg decodes a structured argument (array or object) into target.
func bindArg(req mcp.CallToolRequest, key string, target any) error {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return fmt.Errorf("'%s' is required", key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("'%s' could not be read: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("'%s' has the wrong shape: %w", key, err)
	}
	return nil
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// required reports the first missing string argument as a tool error.
func required(req mcp.CallToolRequest, keys ...string) *mcp.CallToolResult {
	for _, key := range keys {
		if req.GetString(key, "") == "" {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
		}
	}
	return nil
}
