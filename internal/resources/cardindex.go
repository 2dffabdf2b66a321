// Package resources implements MCP resource handlers for planka-mcp.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (planka://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/planka-mcp/internal/cardindex"
	"github.com/mark3labs/mcp-go/mcp"
)

// CardIndexURI addresses the task list to card mapping.
const CardIndexURI = "planka://card-index"

// Handler manages Planka resource endpoints.
type Handler struct {
	index cardindex.Index
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(index cardindex.Index) *Handler {
	return &Handler{index: index}
}

// CardIndexResource returns the MCP resource definition for the card index.
func (h *Handler) CardIndexResource() mcp.Resource {
	return mcp.NewResource(
		CardIndexURI,
		"Task list card index",
		mcp.WithResourceDescription("Checklists created through this server and the card each one lives on"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCardIndex returns every known task list to card entry as JSON.
func (h *Handler) HandleCardIndex(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := h.index.Entries(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling card index: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
