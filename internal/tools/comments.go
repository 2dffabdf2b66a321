package tools

import (
	"context"
	"strings"

	"github.com/HendryAvila/planka-mcp/internal/comments"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── CreateCommentTool ──────────────────────────────────────────────────────

// CreateCommentTool handles the create_comment MCP tool.
type CreateCommentTool struct {
	manager *comments.Manager
}

// NewCreateCommentTool creates a CreateCommentTool.
func NewCreateCommentTool(m *comments.Manager) *CreateCommentTool {
	return &CreateCommentTool{manager: m}
}

// Definition returns the MCP tool definition for create_comment.
func (t *CreateCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("create_comment",
		mcp.WithDescription("Post a comment on a card as the configured Planka user."),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Comment text (Markdown)"),
		),
	)
}

// Handle processes the create_comment tool call.
func (t *CreateCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "card_id", "text"); res != nil {
		return res, nil
	}

	c, err := t.manager.CreateComment(ctx, req.GetString("card_id", ""), req.GetString("text", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

// ─── GetCommentsTool ────────────────────────────────────────────────────────

// GetCommentsTool handles the get_comments MCP tool.
type GetCommentsTool struct {
	manager *comments.Manager
}

// NewGetCommentsTool creates a GetCommentsTool.
func NewGetCommentsTool(m *comments.Manager) *GetCommentsTool {
	return &GetCommentsTool{manager: m}
}

// Definition returns the MCP tool definition for get_comments.
func (t *GetCommentsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_comments",
		mcp.WithDescription("List the comments on a card. Returns an empty list when the card has none or cannot be read."),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID"),
		),
	)
}

// Handle processes the get_comments tool call.
func (t *GetCommentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "card_id"); res != nil {
		return res, nil
	}
	return jsonResult(t.manager.ListComments(ctx, req.GetString("card_id", "")))
}

// ─── GetCommentTool ─────────────────────────────────────────────────────────

// GetCommentTool handles the get_comment MCP tool.
type GetCommentTool struct {
	manager *comments.Manager
}

// NewGetCommentTool creates a GetCommentTool.
func NewGetCommentTool(m *comments.Manager) *GetCommentTool {
	return &GetCommentTool{manager: m}
}

// Definition returns the MCP tool definition for get_comment.
func (t *GetCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("get_comment",
		mcp.WithDescription("Get one comment. Planka cannot read a comment on its own, so the card ID is required."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Comment ID"),
		),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card the comment is on"),
		),
	)
}

// Handle processes the get_comment tool call.
func (t *GetCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	// card_id is checked by the manager so the error names the comment.
	c, err := t.manager.GetComment(ctx, req.GetString("id", ""), req.GetString("card_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

// ─── UpdateCommentTool ──────────────────────────────────────────────────────

// UpdateCommentTool handles the update_comment MCP tool.
type UpdateCommentTool struct {
	manager *comments.Manager
}

// NewUpdateCommentTool creates an UpdateCommentTool.
func NewUpdateCommentTool(m *comments.Manager) *UpdateCommentTool {
	return &UpdateCommentTool{manager: m}
}

// Definition returns the MCP tool definition for update_comment.
func (t *UpdateCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("update_comment",
		mcp.WithDescription("Replace a comment's text."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Comment ID"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("New comment text"),
		),
	)
}

// Handle processes the update_comment tool call.
func (t *UpdateCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	c, err := t.manager.UpdateComment(ctx, req.GetString("id", ""), comments.CommentPatch{Text: text})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

// ─── DeleteCommentTool ──────────────────────────────────────────────────────

// DeleteCommentTool handles the delete_comment MCP tool.
type DeleteCommentTool struct {
	manager *comments.Manager
}

// NewDeleteCommentTool creates a DeleteCommentTool.
func NewDeleteCommentTool(m *comments.Manager) *DeleteCommentTool {
	return &DeleteCommentTool{manager: m}
}

// Definition returns the MCP tool definition for delete_comment.
func (t *DeleteCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_comment",
		mcp.WithDescription("Delete a comment."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Comment ID"),
		),
	)
}

// Handle processes the delete_comment tool call.
func (t *DeleteCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	ack, err := t.manager.DeleteComment(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ack)
}
