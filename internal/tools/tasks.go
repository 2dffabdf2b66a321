package tools

import (
	"context"

	"github.com/HendryAvila/planka-mcp/internal/tasklists"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── CreateTaskTool ─────────────────────────────────────────────────────────

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	manager *tasklists.Manager
}

// NewCreateTaskTool creates a CreateTaskTool.
func NewCreateTaskTool(m *tasklists.Manager) *CreateTaskTool {
	return &CreateTaskTool{manager: m}
}

// Definition returns the MCP tool definition for create_task.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Add an item to an existing checklist."),
		mcp.WithString("task_list_id",
			mcp.Required(),
			mcp.Description("Checklist ID"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Item text"),
		),
		mcp.WithNumber("position",
			mcp.Description("Sort position (default 65535)"),
		),
		mcp.WithBoolean("is_completed",
			mcp.Description("Start checked (default false)"),
		),
	)
}

// Handle processes the create_task tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "task_list_id", "name"); res != nil {
		return res, nil
	}

	task, err := t.manager.CreateTask(ctx,
		req.GetString("task_list_id", ""),
		req.GetString("name", ""),
		floatArg(req, "position"),
		boolArg(req, "is_completed"),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(task)
}

// ─── UpdateTaskTool ─────────────────────────────────────────────────────────

// UpdateTaskTool handles the update_task MCP tool.
type UpdateTaskTool struct {
	manager *tasklists.Manager
}

// NewUpdateTaskTool creates an UpdateTaskTool.
func NewUpdateTaskTool(m *tasklists.Manager) *UpdateTaskTool {
	return &UpdateTaskTool{manager: m}
}

// Definition returns the MCP tool definition for update_task.
func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription("Change an item's text, position or checked state. Only provided fields are changed."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Item ID"),
		),
		mcp.WithString("name",
			mcp.Description("New text"),
		),
		mcp.WithNumber("position",
			mcp.Description("New sort position"),
		),
		mcp.WithBoolean("is_completed",
			mcp.Description("Checked state"),
		),
	)
}

// Handle processes the update_task tool call.
func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	patch := tasklists.TaskPatch{
		Name:        stringArg(req, "name"),
		Position:    floatArg(req, "position"),
		IsCompleted: boolArg(req, "is_completed"),
	}
	if patch.Name == nil && patch.Position == nil && patch.IsCompleted == nil {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	if patch.Name != nil && *patch.Name == "" {
		return mcp.NewToolResultError("'name' cannot be empty"), nil
	}

	task, err := t.manager.UpdateTask(ctx, req.GetString("id", ""), patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(task)
}

// ─── CompleteTaskTool ───────────────────────────────────────────────────────

// CompleteTaskTool handles the complete_task MCP tool.
type CompleteTaskTool struct {
	manager *tasklists.Manager
}

// NewCompleteTaskTool creates a CompleteTaskTool.
func NewCompleteTaskTool(m *tasklists.Manager) *CompleteTaskTool {
	return &CompleteTaskTool{manager: m}
}

// Definition returns the MCP tool definition for complete_task.
func (t *CompleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Check or uncheck a checklist item."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Item ID"),
		),
		mcp.WithBoolean("completed",
			mcp.Description("true to check, false to uncheck (default true)"),
			mcp.DefaultBool(true),
		),
	)
}

// Handle processes the complete_task tool call.
func (t *CompleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	task, err := t.manager.CompleteTask(ctx, req.GetString("id", ""), req.GetBool("completed", true))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(task)
}

// ─── DeleteTaskTool ─────────────────────────────────────────────────────────

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	manager *tasklists.Manager
}

// NewDeleteTaskTool creates a DeleteTaskTool.
func NewDeleteTaskTool(m *tasklists.Manager) *DeleteTaskTool {
	return &DeleteTaskTool{manager: m}
}

// Definition returns the MCP tool definition for delete_task.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a checklist item."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Item ID"),
		),
	)
}

// Handle processes the delete_task tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	ack, err := t.manager.DeleteTask(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ack)
}
