package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/planka-mcp/internal/tasklists"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── CreateTaskListTool ─────────────────────────────────────────────────────

// CreateTaskListTool handles the create_task_list MCP tool.
type CreateTaskListTool struct {
	manager *tasklists.Manager
}

// NewCreateTaskListTool creates a CreateTaskListTool.
func NewCreateTaskListTool(m *tasklists.Manager) *CreateTaskListTool {
	return &CreateTaskListTool{manager: m}
}

// Definition returns the MCP tool definition for create_task_list.
func (t *CreateTaskListTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task_list",
		mcp.WithDescription("Create a checklist (task list) on a card. Items are added with create_task."),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("ID of the card the checklist belongs to"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Checklist name"),
		),
		mcp.WithNumber("position",
			mcp.Description("Sort position (default 65535)"),
		),
	)
}

// Handle processes the create_task_list tool call.
func (t *CreateTaskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "card_id", "name"); res != nil {
		return res, nil
	}

	tl, err := t.manager.CreateTaskList(ctx, req.GetString("card_id", ""), req.GetString("name", ""), floatArg(req, "position"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tl)
}

// ─── BatchCreateTaskListsTool ───────────────────────────────────────────────

// BatchCreateTaskListsTool handles the batch_create_task_lists MCP tool.
type BatchCreateTaskListsTool struct {
	manager *tasklists.Manager
}

// NewBatchCreateTaskListsTool creates a BatchCreateTaskListsTool.
func NewBatchCreateTaskListsTool(m *tasklists.Manager) *BatchCreateTaskListsTool {
	return &BatchCreateTaskListsTool{manager: m}
}

// batchItem is the wire shape of one batch_create_task_lists entry.
type batchItem struct {
	CardID   string   `json:"card_id"`
	Name     string   `json:"name"`
	Position *float64 `json:"position,omitempty"`
}

// Definition returns the MCP tool definition for batch_create_task_lists.
func (t *BatchCreateTaskListsTool) Definition() mcp.Tool {
	return mcp.NewTool("batch_create_task_lists",
		mcp.WithDescription(
			"Create several checklists in one call, in order. "+
				"Entries without a position get 65535 × (index + 1) so they keep their input order. "+
				"One failing entry does not stop the rest: the result lists successes and failures with their index.",
		),
		mcp.WithArray("task_lists",
			mcp.Required(),
			mcp.Description("Checklists to create"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"card_id":  map[string]any{"type": "string", "description": "Card ID"},
					"name":     map[string]any{"type": "string", "description": "Checklist name"},
					"position": map[string]any{"type": "number", "description": "Optional sort position"},
				},
				"required": []string{"card_id", "name"},
			}),
		),
	)
}

// Handle processes the batch_create_task_lists tool call.
func (t *BatchCreateTaskListsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var items []batchItem
	if err := bindArg(req, "task_lists", &items); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultError("'task_lists' must contain at least one entry"), nil
	}

	inputs := make([]tasklists.TaskListInput, len(items))
	for i, it := range items {
		if it.CardID == "" || it.Name == "" {
			return mcp.NewToolResultError(fmt.Sprintf("task_lists[%d]: 'card_id' and 'name' are required", i)), nil
		}
		inputs[i] = tasklists.TaskListInput{CardID: it.CardID, Name: it.Name, Position: it.Position}
	}

	res, err := t.manager.BatchCreateTaskLists(ctx, inputs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// ─── GetTaskListsTool ───────────────────────────────────────────────────────

// GetTaskListsTool handles the get_task_lists MCP tool.
type GetTaskListsTool struct {
	manager *tasklists.Manager
}

// NewGetTaskListsTool creates a GetTaskListsTool.
func NewGetTaskListsTool(m *tasklists.Manager) *GetTaskListsTool {
	return &GetTaskListsTool{manager: m}
}

// Definition returns the MCP tool definition for get_task_lists.
func (t *GetTaskListsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task_lists",
		mcp.WithDescription("List the checklists on a card. Returns an empty list when the card has none or cannot be read."),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID"),
		),
	)
}

// Handle processes the get_task_lists tool call.
func (t *GetTaskListsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "card_id"); res != nil {
		return res, nil
	}
	return jsonResult(t.manager.ListTaskLists(ctx, req.GetString("card_id", "")))
}

// ─── GetTaskListTool ────────────────────────────────────────────────────────

// GetTaskListTool handles the get_task_list MCP tool.
type GetTaskListTool struct {
	manager *tasklists.Manager
}

// NewGetTaskListTool creates a GetTaskListTool.
func NewGetTaskListTool(m *tasklists.Manager) *GetTaskListTool {
	return &GetTaskListTool{manager: m}
}

// Definition returns the MCP tool definition for get_task_list.
func (t *GetTaskListTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task_list",
		mcp.WithDescription(
			"Get one checklist by ID. Planka has no direct checklist lookup, so the card is read and scanned. "+
				"card_id may be omitted only for checklists created earlier in this session.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Checklist ID"),
		),
		mcp.WithString("card_id",
			mcp.Description("Card the checklist is on"),
		),
	)
}

// Handle processes the get_task_list tool call.
func (t *GetTaskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	tl, err := t.manager.GetTaskList(ctx, req.GetString("id", ""), req.GetString("card_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tl)
}

// ─── UpdateTaskListTool ─────────────────────────────────────────────────────

// UpdateTaskListTool handles the update_task_list MCP tool.
type UpdateTaskListTool struct {
	manager *tasklists.Manager
}

// NewUpdateTaskListTool creates an UpdateTaskListTool.
func NewUpdateTaskListTool(m *tasklists.Manager) *UpdateTaskListTool {
	return &UpdateTaskListTool{manager: m}
}

// Definition returns the MCP tool definition for update_task_list.
func (t *UpdateTaskListTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task_list",
		mcp.WithDescription("Rename or reposition a checklist. Only provided fields are changed."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Checklist ID"),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
		),
		mcp.WithNumber("position",
			mcp.Description("New sort position"),
		),
	)
}

// Handle processes the update_task_list tool call.
func (t *UpdateTaskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	patch := tasklists.TaskListPatch{
		Name:     stringArg(req, "name"),
		Position: floatArg(req, "position"),
	}
	if patch.Name == nil && patch.Position == nil {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	if patch.Name != nil && *patch.Name == "" {
		return mcp.NewToolResultError("'name' cannot be empty"), nil
	}

	tl, err := t.manager.UpdateTaskList(ctx, req.GetString("id", ""), patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tl)
}

// ─── DeleteTaskListTool ─────────────────────────────────────────────────────

// DeleteTaskListTool handles the delete_task_list MCP tool.
type DeleteTaskListTool struct {
	manager *tasklists.Manager
}

// NewDeleteTaskListTool creates a DeleteTaskListTool.
func NewDeleteTaskListTool(m *tasklists.Manager) *DeleteTaskListTool {
	return &DeleteTaskListTool{manager: m}
}

// Definition returns the MCP tool definition for delete_task_list.
func (t *DeleteTaskListTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task_list",
		mcp.WithDescription("Delete a checklist and, on the Planka side, all of its items."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Checklist ID"),
		),
	)
}

// Handle processes the delete_task_list tool call.
func (t *DeleteTaskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "id"); res != nil {
		return res, nil
	}

	ack, err := t.manager.DeleteTaskList(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ack)
}

// ─── CreateTaskListWithTasksTool ────────────────────────────────────────────

// CreateTaskListWithTasksTool handles the create_task_list_with_tasks MCP tool.
type CreateTaskListWithTasksTool struct {
	manager *tasklists.Manager
}

// NewCreateTaskListWithTasksTool creates a CreateTaskListWithTasksTool.
func NewCreateTaskListWithTasksTool(m *tasklists.Manager) *CreateTaskListWithTasksTool {
	return &CreateTaskListWithTasksTool{manager: m}
}

// taskItem is the wire shape of one create_task_list_with_tasks entry.
type taskItem struct {
	Name        string `json:"name"`
	IsCompleted *bool  `json:"is_completed,omitempty"`
}

// Definition returns the MCP tool definition for create_task_list_with_tasks.
func (t *CreateTaskListWithTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task_list_with_tasks",
		mcp.WithDescription(
			"Create a checklist on a card and fill it with items, in order. "+
				"Not transactional: if an item fails, the checklist and the items created before it stay on the card "+
				"and the error lists them.",
		),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("Card ID"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Checklist name"),
		),
		mcp.WithArray("tasks",
			mcp.Required(),
			mcp.Description("Items to create, in display order"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":         map[string]any{"type": "string", "description": "Item text"},
					"is_completed": map[string]any{"type": "boolean", "description": "Start checked (default false)"},
				},
				"required": []string{"name"},
			}),
		),
	)
}

// Handle processes the create_task_list_with_tasks tool call.
func (t *CreateTaskListWithTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := required(req, "card_id", "name"); res != nil {
		return res, nil
	}

	var items []taskItem
	if err := bindArg(req, "tasks", &items); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inputs := make([]tasklists.TaskInput, len(items))
	for i, it := range items {
		if it.Name == "" {
			return mcp.NewToolResultError(fmt.Sprintf("tasks[%d]: 'name' is required", i)), nil
		}
		inputs[i] = tasklists.TaskInput{Name: it.Name, IsCompleted: it.IsCompleted}
	}

	res, err := t.manager.CreateTaskListWithTasks(ctx, req.GetString("card_id", ""), req.GetString("name", ""), inputs)
	if err != nil {
		var partial *tasklists.PartialCreateError
		if errors.As(err, &partial) {
			return partialResult(partial), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// partialResult reports a half-finished compound create with what was left
// behind, so the agent can finish or clean up.
func partialResult(e *tasklists.PartialCreateError) *mcp.CallToolResult {
	left, err := json.MarshalIndent(tasklists.TaskListWithTasks{TaskList: e.TaskList, Tasks: e.Created}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(e.Error())
	}
	return mcp.NewToolResultError(e.Error() + "\n\nLeft on the card:\n" + string(left))
}
