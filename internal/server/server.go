// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the Planka gateway, the card
// index and the managers, and injects them into the tools, prompts and
// resources. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/HendryAvila/planka-mcp/internal/cardindex"
	"github.com/HendryAvila/planka-mcp/internal/comments"
	"github.com/HendryAvila/planka-mcp/internal/config"
	"github.com/HendryAvila/planka-mcp/internal/planka"
	"github.com/HendryAvila/planka-mcp/internal/prompts"
	"github.com/HendryAvila/planka-mcp/internal/resources"
	"github.com/HendryAvila/planka-mcp/internal/tasklists"
	"github.com/HendryAvila/planka-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Version is set at build time via ldflags.
var Version = "dev"

// tool is the shape every handler in internal/tools shares.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server from cfg. It validates the
// configuration, builds the Planka client and opens the card index.
//
// The returned cleanup function closes the card index and must be called
// on shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config, log logrus.FieldLogger) (*server.MCPServer, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, noop, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := planka.NewClient(planka.Config{
		BaseURL:   cfg.Planka.BaseURL,
		Token:     cfg.Planka.Token,
		Email:     cfg.Planka.Email,
		Password:  cfg.Planka.Password,
		Timeout:   cfg.Planka.Timeout,
		RateLimit: cfg.Planka.RateLimit,
		UserAgent: "planka-mcp/" + Version,
	}, log)
	if err != nil {
		return nil, noop, fmt.Errorf("creating planka client: %w", err)
	}

	index, cleanup, err := openIndex(cfg.CardIndexPath, log)
	if err != nil {
		return nil, noop, err
	}

	return build(client, index, log), cleanup, nil
}

// openIndex returns the SQLite index when a path is configured and the
// in-memory one otherwise.
func openIndex(path string, log logrus.FieldLogger) (cardindex.Index, func(), error) {
	if path == "" {
		return cardindex.NewMemory(), noop, nil
	}

	idx, err := cardindex.OpenSQLite(path)
	if err != nil {
		return nil, noop, fmt.Errorf("opening card index: %w", err)
	}
	log.WithField("path", path).Info("card index persisted to SQLite")

	cleanup := func() {
		if err := idx.Close(); err != nil {
			log.WithError(err).Warn("card index close failed")
		}
	}
	return idx, cleanup, nil
}

// build registers every tool, prompt and resource over the given gateway
// and index.
func build(api planka.Requester, index cardindex.Index, log logrus.FieldLogger) *server.MCPServer {
	s := server.NewMCPServer(
		"planka-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	taskManager := tasklists.NewManager(api, index, log)
	commentManager := comments.NewManager(api, log)

	// --- Register checklist tools ---

	register(s,
		tools.NewCreateTaskListTool(taskManager),
		tools.NewBatchCreateTaskListsTool(taskManager),
		tools.NewGetTaskListsTool(taskManager),
		tools.NewGetTaskListTool(taskManager),
		tools.NewUpdateTaskListTool(taskManager),
		tools.NewDeleteTaskListTool(taskManager),
		tools.NewCreateTaskListWithTasksTool(taskManager),
	)

	// --- Register checklist item tools ---

	register(s,
		tools.NewCreateTaskTool(taskManager),
		tools.NewUpdateTaskTool(taskManager),
		tools.NewCompleteTaskTool(taskManager),
		tools.NewDeleteTaskTool(taskManager),
	)

	// --- Register comment tools ---

	register(s,
		tools.NewCreateCommentTool(commentManager),
		tools.NewGetCommentsTool(commentManager),
		tools.NewGetCommentTool(commentManager),
		tools.NewUpdateCommentTool(commentManager),
		tools.NewDeleteCommentTool(commentManager),
	)

	// --- Register prompts ---

	planPrompt := prompts.NewPlanChecklistPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(index)
	s.AddResource(resourceHandler.CardIndexResource(), resourceHandler.HandleCardIndex)

	return s
}

func register(s *server.MCPServer, ts ...tool) {
	for _, t := range ts {
		s.AddTool(t.Definition(), t.Handle)
	}
}

// noop is the cleanup used when there is nothing to close.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use planka-mcp effectively.
func serverInstructions() string {
	return `You have access to planka-mcp, which manages checklists and comments on Planka kanban cards.

## Vocabulary
- A "task list" is a checklist on a card. A "task" is one checkable item in it.
- Positions are sort keys. Planka spaces them 65535 apart; leave them out unless reordering.

## Checklists
- get_task_lists(card_id) shows what a card already has. It returns [] rather than failing,
  so an empty answer can also mean the card could not be read.
- get_task_list needs the card_id unless the checklist was created in this session.
- Prefer create_task_list_with_tasks to build a whole checklist in one call.
  It is NOT transactional: on failure the error lists the checklist and items already
  created. Continue with create_task for the rest instead of starting over, or the
  card ends up with duplicates.
- batch_create_task_lists reports every entry's outcome by index; a failed entry does
  not stop the others.
- Use complete_task to check or uncheck an item.

## Comments
- get_comment needs both the comment id and its card_id.
- get_comments returns [] rather than failing.
- Comments are posted as the configured Planka account. Keep them short and factual.

## Deleting
Deleting a checklist deletes its items. Confirm with the user before delete_task_list,
delete_task or delete_comment unless they asked for it explicitly.`
}
