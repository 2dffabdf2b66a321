// Package prompts implements MCP prompt handlers for Planka workflows.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanChecklistPrompt handles the plan-card-checklist MCP prompt.
// It guides the AI from a card's current state to a populated checklist.
type PlanChecklistPrompt struct{}

// NewPlanChecklistPrompt creates a PlanChecklistPrompt.
func NewPlanChecklistPrompt() *PlanChecklistPrompt {
	return &PlanChecklistPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanChecklistPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-card-checklist",
		mcp.WithPromptDescription(
			"Break a Planka card down into a checklist. "+
				"Reads the card's existing checklists and comments first, "+
				"then proposes and creates the missing items.",
		),
		mcp.WithArgument("card_id",
			mcp.ArgumentDescription("ID of the card to plan"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the checklist should get done. Default: derived from the card"),
		),
	)
}

// Handle processes the plan-card-checklist prompt request.
func (p *PlanChecklistPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	cardID := strings.TrimSpace(req.Params.Arguments["card_id"])
	if cardID == "" {
		return nil, fmt.Errorf("card_id is required")
	}

	goal := strings.TrimSpace(req.Params.Arguments["goal"])
	goalLine := "Work out the goal from the card's comments and existing checklists."
	if goal != "" {
		goalLine = fmt.Sprintf("The goal is: %s", goal)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Plan a checklist for card %s", cardID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me plan the work on Planka card %s.\n\n"+
						"%s\n\n"+
						"Please:\n"+
						"1. Run `get_task_lists` with card_id='%s' to see what is already planned\n"+
						"2. Run `get_comments` with card_id='%s' for context from the team\n"+
						"3. Propose a checklist name and 3-10 concrete, checkable items, and wait for my OK\n"+
						"4. Create it with `create_task_list_with_tasks` (card_id='%s')\n"+
						"5. If that reports a partial failure, show me what was left on the card "+
						"and finish the remaining items with `create_task`\n"+
						"6. Post a short summary with `create_comment` so the team sees the plan",
					cardID, goalLine, cardID, cardID, cardID,
				)),
			},
		},
	}, nil
}
