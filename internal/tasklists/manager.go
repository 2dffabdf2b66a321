// Package tasklists manages checklists ("task lists") on Planka cards and
// the checkable items ("tasks") inside them.
//
// Planka only exposes checklists embedded in a card read, so single-list
// lookups are derived by scanning a card. The card a checklist lives on is
// remembered in a cardindex.Index when the checklist is created here.
//
// Batch and compound operations run their calls strictly in input order;
// positions and failure indices depend on it.
package tasklists

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HendryAvila/planka-mcp/internal/cardindex"
	"github.com/HendryAvila/planka-mcp/internal/planka"
	"github.com/sirupsen/logrus"
)

// DefaultPosition is Planka's sort-key step and the position given to a
// checklist or item created without one.
const DefaultPosition float64 = 65535

var (
	// ErrMissingCardContext means no card id was given and none is known
	// for the task list.
	ErrMissingCardContext = errors.New("cannot locate task list without a card context: pass the card id or create the task list in this session first")

	// ErrTaskListsUnavailable means the card could not be read or carried
	// no recognizable checklist collection.
	ErrTaskListsUnavailable = errors.New("task lists unavailable")

	// ErrTaskListNotFound means the card was read but the id is not on it.
	ErrTaskListNotFound = errors.New("task list not found")
)

// PositionAt returns the position assigned to the i-th (0-based) item of a
// batch or compound create.
func PositionAt(i int) float64 {
	return DefaultPosition * float64(i+1)
}

// TaskListInput describes one checklist to create.
type TaskListInput struct {
	CardID   string   `json:"cardId"`
	Name     string   `json:"name"`
	Position *float64 `json:"position,omitempty"`
}

// TaskListPatch is a partial checklist update. Nil fields are left alone.
type TaskListPatch struct {
	Name     *string  `json:"name,omitempty"`
	Position *float64 `json:"position,omitempty"`
}

// TaskInput describes one item of a compound create.
type TaskInput struct {
	Name        string `json:"name"`
	IsCompleted *bool  `json:"isCompleted,omitempty"`
}

// TaskPatch is a partial item update. Nil fields are left alone.
type TaskPatch struct {
	Name        *string  `json:"name,omitempty"`
	Position    *float64 `json:"position,omitempty"`
	IsCompleted *bool    `json:"isCompleted,omitempty"`
}

// Manager issues checklist and item operations through a planka.Requester.
type Manager struct {
	api   planka.Requester
	index cardindex.Index
	log   logrus.FieldLogger
}

// NewManager creates a Manager. index must not be nil; use
// cardindex.NewMemory() for process-lifetime state.
func NewManager(api planka.Requester, index cardindex.Index, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{api: api, index: index, log: log.WithField("component", "tasklists")}
}

// CreateTaskList creates a checklist on a card and records which card it
// belongs to. position defaults to DefaultPosition.
func (m *Manager) CreateTaskList(ctx context.Context, cardID, name string, position *float64) (*planka.TaskList, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, errors.New("failed to create task list: card id is required")
	}

	pos := DefaultPosition
	if position != nil {
		pos = *position
	}

	raw, err := m.api.Request(ctx, http.MethodPost, planka.CardTaskListsPath(cardID), map[string]any{
		"name":     name,
		"position": pos,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}
	tl, err := planka.DecodeItem[planka.TaskList](planka.KindTaskList, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}
	if tl.CardID == "" {
		tl.CardID = cardID
	}

	if err := m.index.Put(ctx, tl.ID, cardID); err != nil {
		m.log.WithError(err).WithField("task_list_id", tl.ID).Warn("recording task list card failed")
	}
	m.log.WithFields(logrus.Fields{"task_list_id": tl.ID, "card_id": cardID}).Debug("task list created")
	return tl, nil
}

// ListTaskLists returns the checklists on a card. It never fails: an
// unreadable card or one without checklist data yields an empty slice.
func (m *Manager) ListTaskLists(ctx context.Context, cardID string) []planka.TaskList {
	lists, err := m.fetchTaskLists(ctx, cardID)
	if err != nil {
		m.log.WithError(err).WithField("card_id", cardID).Debug("listing task lists degraded to empty")
		return []planka.TaskList{}
	}
	return lists
}

// GetTaskList finds one checklist. cardID may be empty when the checklist
// was created by this process.
func (m *Manager) GetTaskList(ctx context.Context, id, cardID string) (*planka.TaskList, error) {
	if cardID == "" {
		known, ok, err := m.index.Lookup(ctx, id)
		if err != nil {
			m.log.WithError(err).WithField("task_list_id", id).Warn("card index lookup failed")
		}
		if ok {
			cardID = known
		}
	}
	if cardID == "" {
		return nil, fmt.Errorf("task list %s: %w", id, ErrMissingCardContext)
	}

	lists, err := m.fetchTaskLists(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task list %s: %w", id, err)
	}
	for i := range lists {
		if lists[i].ID == id {
			return &lists[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s on card %s", ErrTaskListNotFound, id, cardID)
}

// UpdateTaskList renames and/or repositions a checklist.
func (m *Manager) UpdateTaskList(ctx context.Context, id string, patch TaskListPatch) (*planka.TaskList, error) {
	raw, err := m.api.Request(ctx, http.MethodPatch, planka.TaskListPath(id), patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task list: %w", err)
	}
	tl, err := planka.DecodeItem[planka.TaskList](planka.KindTaskList, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to update task list: %w", err)
	}
	return tl, nil
}

// DeleteTaskList deletes a checklist. Any card index entry is left in place.
func (m *Manager) DeleteTaskList(ctx context.Context, id string) (*planka.Ack, error) {
	if _, err := m.api.Request(ctx, http.MethodDelete, planka.TaskListPath(id), nil); err != nil {
		return nil, fmt.Errorf("failed to delete task list: %w", err)
	}
	return &planka.Ack{Success: true, ID: id}, nil
}

// fetchTaskLists reads a card and extracts its embedded checklists.
func (m *Manager) fetchTaskLists(ctx context.Context, cardID string) ([]planka.TaskList, error) {
	raw, err := m.api.Request(ctx, http.MethodGet, planka.CardPath(cardID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w for card %s: %w", ErrTaskListsUnavailable, cardID, err)
	}
	lists, err := extractTaskLists(raw)
	if err != nil {
		return nil, fmt.Errorf("%w for card %s: %w", ErrTaskListsUnavailable, cardID, err)
	}
	for i := range lists {
		if lists[i].CardID == "" {
			lists[i].CardID = cardID
		}
	}
	return lists, nil
}
