package tasklists

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HendryAvila/planka-mcp/internal/planka"
	"github.com/sirupsen/logrus"
)

// CreateTask adds an item to an existing checklist. position defaults to
// DefaultPosition and isCompleted to false.
func (m *Manager) CreateTask(ctx context.Context, taskListID, name string, position *float64, isCompleted *bool) (*planka.Task, error) {
	if strings.TrimSpace(taskListID) == "" {
		return nil, errors.New("failed to create task: task list id is required")
	}

	pos := DefaultPosition
	if position != nil {
		pos = *position
	}
	completed := false
	if isCompleted != nil {
		completed = *isCompleted
	}

	raw, err := m.api.Request(ctx, http.MethodPost, planka.TaskListTasksPath(taskListID), map[string]any{
		"name":        name,
		"position":    pos,
		"isCompleted": completed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task, err := planka.DecodeItem[planka.Task](planka.KindTask, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateTask changes an item's name, position or completion flag.
func (m *Manager) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*planka.Task, error) {
	raw, err := m.api.Request(ctx, http.MethodPatch, planka.TaskPath(id), patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	task, err := planka.DecodeItem[planka.Task](planka.KindTask, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// CompleteTask sets an item's completion flag.
func (m *Manager) CompleteTask(ctx context.Context, id string, completed bool) (*planka.Task, error) {
	task, err := m.UpdateTask(ctx, id, TaskPatch{IsCompleted: &completed})
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{"task_id": id, "completed": completed}).Debug("task completion set")
	return task, nil
}

// DeleteTask deletes an item.
func (m *Manager) DeleteTask(ctx context.Context, id string) (*planka.Ack, error) {
	if _, err := m.api.Request(ctx, http.MethodDelete, planka.TaskPath(id), nil); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return &planka.Ack{Success: true, ID: id}, nil
}
