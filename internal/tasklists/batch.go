package tasklists

import (
	"context"
	"fmt"

	"github.com/HendryAvila/planka-mcp/internal/planka"
	"github.com/sirupsen/logrus"
)

// BatchOutcome is the result of one item of a batch create, in input order.
type BatchOutcome struct {
	Index   int              `json:"index"`
	Success bool             `json:"success"`
	Input   TaskListInput    `json:"input"`
	Result  *planka.TaskList `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// BatchFailure describes one failed item of a batch create.
type BatchFailure struct {
	Index int           `json:"index"`
	Input TaskListInput `json:"input"`
	Error string        `json:"error"`
}

// BatchResult holds the three views of a batch create.
type BatchResult struct {
	Results   []BatchOutcome    `json:"results"`
	Successes []planka.TaskList `json:"successes"`
	Failures  []BatchFailure    `json:"failures"`
}

// BatchCreateTaskLists creates each checklist in order, one at a time.
// Items without a position get PositionAt(index). Individual failures are
// recorded and the batch continues; only a canceled context aborts it.
func (m *Manager) BatchCreateTaskLists(ctx context.Context, inputs []TaskListInput) (*BatchResult, error) {
	res := &BatchResult{
		Results:   make([]BatchOutcome, 0, len(inputs)),
		Successes: []planka.TaskList{},
		Failures:  []BatchFailure{},
	}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch create task lists aborted at item %d: %w", i, err)
		}

		if in.Position == nil {
			pos := PositionAt(i)
			in.Position = &pos
		}

		tl, err := m.CreateTaskList(ctx, in.CardID, in.Name, in.Position)
		if err != nil {
			res.Results = append(res.Results, BatchOutcome{Index: i, Input: in, Error: err.Error()})
			res.Failures = append(res.Failures, BatchFailure{Index: i, Input: in, Error: err.Error()})
			continue
		}
		res.Results = append(res.Results, BatchOutcome{Index: i, Success: true, Input: in, Result: tl})
		res.Successes = append(res.Successes, *tl)
	}

	m.log.WithFields(logrus.Fields{
		"total":     len(inputs),
		"succeeded": len(res.Successes),
		"failed":    len(res.Failures),
	}).Info("batch task list create finished")
	return res, nil
}

// TaskListWithTasks is a checklist together with the items created in it.
type TaskListWithTasks struct {
	TaskList planka.TaskList `json:"taskList"`
	Tasks    []planka.Task   `json:"tasks"`
}

// PartialCreateError is returned when a compound create fails after the
// checklist exists. Nothing already created is rolled back: TaskList and
// Created describe what is left on the card.
type PartialCreateError struct {
	TaskList planka.TaskList
	Created  []planka.Task
	Index    int
	Err      error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("failed to create task %d in task list %s (%d created before the failure, not rolled back): %v",
		e.Index, e.TaskList.ID, len(e.Created), e.Err)
}

func (e *PartialCreateError) Unwrap() error { return e.Err }

// CreateTaskListWithTasks creates a checklist at the default position and
// then its items in order at PositionAt(index).
func (m *Manager) CreateTaskListWithTasks(ctx context.Context, cardID, name string, tasks []TaskInput) (*TaskListWithTasks, error) {
	tl, err := m.CreateTaskList(ctx, cardID, name, nil)
	if err != nil {
		return nil, err
	}

	created := make([]planka.Task, 0, len(tasks))
	for i, in := range tasks {
		pos := PositionAt(i)
		task, err := m.CreateTask(ctx, tl.ID, in.Name, &pos, in.IsCompleted)
		if err != nil {
			m.log.WithFields(logrus.Fields{
				"task_list_id": tl.ID,
				"index":        i,
				"created":      len(created),
			}).WithError(err).Warn("task list left partially populated")
			return nil, &PartialCreateError{TaskList: *tl, Created: created, Index: i, Err: err}
		}
		created = append(created, *task)
	}

	return &TaskListWithTasks{TaskList: *tl, Tasks: created}, nil
}
