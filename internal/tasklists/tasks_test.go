package tasklists

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestCreateTask_Defaults(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()
	tl, _ := m.CreateTaskList(ctx, "card-1", "Checks", nil)

	task, err := m.CreateTask(ctx, tl.ID, "lint", nil, nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Position != DefaultPosition || task.IsCompleted {
		t.Errorf("task = %+v, want default position and not completed", task)
	}
	if task.TaskListID != tl.ID {
		t.Errorf("TaskListID = %q, want %q", task.TaskListID, tl.ID)
	}

	calls := fake.Calls()
	last := calls[len(calls)-1]
	if last.Path != "/api/task-lists/"+tl.ID+"/tasks" {
		t.Errorf("path = %s", last.Path)
	}
	if last.Body["isCompleted"] != false {
		t.Errorf("isCompleted sent = %v, want false", last.Body["isCompleted"])
	}
}

func TestCreateTask_Explicit(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	tl, _ := m.CreateTaskList(ctx, "card-1", "Checks", nil)

	task, err := m.CreateTask(ctx, tl.ID, "deploy", ptr(12.5), ptr(true))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Position != 12.5 || !task.IsCompleted {
		t.Errorf("task = %+v", task)
	}
}

func TestCreateTask_Errors(t *testing.T) {
	m, fake, _ := newTestManager(t)

	if _, err := m.CreateTask(context.Background(), "", "x", nil, nil); err == nil {
		t.Error("expected error for blank task list id")
	}
	if len(fake.Calls()) != 0 {
		t.Error("blank task list id must not reach Planka")
	}

	_, err := m.CreateTask(context.Background(), "unknown", "x", nil, nil)
	if err == nil || !strings.HasPrefix(err.Error(), "failed to create task: ") {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateTask_CompletionIndependentOfList(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	tl, _ := m.CreateTaskList(ctx, "card-1", "Checks", nil)
	task, _ := m.CreateTask(ctx, tl.ID, "lint", nil, nil)

	updated, err := m.UpdateTask(ctx, task.ID, TaskPatch{IsCompleted: ptr(true)})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.IsCompleted {
		t.Error("IsCompleted = false, want true")
	}
	if updated.Name != "lint" || updated.Position != DefaultPosition {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateTask_RenameAndMove(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()
	tl, _ := m.CreateTaskList(ctx, "card-1", "Checks", nil)
	task, _ := m.CreateTask(ctx, tl.ID, "lint", nil, nil)

	updated, err := m.UpdateTask(ctx, task.ID, TaskPatch{Name: ptr("vet"), Position: ptr(1.0)})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Name != "vet" || updated.Position != 1 || updated.IsCompleted {
		t.Errorf("updated = %+v", updated)
	}

	calls := fake.Calls()
	last := calls[len(calls)-1]
	if _, sent := last.Body["isCompleted"]; sent {
		t.Error("isCompleted must not be sent when unset")
	}
}

func TestCompleteTask(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	tl, _ := m.CreateTaskList(ctx, "card-1", "Checks", nil)
	task, _ := m.CreateTask(ctx, tl.ID, "lint", nil, ptr(true))

	reopened, err := m.CompleteTask(ctx, task.ID, false)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if reopened.IsCompleted {
		t.Error("task should be reopened")
	}
}

func TestUpdateTask_Failure(t *testing.T) {
	m, fake, _ := newTestManager(t)
	fake.Errors["PATCH /api/tasks/t1"] = errors.New("timeout")

	_, err := m.UpdateTask(context.Background(), "t1", TaskPatch{Name: ptr("x")})
	if err == nil || err.Error() != "failed to update task: timeout" {
		t.Errorf("err = %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()
	tl, _ := m.CreateTaskList(ctx, "card-1", "Checks", nil)
	task, _ := m.CreateTask(ctx, tl.ID, "lint", nil, nil)

	ack, err := m.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if !ack.Success || ack.ID != task.ID {
		t.Errorf("ack = %+v", ack)
	}
	if fake.CallsTo(http.MethodDelete, "/api/tasks/"+task.ID) != 1 {
		t.Error("expected one DELETE call")
	}
	if len(fake.TasksIn(tl.ID)) != 0 {
		t.Error("task should be gone")
	}

	if _, err := m.DeleteTask(ctx, task.ID); err == nil {
		t.Error("deleting twice should fail")
	}
}
