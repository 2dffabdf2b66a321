package tasklists

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/HendryAvila/planka-mcp/internal/cardindex"
	"github.com/HendryAvila/planka-mcp/internal/planka"
	"github.com/HendryAvila/planka-mcp/internal/testutil"
	"github.com/sirupsen/logrus"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestManager returns a Manager over a fake Planka seeded with card "card-1".
func newTestManager(t *testing.T) (*Manager, *testutil.FakePlanka, *cardindex.Memory) {
	t.Helper()
	fake := testutil.NewFakePlanka()
	fake.AddCard("card-1", "Ship v2")
	idx := cardindex.NewMemory()
	return NewManager(fake, idx, quietLogger()), fake, idx
}

func ptr[T any](v T) *T { return &v }

// ─── CreateTaskList ──────────────────────────────────────────────────────────

func TestCreateTaskList_DefaultPosition(t *testing.T) {
	m, fake, _ := newTestManager(t)

	tl, err := m.CreateTaskList(context.Background(), "card-1", "Release", nil)
	if err != nil {
		t.Fatalf("CreateTaskList: %v", err)
	}
	if tl.Position != DefaultPosition {
		t.Errorf("Position = %v, want %v", tl.Position, DefaultPosition)
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Method != http.MethodPost || calls[0].Path != "/api/cards/card-1/task-lists" {
		t.Errorf("unexpected call %s %s", calls[0].Method, calls[0].Path)
	}
	if calls[0].Body["position"] != DefaultPosition {
		t.Errorf("sent position = %v, want %v", calls[0].Body["position"], DefaultPosition)
	}
}

func TestCreateTaskList_ExplicitPosition(t *testing.T) {
	m, _, _ := newTestManager(t)

	tl, err := m.CreateTaskList(context.Background(), "card-1", "Release", ptr(3.0))
	if err != nil {
		t.Fatalf("CreateTaskList: %v", err)
	}
	if tl.Position != 3 {
		t.Errorf("Position = %v, want 3", tl.Position)
	}
}

func TestCreateTaskList_RecordsCard(t *testing.T) {
	m, _, idx := newTestManager(t)

	tl, err := m.CreateTaskList(context.Background(), "card-1", "Release", nil)
	if err != nil {
		t.Fatalf("CreateTaskList: %v", err)
	}
	card, ok, _ := idx.Lookup(context.Background(), tl.ID)
	if !ok || card != "card-1" {
		t.Errorf("index lookup = (%q, %v), want card-1", card, ok)
	}
}

func TestCreateTaskList_RemoteFailureWrapped(t *testing.T) {
	m, fake, idx := newTestManager(t)
	fake.Errors["POST /api/cards/card-1/task-lists"] = &planka.APIError{
		Method: "POST", Path: "/api/cards/card-1/task-lists", StatusCode: 500, Message: "boom",
	}

	_, err := m.CreateTaskList(context.Background(), "card-1", "Release", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "failed to create task list: ") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %q, want wrapped create message", err)
	}
	var apiErr *planka.APIError
	if !errors.As(err, &apiErr) {
		t.Error("APIError should be reachable via errors.As")
	}
	if entries, _ := idx.Entries(context.Background()); len(entries) != 0 {
		t.Errorf("failed create must not touch the index, got %v", entries)
	}
}

func TestCreateTaskList_NoRetry(t *testing.T) {
	m, fake, _ := newTestManager(t)
	fake.Errors["POST /api/cards/card-1/task-lists"] = errors.New("down")

	_, _ = m.CreateTaskList(context.Background(), "card-1", "Release", nil)
	if n := fake.CallsTo(http.MethodPost, "/api/cards/card-1/task-lists"); n != 1 {
		t.Errorf("create calls = %d, want 1", n)
	}
}

func TestCreateTaskList_RequiresCard(t *testing.T) {
	m, fake, _ := newTestManager(t)

	if _, err := m.CreateTaskList(context.Background(), " ", "Release", nil); err == nil {
		t.Fatal("expected error for blank card id")
	}
	if len(fake.Calls()) != 0 {
		t.Error("no request should be made without a card id")
	}
}

func TestCreateTaskList_InvalidResponse(t *testing.T) {
	m, _, _ := newTestManager(t)
	bad := &stubRequester{raw: json.RawMessage(`{"item":{"name":"no id"}}`)}
	m.api = bad

	_, err := m.CreateTaskList(context.Background(), "card-1", "Release", nil)
	var vErr *planka.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// stubRequester answers every request with the same payload.
type stubRequester struct {
	raw json.RawMessage
	err error
}

func (s *stubRequester) Request(context.Context, string, string, any) (json.RawMessage, error) {
	return s.raw, s.err
}

// ─── ListTaskLists ───────────────────────────────────────────────────────────

func TestListTaskLists_IncludesCreated(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"Design", "Build"} {
		if _, err := m.CreateTaskList(ctx, "card-1", name, nil); err != nil {
			t.Fatalf("CreateTaskList(%s): %v", name, err)
		}
	}

	lists := m.ListTaskLists(ctx, "card-1")
	if len(lists) != 2 {
		t.Fatalf("len = %d, want 2", len(lists))
	}
	names := []string{lists[0].Name, lists[1].Name}
	if names[0] != "Design" || names[1] != "Build" {
		t.Errorf("names = %v", names)
	}
	if lists[0].CardID != "card-1" {
		t.Errorf("CardID = %q, want card-1", lists[0].CardID)
	}
}

func TestListTaskLists_LegacyField(t *testing.T) {
	m, fake, _ := newTestManager(t)
	fake.TaskListsField = "task_lists"

	if _, err := m.CreateTaskList(context.Background(), "card-1", "Legacy", nil); err != nil {
		t.Fatalf("CreateTaskList: %v", err)
	}
	lists := m.ListTaskLists(context.Background(), "card-1")
	if len(lists) != 1 || lists[0].Name != "Legacy" {
		t.Errorf("lists = %+v", lists)
	}
}

func TestListTaskLists_FieldOnItem(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.api = &stubRequester{raw: json.RawMessage(
		`{"item":{"id":"card-9","taskLists":[{"id":"tl","name":"Inline","position":1}]}}`,
	)}

	lists := m.ListTaskLists(context.Background(), "card-9")
	if len(lists) != 1 || lists[0].Name != "Inline" {
		t.Errorf("lists = %+v", lists)
	}
}

func TestListTaskLists_NeverFails(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Manager, fake *testutil.FakePlanka)
		card  string
	}{
		{"unknown card", func(*Manager, *testutil.FakePlanka) {}, "missing"},
		{"fetch error", func(_ *Manager, f *testutil.FakePlanka) {
			f.Errors["GET /api/cards/card-1"] = errors.New("network down")
		}, "card-1"},
		{"no checklist data", func(_ *Manager, f *testutil.FakePlanka) {
			f.TaskListsField = ""
		}, "card-1"},
		{"malformed collection", func(m *Manager, _ *testutil.FakePlanka) {
			m.api = &stubRequester{raw: json.RawMessage(`{"included":{"taskLists":"nope"}}`)}
		}, "card-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake, _ := newTestManager(t)
			tt.setup(m, fake)

			lists := m.ListTaskLists(context.Background(), tt.card)
			if lists == nil || len(lists) != 0 {
				t.Errorf("lists = %#v, want empty non-nil slice", lists)
			}
		})
	}
}

// ─── GetTaskList ─────────────────────────────────────────────────────────────

func TestGetTaskList_MissingContext(t *testing.T) {
	m, fake, _ := newTestManager(t)

	_, err := m.GetTaskList(context.Background(), "never-created", "")
	if !errors.Is(err, ErrMissingCardContext) {
		t.Fatalf("err = %v, want ErrMissingCardContext", err)
	}
	if len(fake.Calls()) != 0 {
		t.Error("missing context must fail before any request")
	}
}

func TestGetTaskList_ExplicitCard(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	created, err := m.CreateTaskList(ctx, "card-1", "QA", nil)
	if err != nil {
		t.Fatalf("CreateTaskList: %v", err)
	}

	got, err := m.GetTaskList(ctx, created.ID, "card-1")
	if err != nil {
		t.Fatalf("GetTaskList: %v", err)
	}
	if got.ID != created.ID || got.Name != "QA" {
		t.Errorf("got %+v, want id %s name QA", got, created.ID)
	}
}

func TestGetTaskList_FromIndex(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	created, err := m.CreateTaskList(ctx, "card-1", "QA", nil)
	if err != nil {
		t.Fatalf("CreateTaskList: %v", err)
	}

	got, err := m.GetTaskList(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("GetTaskList: %v", err)
	}
	if got.Name != "QA" {
		t.Errorf("Name = %q, want QA", got.Name)
	}
	if fake.CallsTo(http.MethodGet, "/api/cards/card-1") != 1 {
		t.Error("expected one card read using the indexed card id")
	}
}

func TestGetTaskList_ExplicitCardWins(t *testing.T) {
	m, fake, idx := newTestManager(t)
	fake.AddCard("card-2", "Other")
	ctx := context.Background()

	created, _ := m.CreateTaskList(ctx, "card-2", "Moved", nil)
	_ = idx.Put(ctx, created.ID, "card-1")

	got, err := m.GetTaskList(ctx, created.ID, "card-2")
	if err != nil {
		t.Fatalf("GetTaskList: %v", err)
	}
	if got.Name != "Moved" {
		t.Errorf("Name = %q, want Moved", got.Name)
	}
}

func TestGetTaskList_NotFoundVsUnavailable(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.GetTaskList(ctx, "tl-x", "card-1")
	if !errors.Is(err, ErrTaskListNotFound) {
		t.Errorf("err = %v, want ErrTaskListNotFound", err)
	}
	if errors.Is(err, ErrTaskListsUnavailable) {
		t.Error("not-found must be distinguishable from unavailable")
	}
	if !strings.Contains(err.Error(), "tl-x") || !strings.Contains(err.Error(), "card-1") {
		t.Errorf("error should name id and card, got %q", err)
	}

	fake.Errors["GET /api/cards/card-1"] = errors.New("card read failed")
	_, err = m.GetTaskList(ctx, "tl-x", "card-1")
	if !errors.Is(err, ErrTaskListsUnavailable) {
		t.Errorf("err = %v, want ErrTaskListsUnavailable", err)
	}
	if errors.Is(err, ErrTaskListNotFound) {
		t.Error("unavailable must be distinguishable from not-found")
	}

	delete(fake.Errors, "GET /api/cards/card-1")
	fake.TaskListsField = ""
	_, err = m.GetTaskList(ctx, "tl-x", "card-1")
	if !errors.Is(err, ErrTaskListsUnavailable) {
		t.Errorf("missing collection: err = %v, want ErrTaskListsUnavailable", err)
	}
}

// ─── UpdateTaskList / DeleteTaskList ─────────────────────────────────────────

func TestUpdateTaskList(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()
	created, _ := m.CreateTaskList(ctx, "card-1", "Old", nil)

	updated, err := m.UpdateTaskList(ctx, created.ID, TaskListPatch{Name: ptr("New")})
	if err != nil {
		t.Fatalf("UpdateTaskList: %v", err)
	}
	if updated.Name != "New" || updated.Position != DefaultPosition {
		t.Errorf("updated = %+v", updated)
	}

	calls := fake.Calls()
	last := calls[len(calls)-1]
	if last.Method != http.MethodPatch || last.Path != "/api/task-lists/"+created.ID {
		t.Errorf("unexpected call %s %s", last.Method, last.Path)
	}
	if _, sent := last.Body["position"]; sent {
		t.Error("unset fields must not be sent")
	}
}

func TestUpdateTaskList_NotFound(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.UpdateTaskList(context.Background(), "missing", TaskListPatch{Name: ptr("x")})
	if err == nil || !planka.IsNotFound(err) {
		t.Errorf("err = %v, want wrapped 404", err)
	}
	if !strings.HasPrefix(err.Error(), "failed to update task list") {
		t.Errorf("error = %q", err)
	}
}

func TestDeleteTaskList_KeepsIndexEntry(t *testing.T) {
	m, _, idx := newTestManager(t)
	ctx := context.Background()
	created, _ := m.CreateTaskList(ctx, "card-1", "Temp", nil)

	ack, err := m.DeleteTaskList(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteTaskList: %v", err)
	}
	if !ack.Success || ack.ID != created.ID {
		t.Errorf("ack = %+v", ack)
	}

	if _, ok, _ := idx.Lookup(ctx, created.ID); !ok {
		t.Error("delete must not remove the index entry")
	}

	// The stale entry resolves the card but the list is gone.
	_, err = m.GetTaskList(ctx, created.ID, "")
	if !errors.Is(err, ErrTaskListNotFound) {
		t.Errorf("err = %v, want ErrTaskListNotFound", err)
	}
}

func TestDeleteTaskList_Failure(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.DeleteTaskList(context.Background(), "missing")
	if err == nil || !strings.HasPrefix(err.Error(), "failed to delete task list") {
		t.Errorf("err = %v", err)
	}
}
