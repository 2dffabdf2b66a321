// Package testutil provides an in-memory Planka for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/HendryAvila/planka-mcp/internal/planka"
)

// Comment list response shapes the fake can produce.
const (
	ShapeEnvelope = "envelope"
	ShapeArray    = "array"
	ShapeGarbage  = "garbage"
)

// Call records one request made against the fake.
type Call struct {
	Method string
	Path   string
	Body   map[string]any
}

type fakeCard struct {
	id        string
	name      string
	taskLists []string
	comments  []string
}

// FakePlanka implements planka.Requester over in-memory cards, task lists,
// tasks and comments. Responses use Planka's {"item": ...} envelope.
type FakePlanka struct {
	mu        sync.Mutex
	nextID    int
	cards     map[string]*fakeCard
	taskLists map[string]*planka.TaskList
	tasks     map[string]*planka.Task
	comments  map[string]*planka.Comment
	calls     []Call

	// Errors fails an exact "METHOD path" key.
	Errors map[string]error

	// FailIf is consulted before every request; a non-nil result fails it.
	FailIf func(method, path string, body map[string]any) error

	// CommentsShape selects the list-comments response shape
	// (ShapeEnvelope by default).
	CommentsShape string

	// TaskListsField is the key under "included" that carries a card's
	// checklists. Empty string omits the collection entirely.
	TaskListsField string

	// UserID is the author stamped on created comments.
	UserID string
}

// NewFakePlanka returns an empty fake using the current API generation.
func NewFakePlanka() *FakePlanka {
	return &FakePlanka{
		nextID:         1000,
		cards:          make(map[string]*fakeCard),
		taskLists:      make(map[string]*planka.TaskList),
		tasks:          make(map[string]*planka.Task),
		comments:       make(map[string]*planka.Comment),
		Errors:         make(map[string]error),
		CommentsShape:  ShapeEnvelope,
		TaskListsField: "taskLists",
		UserID:         "user-1",
	}
}

// AddCard registers a card.
func (f *FakePlanka) AddCard(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[id] = &fakeCard{id: id, name: name}
}

// AddComment seeds a comment on an existing card.
func (f *FakePlanka) AddComment(cardID, id, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[id] = &planka.Comment{
		ID:        id,
		Text:      text,
		CardID:    cardID,
		UserID:    f.UserID,
		CreatedAt: "2024-01-01T00:00:00Z",
	}
	f.cards[cardID].comments = append(f.cards[cardID].comments, id)
}

// Calls returns a copy of every request made so far.
func (f *FakePlanka) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo counts requests with the given method whose path has prefix.
func (f *FakePlanka) CallsTo(method, prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			n++
		}
	}
	return n
}

// TaskListsOn returns the checklists currently stored on a card.
func (f *FakePlanka) TaskListsOn(cardID string) []planka.TaskList {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[cardID]
	if !ok {
		return nil
	}
	out := make([]planka.TaskList, 0, len(card.taskLists))
	for _, id := range card.taskLists {
		out = append(out, *f.taskLists[id])
	}
	return out
}

// TasksIn returns the items stored in a checklist, in creation order.
func (f *FakePlanka) TasksIn(taskListID string) []planka.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasksInLocked(taskListID)
}

func (f *FakePlanka) tasksInLocked(taskListID string) []planka.Task {
	var out []planka.Task
	for i := 1000; i <= f.nextID; i++ {
		if t, ok := f.tasks[strconv.Itoa(i)]; ok && t.TaskListID == taskListID {
			out = append(out, *t)
		}
	}
	return out
}

// Request implements planka.Requester.
func (f *FakePlanka) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields, err := toMap(body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Path: path, Body: fields})
	injected := f.Errors[method+" "+path]
	failIf := f.FailIf
	f.mu.Unlock()

	if injected != nil {
		return nil, injected
	}
	if failIf != nil {
		if err := failIf(method, path, fields); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.route(method, path, fields)
}

func (f *FakePlanka) route(method, path string, body map[string]any) (json.RawMessage, error) {
	seg := strings.Split(strings.TrimPrefix(path, "/api/"), "/")

	switch {
	case len(seg) == 2 && seg[0] == "cards" && method == http.MethodGet:
		return f.getCard(method, path, seg[1])
	case len(seg) == 3 && seg[0] == "cards" && seg[2] == "task-lists" && method == http.MethodPost:
		return f.createTaskList(method, path, seg[1], body)
	case len(seg) == 3 && seg[0] == "cards" && seg[2] == "comments" && method == http.MethodGet:
		return f.listComments(method, path, seg[1])
	case len(seg) == 3 && seg[0] == "cards" && seg[2] == "comments" && method == http.MethodPost:
		return f.createComment(method, path, seg[1], body)
	case len(seg) == 2 && seg[0] == "task-lists" && method == http.MethodPatch:
		return f.updateTaskList(method, path, seg[1], body)
	case len(seg) == 2 && seg[0] == "task-lists" && method == http.MethodDelete:
		return f.deleteTaskList(method, path, seg[1])
	case len(seg) == 3 && seg[0] == "task-lists" && seg[2] == "tasks" && method == http.MethodPost:
		return f.createTask(method, path, seg[1], body)
	case len(seg) == 2 && seg[0] == "tasks" && method == http.MethodPatch:
		return f.updateTask(method, path, seg[1], body)
	case len(seg) == 2 && seg[0] == "tasks" && method == http.MethodDelete:
		return f.deleteTask(method, path, seg[1])
	case len(seg) == 2 && seg[0] == "comments" && method == http.MethodPatch:
		return f.updateComment(method, path, seg[1], body)
	case len(seg) == 2 && seg[0] == "comments" && method == http.MethodDelete:
		return f.deleteComment(method, path, seg[1])
	}
	return nil, notFound(method, path, "route")
}

func (f *FakePlanka) getCard(method, path, id string) (json.RawMessage, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, notFound(method, path, "Card")
	}

	included := map[string]any{}
	if f.TaskListsField != "" {
		lists := make([]planka.TaskList, 0, len(card.taskLists))
		var tasks []planka.Task
		for _, tlID := range card.taskLists {
			lists = append(lists, *f.taskLists[tlID])
			tasks = append(tasks, f.tasksInLocked(tlID)...)
		}
		included[f.TaskListsField] = lists
		included["tasks"] = tasks
	}
	return marshal(map[string]any{
		"item":     map[string]any{"id": card.id, "name": card.name},
		"included": included,
	})
}

func (f *FakePlanka) createTaskList(method, path, cardID string, body map[string]any) (json.RawMessage, error) {
	card, ok := f.cards[cardID]
	if !ok {
		return nil, notFound(method, path, "Card")
	}
	tl := &planka.TaskList{
		ID:        f.newID(),
		CardID:    cardID,
		Name:      str(body["name"]),
		Position:  num(body["position"]),
		CreatedAt: now(),
	}
	f.taskLists[tl.ID] = tl
	card.taskLists = append(card.taskLists, tl.ID)
	return item(tl)
}

func (f *FakePlanka) updateTaskList(method, path, id string, body map[string]any) (json.RawMessage, error) {
	tl, ok := f.taskLists[id]
	if !ok {
		return nil, notFound(method, path, "Task list")
	}
	if v, ok := body["name"]; ok {
		tl.Name = str(v)
	}
	if v, ok := body["position"]; ok {
		tl.Position = num(v)
	}
	ts := now()
	tl.UpdatedAt = &ts
	return item(tl)
}

func (f *FakePlanka) deleteTaskList(method, path, id string) (json.RawMessage, error) {
	tl, ok := f.taskLists[id]
	if !ok {
		return nil, notFound(method, path, "Task list")
	}
	delete(f.taskLists, id)
	if card, ok := f.cards[tl.CardID]; ok {
		card.taskLists = without(card.taskLists, id)
	}
	for tid, t := range f.tasks {
		if t.TaskListID == id {
			delete(f.tasks, tid)
		}
	}
	return item(tl)
}

func (f *FakePlanka) createTask(method, path, taskListID string, body map[string]any) (json.RawMessage, error) {
	if _, ok := f.taskLists[taskListID]; !ok {
		return nil, notFound(method, path, "Task list")
	}
	t := &planka.Task{
		ID:          f.newID(),
		TaskListID:  taskListID,
		Name:        str(body["name"]),
		Position:    num(body["position"]),
		IsCompleted: body["isCompleted"] == true,
		CreatedAt:   now(),
	}
	f.tasks[t.ID] = t
	return item(t)
}

func (f *FakePlanka) updateTask(method, path, id string, body map[string]any) (json.RawMessage, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, notFound(method, path, "Task")
	}
	if v, ok := body["name"]; ok {
		t.Name = str(v)
	}
	if v, ok := body["position"]; ok {
		t.Position = num(v)
	}
	if v, ok := body["isCompleted"]; ok {
		t.IsCompleted = v == true
	}
	ts := now()
	t.UpdatedAt = &ts
	return item(t)
}

func (f *FakePlanka) deleteTask(method, path, id string) (json.RawMessage, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, notFound(method, path, "Task")
	}
	delete(f.tasks, id)
	return item(t)
}

func (f *FakePlanka) listComments(method, path, cardID string) (json.RawMessage, error) {
	card, ok := f.cards[cardID]
	if !ok {
		return nil, notFound(method, path, "Card")
	}

	switch f.CommentsShape {
	case ShapeGarbage:
		return marshal(map[string]any{"unexpected": true})
	case ShapeArray:
		records := make([]map[string]any, 0, len(card.comments))
		for _, id := range card.comments {
			c := f.comments[id]
			records = append(records, map[string]any{
				"id":        c.ID,
				"type":      planka.CommentActionType,
				"data":      map[string]any{"text": c.Text},
				"cardId":    c.CardID,
				"userId":    c.UserID,
				"createdAt": c.CreatedAt,
				"updatedAt": c.UpdatedAt,
			})
		}
		return marshal(records)
	default:
		items := make([]planka.Comment, 0, len(card.comments))
		for _, id := range card.comments {
			items = append(items, *f.comments[id])
		}
		return marshal(map[string]any{
			"items":    items,
			"included": map[string]any{"users": []any{map[string]any{"id": f.UserID}}},
		})
	}
}

func (f *FakePlanka) createComment(method, path, cardID string, body map[string]any) (json.RawMessage, error) {
	card, ok := f.cards[cardID]
	if !ok {
		return nil, notFound(method, path, "Card")
	}
	c := &planka.Comment{
		ID:        f.newID(),
		Text:      str(body["text"]),
		CardID:    cardID,
		UserID:    f.UserID,
		CreatedAt: now(),
	}
	f.comments[c.ID] = c
	card.comments = append(card.comments, c.ID)
	return item(c)
}

func (f *FakePlanka) updateComment(method, path, id string, body map[string]any) (json.RawMessage, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, notFound(method, path, "Comment")
	}
	if v, ok := body["text"]; ok {
		c.Text = str(v)
	}
	ts := now()
	c.UpdatedAt = &ts
	return item(c)
}

func (f *FakePlanka) deleteComment(method, path, id string) (json.RawMessage, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, notFound(method, path, "Comment")
	}
	delete(f.comments, id)
	if card, ok := f.cards[c.CardID]; ok {
		card.comments = without(card.comments, id)
	}
	return item(c)
}

func (f *FakePlanka) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func notFound(method, path, what string) error {
	return &planka.APIError{
		Method:     method,
		Path:       path,
		StatusCode: http.StatusNotFound,
		Message:    what + " not found",
	}
}

func toMap(body any) (map[string]any, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("fake planka: encoding body: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("fake planka: body is not an object: %w", err)
	}
	return out, nil
}

func item(v any) (json.RawMessage, error) {
	return marshal(map[string]any{"item": v})
}

func marshal(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	n, _ := v.(float64)
	return n
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
