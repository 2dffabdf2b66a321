// Package cardindex remembers which card each task list was created on.
//
// Planka has no endpoint to read a single task list; the only way to find
// one is to read its card. When a task list is created through this process
// its card id is recorded here, so a later lookup by task-list id can skip
// the card id. The index is best-effort: it is only written on successful
// creation, never invalidated on delete, and never filled by reads.
package cardindex

import (
	"context"
	"sort"
	"sync"
)

// Entry is one task-list → card mapping.
type Entry struct {
	TaskListID string `json:"task_list_id"`
	CardID     string `json:"card_id"`
}

// Index is the key-value store behind the task-list → card relation.
// Implementations must be safe for concurrent use. Put overwrites.
type Index interface {
	Put(ctx context.Context, taskListID, cardID string) error
	Lookup(ctx context.Context, taskListID string) (cardID string, ok bool, err error)
	Entries(ctx context.Context) ([]Entry, error)
}

// Memory is the default process-lifetime Index.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory returns an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

// Put records taskListID → cardID.
func (m *Memory) Put(_ context.Context, taskListID, cardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[taskListID] = cardID
	return nil
}

// Lookup returns the card a task list was created on, if known.
func (m *Memory) Lookup(_ context.Context, taskListID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cardID, ok := m.entries[taskListID]
	return cardID, ok, nil
}

// Entries returns a snapshot sorted by task-list id.
func (m *Memory) Entries(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for tl, card := range m.entries {
		out = append(out, Entry{TaskListID: tl, CardID: card})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TaskListID < out[j].TaskListID })
	return out, nil
}
