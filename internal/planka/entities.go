package planka

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Entity kinds, used in validation messages.
const (
	KindTaskList = "task list"
	KindTask     = "task"
	KindComment  = "comment"
)

// CommentActionType is the discriminator Planka puts on comment action records.
const CommentActionType = "commentCard"

var validate = validator.New(validator.WithRequiredStructEnabled())

// TaskList is a checklist attached to a card.
type TaskList struct {
	ID        string  `json:"id" validate:"required"`
	CardID    string  `json:"cardId,omitempty"`
	Name      string  `json:"name" validate:"required"`
	Position  float64 `json:"position" validate:"gte=0"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

// Task is one checkable item inside a TaskList.
type Task struct {
	ID          string  `json:"id" validate:"required"`
	TaskListID  string  `json:"taskListId" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	IsCompleted bool    `json:"isCompleted"`
	Position    float64 `json:"position" validate:"gte=0"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   *string `json:"updatedAt,omitempty"`
}

// CommentData is the payload of an action-record comment.
type CommentData struct {
	Text string `json:"text"`
}

// Comment is a free-text comment on a card. Older Planka generations model
// comments as action records (type "commentCard", text under data.text);
// decoding normalizes both generations into Text.
type Comment struct {
	ID        string       `json:"id" validate:"required"`
	Type      string       `json:"type,omitempty" validate:"omitempty,eq=commentCard"`
	Text      string       `json:"text" validate:"required"`
	Data      *CommentData `json:"data,omitempty"`
	CardID    string       `json:"cardId" validate:"required"`
	UserID    string       `json:"userId,omitempty"`
	CreatedAt string       `json:"createdAt" validate:"required"`
	UpdatedAt *string      `json:"updatedAt"`
}

func (c *Comment) normalize() {
	if c.Text == "" && c.Data != nil {
		c.Text = c.Data.Text
	}
}

type normalizer interface {
	normalize()
}

// Validate checks v (a pointer to an entity struct) against its tags.
func Validate(kind string, v any) error {
	if n, ok := v.(normalizer); ok {
		n.normalize()
	}
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Entity: kind, Err: err}
	}
	return nil
}

// UnwrapItem strips Planka's {"item": ...} envelope when present and
// returns raw unchanged otherwise.
func UnwrapItem(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var env struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return raw
	}
	if len(env.Item) == 0 || bytes.Equal(env.Item, []byte("null")) {
		return raw
	}
	return env.Item
}

// DecodeItem decodes a single-entity response and validates it.
func DecodeItem[T any](kind string, raw json.RawMessage) (*T, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ValidationError{Entity: kind, Err: errors.New("empty response")}
	}
	var v T
	if err := json.Unmarshal(UnwrapItem(raw), &v); err != nil {
		return nil, &ValidationError{Entity: kind, Err: err}
	}
	if err := Validate(kind, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DecodeList decodes a bare JSON array of entities and validates each one.
func DecodeList[T any](kind string, raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Entity: kind, Err: err}
	}
	if items == nil {
		return nil, &ValidationError{Entity: kind, Err: errors.New("expected an array")}
	}
	for i := range items {
		if err := Validate(kind, &items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return items, nil
}

// Ack acknowledges a successful delete.
type Ack struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
