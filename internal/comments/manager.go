// Package comments manages free-text comments on Planka cards.
//
// Planka has no single-comment read: a comment is found by listing its
// card's comments and scanning for the id, so every single-comment read
// needs the card id. Update and delete address the comment directly.
package comments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HendryAvila/planka-mcp/internal/planka"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingCardContext means a single-comment read was asked for
	// without the card it lives on.
	ErrMissingCardContext = errors.New("card id is required to locate a comment")

	// ErrCommentNotFound means the card's comments do not include the id.
	ErrCommentNotFound = errors.New("comment not found")
)

// CommentPatch is the only editable part of a comment.
type CommentPatch struct {
	Text string `json:"text"`
}

// Manager issues comment operations through a planka.Requester.
type Manager struct {
	api planka.Requester
	log logrus.FieldLogger
}

// NewManager creates a Manager.
func NewManager(api planka.Requester, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{api: api, log: log.WithField("component", "comments")}
}

// CreateComment posts a comment on a card.
func (m *Manager) CreateComment(ctx context.Context, cardID, text string) (*planka.Comment, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, fmt.Errorf("failed to create comment: %w", ErrMissingCardContext)
	}

	raw, err := m.api.Request(ctx, http.MethodPost, planka.CardCommentsPath(cardID), map[string]string{
		"text": text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	c, err := planka.DecodeItem[planka.Comment](planka.KindComment, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

// ListComments returns a card's comments. It never fails: an unreadable
// card or an unrecognized response shape yields an empty slice.
func (m *Manager) ListComments(ctx context.Context, cardID string) []planka.Comment {
	list, err := m.fetchComments(ctx, cardID)
	if err != nil {
		m.log.WithError(err).WithField("card_id", cardID).Debug("listing comments degraded to empty")
		return []planka.Comment{}
	}
	return list
}

// GetComment finds one comment on a card.
func (m *Manager) GetComment(ctx context.Context, id, cardID string) (*planka.Comment, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, fmt.Errorf("comment %s: %w", id, ErrMissingCardContext)
	}

	list, err := m.fetchComments(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %s: %w", id, err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s on card %s", ErrCommentNotFound, id, cardID)
}

// UpdateComment replaces a comment's text.
func (m *Manager) UpdateComment(ctx context.Context, id string, patch CommentPatch) (*planka.Comment, error) {
	raw, err := m.api.Request(ctx, http.MethodPatch, planka.CommentPath(id), patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	c, err := planka.DecodeItem[planka.Comment](planka.KindComment, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return c, nil
}

// DeleteComment deletes a comment.
func (m *Manager) DeleteComment(ctx context.Context, id string) (*planka.Ack, error) {
	if _, err := m.api.Request(ctx, http.MethodDelete, planka.CommentPath(id), nil); err != nil {
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	return &planka.Ack{Success: true, ID: id}, nil
}

func (m *Manager) fetchComments(ctx context.Context, cardID string) ([]planka.Comment, error) {
	raw, err := m.api.Request(ctx, http.MethodGet, planka.CardCommentsPath(cardID), nil)
	if err != nil {
		return nil, err
	}
	return decodeComments(raw)
}
