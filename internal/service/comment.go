package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

// CommentService adds comments to events.
type CommentService struct {
	comments CommentStore
	events   EventStore
}

// NewCommentService constructs a CommentService with its dependencies.
func NewCommentService(comments CommentStore, events EventStore) *CommentService {
	return &CommentService{comments: comments, events: events}
}

// Add appends a comment by userID to an existing event.
func (s *CommentService) Add(ctx context.Context, userID string, f form.Comment) (*model.Comment, error) {
	if _, err := s.events.GetByID(ctx, f.EventID); err != nil {
		return nil, err
	}

	c := &model.Comment{
		Description: f.Description,
		UserID:      userID,
		EventID:     f.EventID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}
