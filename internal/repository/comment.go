package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create appends a comment.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO comments (id, description, user_id, event_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Description, c.UserID, c.EventID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListByEvent returns the comments left on an event, oldest first.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error) {
	if !validID(eventID) {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, description, user_id, event_id, created_at
		 FROM comments WHERE event_id = $1 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Description, &c.UserID, &c.EventID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
