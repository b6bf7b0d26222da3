// Package service implements business logic and orchestration between HTTP
// handlers and the repository layer.
package service

import (
	"context"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
	"github.com/Shivanand-hulikatti/concerts/internal/storage"
)

// The store interfaces are satisfied by the repository package.

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Search(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	ListByUser(ctx context.Context, userID string) ([]model.Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	Delete(ctx context.Context, id string) error
}

// BookingStore reserves tickets and lists bookings.
type BookingStore interface {
	Book(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
}

// CommentStore persists comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error)
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

// ImageStore writes uploads in two steps so an image only appears under its
// public path once the event that references it is stored.
type ImageStore interface {
	Stage(u storage.Upload) (*storage.Staged, error)
	Commit(st *storage.Staged) error
	Discard(st *storage.Staged) error
}

// uniq returns ids without duplicates, keeping first occurrences in order.
func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
