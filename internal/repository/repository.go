// Package repository implements all database queries for the concerts site.
// It uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

const eventColumns = `id, starts_at, title, artist, genre, venue_name, venue_address,
	status, description, tickets, price, image, user_id`

// validID reports whether id can be looked up at all. Malformed ids are
// treated as missing rows instead of surfacing a cast error from Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// parseIDs converts the well-formed ids and drops the rest.
func parseIDs(ids []string) []uuid.UUID {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, u)
		}
	}
	return parsed
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Timestamp, &e.Title, &e.Artist, &e.Genre, &e.VenueName, &e.VenueAddress,
		&e.Status, &e.Description, &e.Tickets, &e.Price, &e.Image, &e.UserID,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and assigns it a generated UUID.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	e.ID = uuid.New().String()

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.Timestamp, e.Title, e.Artist, e.Genre, e.VenueName, e.VenueAddress,
		e.Status, e.Description, e.Tickets, e.Price, e.Image, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	if !validID(e.ID) {
		return model.ErrNotFound
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET starts_at = $2, title = $3, artist = $4, genre = $5, venue_name = $6,
		     venue_address = $7, status = $8, description = $9, tickets = $10,
		     price = $11, image = $12, user_id = $13
		 WHERE id = $1`,
		e.ID, e.Timestamp, e.Title, e.Artist, e.Genre, e.VenueName, e.VenueAddress,
		e.Status, e.Description, e.Tickets, e.Price, e.Image, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// GetByID returns a single event or model.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}

	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Search returns the events matching every criterion of the filter,
// earliest first.
func (r *EventRepository) Search(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	query, args := buildSearchQuery(f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows)
}

// ListByUser returns the events owned by a user, earliest first.
func (r *EventRepository) ListByUser(ctx context.Context, userID string) ([]model.Event, error) {
	if !validID(userID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE user_id = $1 ORDER BY starts_at ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	return collectEvents(rows)
}

// ListByIDs returns the events with the given ids. Unknown ids are skipped.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Event, error) {
	valid := parseIDs(ids)
	if len(valid) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ANY($1)`, valid,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by id: %w", err)
	}
	return collectEvents(rows)
}

// Delete removes an event together with its bookings and comments in one
// transaction.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return model.ErrNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event bookings: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event comments: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
