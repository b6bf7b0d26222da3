package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Book records a booking for b.Tickets tickets of event b.EventID and takes
// them out of the event's inventory in the same transaction.
//
// The event row is read with SELECT … FOR UPDATE, so concurrent bookings for
// the same event queue up behind the row lock and each one sees the inventory
// left by the previous commit. When fewer tickets remain than requested,
// model.ErrNotEnoughTickets is returned and nothing is written.
//
// b.Price is set to the event's unit price times the number of tickets.
func (r *BookingRepository) Book(ctx context.Context, b *model.Booking) error {
	if !validID(b.EventID) {
		return model.ErrNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, b.EventID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if err := event.Reserve(b.Tickets); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE events SET tickets = $2 WHERE id = $1`, event.ID, event.Tickets,
	); err != nil {
		return fmt.Errorf("decrement tickets: %w", err)
	}

	b.ID = uuid.New().String()
	b.Price = float64(b.Tickets) * event.Price
	b.CreatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`INSERT INTO bookings (id, tickets, price, user_id, event_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Tickets, b.Price, b.UserID, b.EventID, b.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if !validID(userID) {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT id, tickets, price, user_id, event_id, created_at
		 FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Tickets, &b.Price, &b.UserID, &b.EventID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
