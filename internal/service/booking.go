package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
	"github.com/Shivanand-hulikatti/concerts/internal/view"
)

// BookingService books tickets and lists a user's bookings.
type BookingService struct {
	bookings BookingStore
	events   EventStore
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(bookings BookingStore, events EventStore) *BookingService {
	return &BookingService{bookings: bookings, events: events}
}

// Book reserves f.Tickets tickets of f.EventID for userID. The capacity check
// and the decrement happen atomically in the store.
func (s *BookingService) Book(ctx context.Context, userID string, f form.Booking) (*model.Booking, error) {
	b := &model.Booking{
		EventID: f.EventID,
		UserID:  userID,
		Tickets: f.Tickets,
	}

	if err := s.bookings.Book(ctx, b); err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrNotEnoughTickets) {
			return nil, err
		}
		return nil, fmt.Errorf("book tickets: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"event_id":   b.EventID,
		"user_id":    userID,
		"tickets":    b.Tickets,
	}).Info("booking created")
	return b, nil
}

// ListForUser returns userID's bookings, each with the event it is for.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]view.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.EventID)
	}
	events, err := s.events.ListByIDs(ctx, uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("load booked events: %w", err)
	}
	return view.NewBookings(bookings, events), nil
}
