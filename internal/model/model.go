// Package model defines the core domain types for the concerts ticketing site.
package model

import "time"

// EventStatus is the lifecycle status stored on an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusInactive  EventStatus = "inactive"
	StatusBooked    EventStatus = "booked"
	StatusCancelled EventStatus = "cancelled"
)

// Statuses lists every status an event may be stored with, in form order.
var Statuses = []EventStatus{StatusUpcoming, StatusInactive, StatusBooked, StatusCancelled}

// User is a registered account. PasswordHash is a bcrypt hash, never plaintext.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is a ticketed happening owned by the user who created it.
type Event struct {
	ID           string      `json:"id"`
	Timestamp    time.Time   `json:"timestamp"`
	Title        string      `json:"title"`
	Artist       string      `json:"artist"`
	Genre        string      `json:"genre"`
	VenueName    string      `json:"venue_name"`
	VenueAddress string      `json:"venue_address"`
	Status       EventStatus `json:"status"`
	Description  string      `json:"description"`
	Tickets      int         `json:"tickets"`
	Price        float64     `json:"price"`
	Image        string      `json:"image"`
	UserID       string      `json:"user_id"`
}

// DisplayStatus is the status shown to visitors: an upcoming event with no
// tickets left reads as "booked". The stored status is left untouched.
func (e *Event) DisplayStatus() string {
	if e.Tickets == 0 && e.Status == StatusUpcoming {
		return string(StatusBooked)
	}
	return string(e.Status)
}

// Reserve takes n tickets out of the remaining inventory.
// It returns ErrNotEnoughTickets and leaves the event unchanged when n exceeds
// what is left.
func (e *Event) Reserve(n int) error {
	if n > e.Tickets {
		return ErrNotEnoughTickets
	}
	e.Tickets -= n
	return nil
}

// Comment is an append-only note left on an event.
type Comment struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Booking is a user's reservation of a number of tickets for one event.
// Price is the total paid for all tickets.
type Booking struct {
	ID        string    `json:"id"`
	Tickets   int       `json:"tickets"`
	Price     float64   `json:"price"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventFilter holds the optional search criteria for events.
// Zero-valued fields impose no constraint.
type EventFilter struct {
	Title  string
	Artist string
	Genre  string
	After  *time.Time
	Before *time.Time
	Status string
	Limit  int
}
