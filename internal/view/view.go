// Package view maps stored records to the values the HTML pages render.
// Derived fields live here so the stored records are never modified for
// display.
package view

import (
	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

// Event is an event with its display fields.
type Event struct {
	model.Event
	DisplayStatus string
	// TimestampFormatted pre-fills the datetime-local input of the edit form.
	TimestampFormatted string
}

// NewEvent builds the display form of e.
func NewEvent(e model.Event) Event {
	return Event{
		Event:              e,
		DisplayStatus:      e.DisplayStatus(),
		TimestampFormatted: e.Timestamp.Format(form.TimestampLayout),
	}
}

// NewEvents maps NewEvent over events, keeping their order.
func NewEvents(events []model.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, NewEvent(e))
	}
	return out
}

// Comment is a comment with its author's name.
type Comment struct {
	model.Comment
	Username string
}

// NewComments attaches usernames to comments. Authors missing from
// usernames are shown with an empty name.
func NewComments(comments []model.Comment, usernames map[string]string) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, Comment{Comment: c, Username: usernames[c.UserID]})
	}
	return out
}

// Booking is a booking with the event it is for.
type Booking struct {
	model.Booking
	Event Event
}

// NewBookings pairs every booking with its event. Bookings whose event is
// not in events are left out.
func NewBookings(bookings []model.Booking, events []model.Event) []Booking {
	byID := make(map[string]model.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		e, ok := byID[b.EventID]
		if !ok {
			continue
		}
		out = append(out, Booking{Booking: b, Event: NewEvent(e)})
	}
	return out
}

// EventDetail is everything shown on an event's own page.
type EventDetail struct {
	Event    Event
	Comments []Comment
}
