package model

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotEnoughTickets is returned when a booking asks for more tickets
	// than the event has left.
	ErrNotEnoughTickets = errors.New("not enough tickets available")

	// ErrForbidden is returned when a user acts on an event they do not own.
	ErrForbidden = errors.New("forbidden")

	ErrUserExists        = errors.New("user name or email already exists")
	ErrIncorrectEmail    = errors.New("incorrect email")
	ErrIncorrectPassword = errors.New("incorrect password")
)
