package form

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

// ImageFormatsMessage is shown when an upload is not an allowed image.
const ImageFormatsMessage = "Only supports file formats: png, jpg, jpeg"

// ErrImageFormat is returned by CheckImage for files outside the allow-list.
var ErrImageFormat = errors.New("unsupported image format")

var imageFormats = map[string]bool{"png": true, "jpg": true, "jpeg": true}

// CheckImage rejects uploads whose extension is not an allowed image format.
func CheckImage(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !imageFormats[ext] {
		return ErrImageFormat
	}
	return nil
}

// Login is the form on the account page.
type Login struct {
	Email    string `mapstructure:"email" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

var loginMessages = messages{
	"email":    "Enter an email",
	"password": "Enter a password",
}

// ParseLogin decodes and validates the login form.
func ParseLogin(src url.Values) (Login, Errors) {
	return decode[Login](src, loginMessages)
}

// Register is the sign-up form.
type Register struct {
	Username string `mapstructure:"username" validate:"required,max=100"`
	Email    string `mapstructure:"email" validate:"required,email,max=255"`
	Password string `mapstructure:"password" validate:"required"`
	Confirm  string `mapstructure:"confirm" validate:"required,eqfield=Password"`
}

var registerMessages = messages{
	"username":        "Enter a username",
	"email":           "Enter an email",
	"email.email":     "Enter a valid email",
	"password":        "Enter a password",
	"confirm":         "Enter the password again",
	"confirm.eqfield": "Passwords should match",
}

// ParseRegister decodes and validates the sign-up form.
func ParseRegister(src url.Values) (Register, Errors) {
	return decode[Register](src, registerMessages)
}

// Event is the create/update form on the "my events" page. An empty EventID
// means a new event.
type Event struct {
	EventID      string            `mapstructure:"event_id"`
	Title        string            `mapstructure:"title" validate:"required,max=255"`
	Artist       string            `mapstructure:"artist" validate:"required,max=255"`
	Genre        string            `mapstructure:"genre" validate:"required,max=100"`
	Timestamp    time.Time         `mapstructure:"timestamp" validate:"required"`
	VenueName    string            `mapstructure:"venue_name" validate:"required,max=255"`
	VenueAddress string            `mapstructure:"venue_address" validate:"required,max=255"`
	Description  string            `mapstructure:"desc" validate:"required"`
	Status       model.EventStatus `mapstructure:"status" validate:"required,oneof=upcoming inactive booked cancelled"`
	Tickets      int               `mapstructure:"tickets" validate:"min=0,max=2147483647"`
	Price        float64           `mapstructure:"price" validate:"min=0,max=1000000"`
}

var eventMessages = messages{
	"title":          "Enter a title",
	"artist":         "Enter the name of the artist",
	"genre":          "Enter the event genre",
	"timestamp":      "Enter the date and time",
	"timestamp.type": "Enter a valid date and time",
	"venue_name":     "Enter the venue name",
	"venue_address":  "Enter the venue address",
	"desc":           "Enter a description",
	"status":         "Select a status",
	"tickets":        "Enter a valid number of tickets",
	"price":          "Enter a valid price",
}

// ParseEvent decodes the event form. Tickets and price must be present even
// though zero is a valid value for both.
func ParseEvent(src url.Values) (Event, Errors) {
	e, errs := decode[Event](src, eventMessages)
	for _, key := range []string{"tickets", "price"} {
		if strings.TrimSpace(src.Get(key)) == "" {
			errs.Add(key, eventMessages.lookup(key, "required"))
		}
	}
	return e, errs
}

// Apply copies the submitted fields onto ev. The image and owner are left to
// the caller.
func (f Event) Apply(ev *model.Event) {
	ev.Timestamp = f.Timestamp
	ev.Title = f.Title
	ev.Artist = f.Artist
	ev.Genre = f.Genre
	ev.VenueName = f.VenueName
	ev.VenueAddress = f.VenueAddress
	ev.Description = f.Description
	ev.Status = f.Status
	ev.Tickets = f.Tickets
	ev.Price = f.Price
}

// Comment is the comment form on the event detail page.
type Comment struct {
	EventID     string `mapstructure:"event_id"`
	Description string `mapstructure:"desc" validate:"required"`
}

var commentMessages = messages{
	"desc": "Write a comment",
}

// Booking is the ticket form on the event detail page.
type Booking struct {
	EventID string `mapstructure:"event_id"`
	Tickets int    `mapstructure:"tickets" validate:"required,min=1,max=2147483647"`
}

var bookingMessages = messages{
	"tickets":      "Enter the number of tickets to book",
	"tickets.type": "Enter a valid number of tickets",
	"tickets.min":  "Enter a valid number of tickets",
	"tickets.max":  "Enter a valid number of tickets",
}

// Detail is one of the two forms on the event detail page, selected by Kind.
// Only the member matching Kind is populated.
type Detail struct {
	Kind    Kind
	Comment Comment
	Booking Booking
}

// ParseDetail reads the hidden "kind" field and decodes the matching form.
func ParseDetail(src url.Values) (Detail, Errors) {
	d := Detail{Kind: Kind(strings.TrimSpace(src.Get("kind")))}

	var errs Errors
	switch d.Kind {
	case KindComment:
		d.Comment, errs = decode[Comment](src, commentMessages)
	case KindBooking:
		d.Booking, errs = decode[Booking](src, bookingMessages)
	default:
		errs = Errors{"kind": "Unknown form submitted"}
	}
	return d, errs
}

var filterLayouts = []string{TimestampLayout, "2006-01-02"}

// ParseFilter builds the search filter from query parameters. Blank values
// and the literal "submit" are ignored. An unreadable date bound is reported
// and dropped, so it never narrows the result.
func ParseFilter(src url.Values) (model.EventFilter, Errors) {
	var f model.EventFilter
	errs := Errors{}

	get := func(key string) string {
		v := strings.TrimSpace(src.Get(key))
		if v == "submit" {
			return ""
		}
		return v
	}
	bound := func(key string) *time.Time {
		v := get(key)
		if v == "" {
			return nil
		}
		for _, layout := range filterLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
		errs.Add(key, "Ignoring invalid date "+v)
		return nil
	}

	f.Title = get("title")
	f.Artist = get("artist")
	f.Genre = get("genre")
	f.After = bound("aftertimestamp")
	f.Before = bound("beforetimestamp")
	f.Status = get("status")
	return f, errs
}
