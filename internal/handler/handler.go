// Package handler contains the chi HTTP handlers that translate browser
// requests and form posts to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
	"github.com/Shivanand-hulikatti/concerts/internal/service"
	"github.com/Shivanand-hulikatti/concerts/internal/storage"
	"github.com/Shivanand-hulikatti/concerts/internal/view"
)

// EventService is the event behaviour the pages need.
type EventService interface {
	Search(ctx context.Context, f model.EventFilter) ([]view.Event, error)
	Detail(ctx context.Context, id string) (*view.EventDetail, error)
	ListOwned(ctx context.Context, userID string) ([]view.Event, error)
	Save(ctx context.Context, userID string, f form.Event, upload *storage.Upload) (*service.SaveResult, error)
	Delete(ctx context.Context, userID, id string) error
}

// BookingService books tickets and lists a user's bookings.
type BookingService interface {
	Book(ctx context.Context, userID string, f form.Booking) (*model.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]view.Booking, error)
}

// CommentService adds comments to events.
type CommentService interface {
	Add(ctx context.Context, userID string, f form.Comment) (*model.Comment, error)
}

// AccountService registers users, logs them in and resolves sessions.
type AccountService interface {
	Register(ctx context.Context, f form.Register) (*model.User, error)
	Login(ctx context.Context, f form.Login) (string, *model.User, error)
	User(ctx context.Context, token string) (*model.User, error)
}

// Config holds the HTTP-facing settings.
type Config struct {
	ImagesDir    string
	ImagesPrefix string
	SessionTTL   time.Duration
	CookieSecure bool
}

// Handler holds every page handler of the site.
type Handler struct {
	events   EventService
	bookings BookingService
	comments CommentService
	accounts AccountService
	cfg      Config
	pages    map[string]*template.Template
}

// New parses the page templates and constructs a Handler.
func New(events EventService, bookings BookingService, comments CommentService, accounts AccountService, cfg Config) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		events:   events,
		bookings: bookings,
		comments: comments,
		accounts: accounts,
		cfg:      cfg,
		pages:    pages,
	}, nil
}

// Routes builds the router with the global middleware stack.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.loadUser)

	r.Get("/health", HealthCheck)

	r.Get("/", h.Home)
	r.Get("/findevents", h.FindEvents)
	r.Get("/findevents/{id}", h.EventDetail)
	r.With(h.requireUser).Post("/findevents/{id}", h.SubmitDetail)

	r.Get("/account", h.LoginPage)
	r.Post("/account", h.Login)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/myevents", h.MyEvents)
		r.Post("/myevents", h.SaveEvent)
		r.Get("/myevents/delete/{id}", h.DeleteEvent)
		r.Post("/myevents/delete/{id}", h.DeleteEvent)
		r.Get("/bookedevents", h.BookedEvents)
		r.Post("/bookedevents", h.BookedEvents)
		r.Get("/logout", h.Logout)
	})

	prefix := strings.TrimSuffix(h.cfg.ImagesPrefix, "/") + "/"
	r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(h.cfg.ImagesDir))))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail renders the error page matching err. Unexpected errors are logged and
// shown as a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		h.render(w, r, http.StatusNotFound, "error", &page{Title: "Not found", Message: "The page you requested does not exist"})
	case errors.Is(err, model.ErrForbidden):
		h.render(w, r, http.StatusForbidden, "error", &page{Title: "Forbidden", Message: "You can only change your own events"})
	default:
		logrus.WithFields(logrus.Fields{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
		h.render(w, r, http.StatusInternalServerError, "error", &page{Title: "Error", Message: "Something went wrong"})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
