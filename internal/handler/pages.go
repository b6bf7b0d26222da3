package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
	"github.com/Shivanand-hulikatti/concerts/internal/storage"
)

const maxUploadSize = 10 << 20

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", &page{Title: "Concerts"})
}

// FindEvents handles GET /findevents
// Every non-empty query parameter narrows the listing.
func (h *Handler) FindEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, errs := form.ParseFilter(query)

	events, err := h.events.Search(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p := &page{Title: "Find events", Events: events, Values: query, Flashes: errs.Messages()}
	if len(events) == 0 {
		p.Flashes = append(p.Flashes, "No events found")
	}
	h.render(w, r, http.StatusOK, "findevents", p)
}

// EventDetail handles GET /findevents/{id}
func (h *Handler) EventDetail(w http.ResponseWriter, r *http.Request) {
	h.showDetail(w, r, http.StatusOK, nil)
}

func (h *Handler) showDetail(w http.ResponseWriter, r *http.Request, status int, errs form.Errors) {
	detail, err := h.events.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, "eventdetail", &page{
		Title:   detail.Event.Title,
		Detail:  detail,
		Values:  r.PostForm,
		Flashes: errs.Messages(),
	})
}

// SubmitDetail handles POST /findevents/{id}
// The hidden "kind" field selects between the comment and booking forms.
func (h *Handler) SubmitDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := currentUser(r)

	if err := r.ParseForm(); err != nil {
		h.showDetail(w, r, http.StatusBadRequest, form.Errors{"form": "Could not read the submitted form"})
		return
	}
	d, errs := form.ParseDetail(r.PostForm)
	if len(errs) > 0 {
		h.showDetail(w, r, http.StatusBadRequest, errs)
		return
	}

	switch d.Kind {
	case form.KindComment:
		d.Comment.EventID = id
		if _, err := h.comments.Add(r.Context(), user.ID, d.Comment); err != nil {
			h.fail(w, r, err)
			return
		}
	case form.KindBooking:
		d.Booking.EventID = id
		_, err := h.bookings.Book(r.Context(), user.ID, d.Booking)
		switch {
		case errors.Is(err, model.ErrNotEnoughTickets):
			setFlash(w, "Booking denied: Exceeded number of tickets available")
		case err != nil:
			h.fail(w, r, err)
			return
		}
	}
	redirect(w, r, "/findevents/"+id)
}

// MyEvents handles GET /myevents
func (h *Handler) MyEvents(w http.ResponseWriter, r *http.Request) {
	h.showMyEvents(w, r, http.StatusOK, nil)
}

func (h *Handler) showMyEvents(w http.ResponseWriter, r *http.Request, status int, errs form.Errors) {
	events, err := h.events.ListOwned(r.Context(), currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p := &page{Title: "My events", Events: events, Values: r.PostForm, Flashes: errs.Messages()}
	if len(events) == 0 {
		p.Flashes = append(p.Flashes, "No events found")
	}
	h.render(w, r, status, "myevents", p)
}

// SaveEvent handles POST /myevents
// The multipart form creates a new event or updates the one named by event_id.
func (h *Handler) SaveEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.showMyEvents(w, r, http.StatusBadRequest, form.Errors{"form": "Could not read the submitted form"})
		return
	}

	f, errs := form.ParseEvent(r.PostForm)

	var upload *storage.Upload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if err := form.CheckImage(header.Filename); err != nil {
			errs.Add("image", form.ImageFormatsMessage)
		}
		upload = &storage.Upload{Filename: header.Filename, Body: file}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		errs.Add("image", "Could not read the uploaded image")
	}

	if len(errs) > 0 {
		h.showMyEvents(w, r, http.StatusBadRequest, errs)
		return
	}

	res, err := h.events.Save(r.Context(), currentUser(r).ID, f, upload)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			h.showMyEvents(w, r, http.StatusBadRequest, form.Errors{"image": form.ImageFormatsMessage})
			return
		}
		h.fail(w, r, err)
		return
	}
	if res.DefaultImage {
		setFlash(w, "No image found, using default image")
	}
	redirect(w, r, "/myevents")
}

// DeleteEvent handles /myevents/delete/{id}
// Only the owner may delete an event; its bookings and comments go with it.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/myevents")
}

// BookedEvents handles /bookedevents
func (h *Handler) BookedEvents(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p := &page{Title: "Booked events", Bookings: bookings}
	if len(bookings) == 0 {
		p.Flashes = []string{"No bookings found"}
	}
	h.render(w, r, http.StatusOK, "bookedevents", p)
}

// LoginPage handles GET /account
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account", &page{Title: "Account"})
}

// Login handles POST /account
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "account", &page{Title: "Account", Flashes: []string{"Could not read the submitted form"}})
		return
	}

	f, errs := form.ParseLogin(r.PostForm)
	if len(errs) > 0 {
		h.render(w, r, http.StatusBadRequest, "account", &page{Title: "Account", Values: r.PostForm, Flashes: errs.Messages()})
		return
	}

	token, _, err := h.accounts.Login(r.Context(), f)
	switch {
	case errors.Is(err, model.ErrIncorrectEmail):
		h.render(w, r, http.StatusUnauthorized, "account", &page{Title: "Account", Values: r.PostForm, Flashes: []string{"Incorrect email"}})
		return
	case errors.Is(err, model.ErrIncorrectPassword):
		h.render(w, r, http.StatusUnauthorized, "account", &page{Title: "Account", Values: r.PostForm, Flashes: []string{"Incorrect password"}})
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.setSession(w, token)
	redirect(w, r, "/")
}

// Logout handles GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w)
	setFlash(w, "Logged out")
	redirect(w, r, "/")
}

// RegisterPage handles GET /register
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", &page{Title: "Register"})
}

// Register handles POST /register
// A new account is not logged in; the user is sent to the login page.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "register", &page{Title: "Register", Flashes: []string{"Could not read the submitted form"}})
		return
	}

	f, errs := form.ParseRegister(r.PostForm)
	if len(errs) > 0 {
		h.render(w, r, http.StatusBadRequest, "register", &page{Title: "Register", Values: r.PostForm, Flashes: errs.Messages()})
		return
	}

	_, err := h.accounts.Register(r.Context(), f)
	switch {
	case errors.Is(err, model.ErrUserExists):
		setFlash(w, "User name or email already exists")
		redirect(w, r, "/register")
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	setFlash(w, "Registered successfully, please log in")
	redirect(w, r, "/account")
}
