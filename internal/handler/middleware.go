package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/concerts/internal/auth"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

const sessionCookie = "session"

type ctxKey int

const userKey ctxKey = iota

// Logger writes one structured line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		entry := logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"client_ip":  r.RemoteAddr,
			"user_agent": r.UserAgent(),
			"request_id": chimiddleware.GetReqID(r.Context()),
		})
		if ww.Status() >= 500 {
			entry.Error("request failed")
		} else {
			entry.Info("request processed")
		}
	})
}

// loadUser attaches the logged-in user, if any, to the request context.
// A stale or forged session cookie is cleared.
func (h *Handler) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := h.accounts.User(r.Context(), c.Value)
		switch {
		case err == nil:
			r = r.WithContext(context.WithValue(r.Context(), userKey, u))
		case errors.Is(err, auth.ErrInvalidSession):
			h.clearSession(w)
		default:
			logrus.WithError(err).Warn("could not resolve session")
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser sends anonymous visitors to the login page.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			setFlash(w, "Please log in to access this page")
			redirect(w, r, "/account")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *model.User {
	u, _ := r.Context().Value(userKey).(*model.User)
	return u
}

func (h *Handler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
