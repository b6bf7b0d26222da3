// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/concerts/internal/auth"
	"github.com/Shivanand-hulikatti/concerts/internal/config"
	"github.com/Shivanand-hulikatti/concerts/internal/database"
	"github.com/Shivanand-hulikatti/concerts/internal/handler"
	"github.com/Shivanand-hulikatti/concerts/internal/repository"
	"github.com/Shivanand-hulikatti/concerts/internal/service"
	"github.com/Shivanand-hulikatti/concerts/internal/storage"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)

	if err := run(); err != nil {
		logrus.WithError(err).Fatal("concerts stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if cfg.Auth.UsesDefaultSecret() {
		logrus.Warn("auth.secret is the built-in default; set CONCERTS_AUTH_SECRET before exposing the site")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ── Database ─────────────────────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	logrus.Info("connected to PostgreSQL")

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	// ── Wire up layers ───────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	images := storage.NewImages(cfg.Storage.ImagesDir, cfg.Storage.URLPrefix)
	sessions := auth.NewSessions(cfg.Auth.Secret, cfg.Auth.SessionTTL)

	eventSvc := service.NewEventService(eventRepo, commentRepo, userRepo, images, service.EventOptions{
		DefaultImage: cfg.Storage.DefaultImage,
		SearchLimit:  cfg.App.SearchLimit,
	})
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo)
	commentSvc := service.NewCommentService(commentRepo, eventRepo)
	accountSvc := service.NewAccountService(userRepo, sessions)

	h, err := handler.New(eventSvc, bookingSvc, commentSvc, accountSvc, handler.Config{
		ImagesDir:    images.Dir(),
		ImagesPrefix: cfg.Storage.URLPrefix,
		SessionTTL:   sessions.TTL(),
		CookieSecure: cfg.Auth.CookieSecure,
	})
	if err != nil {
		return err
	}

	// ── Serve until a shutdown signal ────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Info("server stopped")
	return nil
}
