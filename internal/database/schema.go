package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      VARCHAR(100) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id            UUID PRIMARY KEY,
		starts_at     TIMESTAMP        NOT NULL,
		title         VARCHAR(255)     NOT NULL,
		artist        VARCHAR(255)     NOT NULL,
		genre         VARCHAR(100)     NOT NULL,
		venue_name    VARCHAR(255)     NOT NULL DEFAULT '',
		venue_address VARCHAR(255)     NOT NULL DEFAULT '',
		status        VARCHAR(20)      NOT NULL
			CHECK (status IN ('upcoming', 'inactive', 'booked', 'cancelled')),
		description   TEXT             NOT NULL DEFAULT '',
		tickets       INTEGER          NOT NULL CHECK (tickets >= 0),
		price         DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		image         VARCHAR(400)     NOT NULL,
		user_id       UUID             NOT NULL REFERENCES users(id)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id          UUID PRIMARY KEY,
		description TEXT        NOT NULL,
		user_id     UUID        NOT NULL REFERENCES users(id),
		event_id    UUID        NOT NULL REFERENCES events(id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id         UUID PRIMARY KEY,
		tickets    INTEGER          NOT NULL CHECK (tickets > 0),
		price      DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		user_id    UUID             NOT NULL REFERENCES users(id),
		event_id   UUID             NOT NULL REFERENCES events(id),
		created_at TIMESTAMPTZ      NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
	`CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_event_id ON comments(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_event_id ON bookings(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	logrus.Info("database migrations completed")
	return nil
}
