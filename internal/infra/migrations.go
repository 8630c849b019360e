// README: Idempotent schema bootstrap for cars, bookings, reviews, notifications and profiles.
package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []struct {
	name string
	sql  string
}{
	{"cars", `
		CREATE TABLE IF NOT EXISTS cars (
			id               UUID PRIMARY KEY,
			name             TEXT NOT NULL,
			brand            TEXT NOT NULL,
			model            TEXT NOT NULL,
			year             INT NOT NULL,
			category         TEXT NOT NULL,
			price_per_day    NUMERIC(12,2) NOT NULL CHECK (price_per_day > 0),
			features         TEXT[] NOT NULL DEFAULT '{}',
			image_url        TEXT NOT NULL DEFAULT '',
			images           TEXT[] NOT NULL DEFAULT '{}',
			available        BOOLEAN NOT NULL DEFAULT TRUE,
			fuel_type        TEXT,
			transmission     TEXT,
			seating_capacity INT CHECK (seating_capacity IS NULL OR seating_capacity > 0),
			rating           NUMERIC(3,2) NOT NULL DEFAULT 0,
			total_reviews    INT NOT NULL DEFAULT 0,
			location         TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"bookings", `
		CREATE TABLE IF NOT EXISTS bookings (
			id             UUID PRIMARY KEY,
			user_id        TEXT NOT NULL,
			car_id         UUID NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
			start_date     DATE NOT NULL,
			end_date       DATE NOT NULL,
			days           INT NOT NULL,
			distance_km    DOUBLE PRECISION NOT NULL DEFAULT 0,
			include_driver BOOLEAN NOT NULL DEFAULT FALSE,
			add_ons        TEXT[] NOT NULL DEFAULT '{}',
			total_amount   BIGINT NOT NULL,
			currency       TEXT NOT NULL DEFAULT 'INR',
			payment_method TEXT NOT NULL,
			status         TEXT NOT NULL,
			status_version INT NOT NULL DEFAULT 0,
			delivery_time  TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (end_date > start_date)
		)`},
	{"bookings_car_idx", `CREATE INDEX IF NOT EXISTS bookings_car_dates_idx ON bookings (car_id, start_date, end_date)`},
	{"bookings_user_idx", `CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, created_at DESC)`},
	{"booking_status_events", `
		CREATE TABLE IF NOT EXISTS booking_status_events (
			id          BIGSERIAL PRIMARY KEY,
			booking_id  UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
			from_status TEXT NOT NULL,
			to_status   TEXT NOT NULL,
			actor_id    TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"reviews", `
		CREATE TABLE IF NOT EXISTS reviews (
			id         UUID PRIMARY KEY,
			user_id    TEXT NOT NULL,
			car_id     UUID NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
			booking_id UUID NOT NULL UNIQUE REFERENCES bookings(id) ON DELETE CASCADE,
			rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			id         UUID PRIMARY KEY,
			user_id    TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL,
			type       TEXT NOT NULL,
			read       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"notifications_user_idx", `CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`},
	{"profiles", `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id    TEXT PRIMARY KEY,
			full_name  TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"admin_users", `
		CREATE TABLE IF NOT EXISTS admin_users (
			user_id    TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
}

// RunMigrations creates missing tables and indexes. Every statement is
// IF NOT EXISTS so it is safe on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, step := range schema {
		if _, err := pool.Exec(ctx, step.sql); err != nil {
			return fmt.Errorf("migrate %s: %w", step.name, err)
		}
	}
	return nil
}
