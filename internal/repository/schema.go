package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		email VARCHAR(254) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS travel_options (
		id BIGSERIAL PRIMARY KEY,
		type VARCHAR(10) NOT NULL CHECK (type IN ('Flight', 'Train', 'Bus')),
		source VARCHAR(100) NOT NULL,
		destination VARCHAR(100) NOT NULL,
		date_time TIMESTAMPTZ NOT NULL,
		price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
		available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS travel_options_date_time_idx ON travel_options (date_time)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL CONSTRAINT bookings_user_id_fkey REFERENCES users (id) ON DELETE CASCADE,
		travel_option_id BIGINT NOT NULL REFERENCES travel_options (id) ON DELETE CASCADE,
		number_of_seats INTEGER NOT NULL CHECK (number_of_seats > 0),
		total_price_cents BIGINT NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'Confirmed' CHECK (status IN ('Confirmed', 'Cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_created_idx ON bookings (user_id, created_at DESC)`,
}

func CreateDatabaseSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
