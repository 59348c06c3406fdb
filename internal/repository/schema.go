package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		token TEXT NOT NULL,
		push_token TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_a_id TEXT NOT NULL REFERENCES users(id),
		user_b_id TEXT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_a_id, user_b_id),
		CHECK (user_a_id < user_b_id)
	)`,
	`CREATE TABLE IF NOT EXISTS memories (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY (START WITH 100) PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		taken_on DATE NOT NULL,
		location TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		group_tag TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL DEFAULT '',
		public BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS memories_owner_idx ON memories (owner_id)`,
}

// CreateSchema creates the tables if they do not exist
func CreateSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
