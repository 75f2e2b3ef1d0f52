package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool with conservative defaults.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// Reasonable defaults for small services; callers can override if needed.
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	// Validate connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// EnsureSchema creates the tables the API relies on. It is idempotent and
// runs at startup so a fresh database needs no manual migration step.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL,
			birth_date DATE,
			favorite_movies BIGINT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS movies (
			id BIGSERIAL PRIMARY KEY,
			title TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL,
			genre_name TEXT NOT NULL DEFAULT '',
			genre_description TEXT NOT NULL DEFAULT '',
			director_name TEXT NOT NULL DEFAULT '',
			director_bio TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL DEFAULT '',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			rating DOUBLE PRECISION,
			release_date DATE
		);`,
		`CREATE TABLE IF NOT EXISTS actors (
			id BIGSERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			birth DATE,
			death DATE
		);`,
		`CREATE TABLE IF NOT EXISTS movie_actors (
			movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			actor_id BIGINT NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (movie_id, actor_id)
		);`,
		`CREATE INDEX IF NOT EXISTS movies_genre_name_idx ON movies (genre_name);`,
		`CREATE INDEX IF NOT EXISTS movies_director_name_idx ON movies (director_name);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
