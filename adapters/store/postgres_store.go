package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/ports"
)

var clientStateTable = `create table if not exists client_state (
    key        text primary key,
    value      text NOT NULL,
    updated_at timestamp WITHOUT TIME ZONE NOT NULL DEFAULT (NOW() AT TIME ZONE 'UTC'))`

// PostgresStore keeps client state in a two-column table, for kiosk-style
// installations that already run a database.
type PostgresStore struct {
	c *pgxpool.Pool
}

// NewPostgresStore creates the backing table if needed.
func NewPostgresStore(ctx context.Context, c *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := c.Exec(ctx, clientStateTable); err != nil {
		return nil, fmt.Errorf("failed to create client_state table: %w", err)
	}
	return &PostgresStore{c: c}, nil
}

var _ ports.Store = (*PostgresStore)(nil)

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.c.QueryRow(ctx, `SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", core.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.c.Exec(ctx,
		`INSERT INTO client_state(key, value) VALUES($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW() AT TIME ZONE 'UTC'`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.c.Exec(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
