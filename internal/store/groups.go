package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupDirectory is the Postgres implementation of the importer's cell
// group name lookup.
type GroupDirectory struct {
	pool *pgxpool.Pool
}

// NewGroupDirectory returns a group directory over the given pool.
func NewGroupDirectory(pool *pgxpool.Pool) *GroupDirectory {
	return &GroupDirectory{pool: pool}
}

// FindIDByName resolves a group name to its id, case-insensitively.
// A miss returns ("", nil); missing groups are not an error.
func (d *GroupDirectory) FindIDByName(ctx context.Context, name string) (string, error) {
	var id string
	err := d.pool.QueryRow(ctx,
		`SELECT id FROM member_groups WHERE lower(name) = lower($1)`, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query group: %w", err)
	}
	return id, nil
}
