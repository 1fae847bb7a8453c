// Package store provides the PostgreSQL-backed persistence for import
// sessions and the member/group directories, built on pgx.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhall/member-import/internal/importer"
)

// SessionStore persists import sessions in the import_sessions table.
// Parsed rows and row errors are stored as JSONB blobs: they are opaque
// working state read back for review and commit, never queried by field.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore returns a session store over the given pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Create inserts a new session record.
func (s *SessionStore) Create(ctx context.Context, session *importer.Session) error {
	rows, errs, err := marshalBlobs(session)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_sessions
			(id, source_filename, stored_path, source_kind, status,
			 row_count, rows, errors, parse_error, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		session.ID, session.SourceFilename, session.StoredPath,
		string(session.SourceKind), string(session.Status),
		session.RowCount, rows, errs, session.ParseError,
		session.CreatedBy, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get returns one session by id, including its stored rows and errors.
func (s *SessionStore) Get(ctx context.Context, id string) (*importer.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source_filename, stored_path, source_kind, status,
		       row_count, rows, errors, parse_error, created_by, created_at, updated_at
		FROM import_sessions WHERE id = $1`, id)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, importer.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Update overwrites a session's mutable state (status, rows, errors).
func (s *SessionStore) Update(ctx context.Context, session *importer.Session) error {
	rows, errs, err := marshalBlobs(session)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE import_sessions
		SET status = $2, row_count = $3, rows = $4, errors = $5,
		    parse_error = $6, updated_at = $7
		WHERE id = $1`,
		session.ID, string(session.Status), session.RowCount,
		rows, errs, session.ParseError, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrSessionNotFound
	}
	return nil
}

// ListByCreator returns a caller's most recent sessions, without the row
// blobs (metadata only, for listings).
func (s *SessionStore) ListByCreator(ctx context.Context, createdBy string, limit int) ([]*importer.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source_filename, stored_path, source_kind, status,
		       row_count, parse_error, created_by, created_at, updated_at
		FROM import_sessions
		WHERE created_by = $1
		ORDER BY created_at DESC
		LIMIT $2`, createdBy, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*importer.Session
	for rows.Next() {
		var sess importer.Session
		var kind, status string
		if err := rows.Scan(&sess.ID, &sess.SourceFilename, &sess.StoredPath,
			&kind, &status, &sess.RowCount, &sess.ParseError,
			&sess.CreatedBy, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.SourceKind = importer.SourceKind(kind)
		sess.Status = importer.SessionStatus(status)
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func marshalBlobs(session *importer.Session) ([]byte, []byte, error) {
	rows, err := json.Marshal(session.Rows)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal rows: %w", err)
	}
	errs, err := json.Marshal(session.Errors)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal errors: %w", err)
	}
	return rows, errs, nil
}

func scanSession(row pgx.Row) (*importer.Session, error) {
	var sess importer.Session
	var kind, status string
	var rowsJSON, errsJSON []byte

	if err := row.Scan(&sess.ID, &sess.SourceFilename, &sess.StoredPath,
		&kind, &status, &sess.RowCount, &rowsJSON, &errsJSON,
		&sess.ParseError, &sess.CreatedBy, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return nil, err
	}

	sess.SourceKind = importer.SourceKind(kind)
	sess.Status = importer.SessionStatus(status)
	if len(rowsJSON) > 0 {
		if err := json.Unmarshal(rowsJSON, &sess.Rows); err != nil {
			return nil, fmt.Errorf("unmarshal rows: %w", err)
		}
	}
	if len(errsJSON) > 0 {
		if err := json.Unmarshal(errsJSON, &sess.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors: %w", err)
		}
	}
	return &sess, nil
}
