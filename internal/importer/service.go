package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ParseTimeout is the maximum duration for a background parse job.
var ParseTimeout = 5 * time.Minute

// SessionStore persists import sessions. One record per upload; the last
// parsed rows/errors ride along as a structured blob.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	ListByCreator(ctx context.Context, createdBy string, limit int) ([]*Session, error)
}

// Service coordinates the import flow: upload, parse, review, commit.
type Service struct {
	sessions  SessionStore
	pipeline  *Pipeline
	matcher   *Matcher
	committer *Committer
	limiter   *ParseLimiter

	uploadsDir  string
	maxFileSize int64

	mu       sync.Mutex
	inflight map[string]bool // session IDs with a parse running
}

// ServiceOptions configure a Service.
type ServiceOptions struct {
	UploadsDir    string
	MaxFileSize   int64 // bytes; <=0 uses DefaultMaxFileSize
	MaxConcurrent int
	ParseWait     time.Duration
}

// DefaultMaxFileSize is the upload size ceiling (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// NewService creates the import service over the given collaborators.
func NewService(sessions SessionStore, members MemberDirectory, groups GroupDirectory, opts ServiceOptions) (*Service, error) {
	if opts.UploadsDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		opts.UploadsDir = filepath.Join(wd, "uploads")
	}
	if err := os.MkdirAll(opts.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}

	return &Service{
		sessions:    sessions,
		pipeline:    NewPipeline(),
		matcher:     NewMatcher(members),
		committer:   NewCommitter(members, groups),
		limiter:     NewParseLimiter(opts.MaxConcurrent, opts.ParseWait),
		uploadsDir:  opts.UploadsDir,
		maxFileSize: opts.MaxFileSize,
		inflight:    make(map[string]bool),
	}, nil
}

// Limiter exposes the parse limiter for shutdown draining.
func (s *Service) Limiter() *ParseLimiter { return s.limiter }

// Upload validates and stores one file, creating a pending session.
// Unsupported media types and oversized files are rejected before any
// state is written.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader, createdBy string) (*Session, error) {
	kind, err := KindForFilename(filename)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storedPath := filepath.Join(s.uploadsDir, id+strings.ToLower(filepath.Ext(filename)))

	f, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxFileSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if written > s.maxFileSize {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("file exceeds %dMB limit", s.maxFileSize/(1024*1024))
	}

	now := time.Now().UTC()
	session := &Session{
		ID:             id,
		SourceFilename: filename,
		StoredPath:     storedPath,
		SourceKind:     kind,
		Status:         SessionPending,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Parse runs extraction for a session synchronously and persists the
// outcome. Only one parse may be in flight per session.
func (s *Service) Parse(ctx context.Context, sessionID string, checkDuplicates bool) (*Session, error) {
	s.mu.Lock()
	if s.inflight[sessionID] {
		s.mu.Unlock()
		return nil, ErrParseInFlight
	}
	s.inflight[sessionID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, sessionID)
		s.mu.Unlock()
	}()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(session.StoredPath); err != nil {
		return nil, fmt.Errorf("stored file missing: %w", err)
	}

	extractor, err := s.pipeline.ExtractorFor(session.SourceKind)
	if err != nil {
		return nil, err
	}

	result, err := extractor.Extract(session.StoredPath)
	if err != nil {
		// Extraction failure is terminal for the session, not for the
		// server: record it and surface a single failure.
		session.Status = SessionFailed
		session.ParseError = err.Error()
		session.UpdatedAt = time.Now().UTC()
		if uerr := s.sessions.Update(ctx, session); uerr != nil {
			return nil, fmt.Errorf("mark session failed: %w", uerr)
		}
		return session, nil
	}

	if checkDuplicates {
		result.Rows = s.matcher.Annotate(ctx, result.Rows)
	}

	session.Status = SessionParsed
	session.Rows = result.Rows
	session.Errors = result.Errors
	session.RowCount = len(result.Rows)
	session.ParseError = ""
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("store parse result: %w", err)
	}
	return session, nil
}

// StartParse launches Parse as a background job. Completion transitions
// the session to parsed or failed; the caller polls session status.
func (s *Service) StartParse(sessionID string, checkDuplicates bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ParseTimeout)
		defer cancel()

		session, err := s.Parse(ctx, sessionID, checkDuplicates)
		if err != nil {
			slog.Error("parse job failed", "session_id", sessionID, "error", err)
			return
		}
		slog.Info("parse job finished",
			"session_id", sessionID,
			"status", session.Status,
			"rows", session.RowCount,
			"row_errors", len(session.Errors),
		)
	}()
}

// Commit applies a reviewed row set. When rows is nil the session's
// stored rows are the durable fallback. The session must be in parsed
// status; a session is never committed twice.
func (s *Service) Commit(ctx context.Context, sessionID string, rows []CandidateRecord, skipIndices []int) (*CommitResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionParsed {
		return nil, fmt.Errorf("%w (status %q)", ErrNotParsed, session.Status)
	}

	if rows == nil {
		rows = append([]CandidateRecord(nil), session.Rows...)
	}

	skip := make(map[int]bool, len(skipIndices))
	for _, idx := range skipIndices {
		skip[idx] = true
	}

	result := s.committer.Commit(ctx, rows, skip)

	session.Status = SessionCommitted
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("mark session committed: %w", err)
	}

	// The uploaded document is transient working state. Deleting it is
	// best-effort; a leftover file is not worth failing the commit over.
	if err := os.Remove(session.StoredPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not delete source document",
			"session_id", sessionID, "path", session.StoredPath, "error", err)
	}

	return result, nil
}

// Get returns one session with its stored rows and errors.
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// List returns a caller's recent sessions, newest first.
func (s *Service) List(ctx context.Context, createdBy string, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessions.ListByCreator(ctx, createdBy, limit)
}
