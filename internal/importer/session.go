package importer

import (
	"errors"
	"time"
)

// SessionStatus is the import session lifecycle state.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionParsed    SessionStatus = "parsed"
	SessionCommitted SessionStatus = "committed"
	SessionFailed    SessionStatus = "failed"
)

// Session lifecycle errors.
var (
	ErrSessionNotFound = errors.New("import session not found")
	ErrNotParsed       = errors.New("session is not in parsed status")
	ErrParseInFlight   = errors.New("a parse is already running for this session")
)

// Session is one upload's staging state: its stored document, the last
// parse outcome, and the lifecycle status. The session owns its stored
// rows/errors until commit; the commit engine reads them (or an edited
// copy) and never mutates them in place.
type Session struct {
	ID             string            `json:"id"`
	SourceFilename string            `json:"sourceFilename"`
	StoredPath     string            `json:"-"`
	SourceKind     SourceKind        `json:"sourceKind"`
	Status         SessionStatus     `json:"status"`
	RowCount       int               `json:"rowCount"`
	Rows           []CandidateRecord `json:"rows,omitempty"`
	Errors         []RowError        `json:"errors,omitempty"`
	ParseError     string            `json:"parseError,omitempty"`
	CreatedBy      string            `json:"createdBy,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
