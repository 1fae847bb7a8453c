// Package importer provides the business logic for member roster imports.
// This package has no HTTP or storage dependencies and can be driven by any
// frontend: it turns uploaded documents into reviewable candidate records
// and applies reviewed records to the member directory.
package importer

import "strings"

// MaritalStatus is the canonical marital status enumeration.
type MaritalStatus string

const (
	MaritalSingle      MaritalStatus = "single"
	MaritalMarried     MaritalStatus = "married"
	MaritalUndisclosed MaritalStatus = "undisclosed"
)

// MemberStatus is the canonical membership status enumeration.
type MemberStatus string

const (
	StatusPendingApproval MemberStatus = "pending_approval"
	StatusActive          MemberStatus = "active"
	StatusInactive        MemberStatus = "inactive"
)

// CandidateRecord is one member row staged for review. String fields hold
// trimmed values; the empty string means "not provided". Birthday is a
// calendar date in YYYY-MM-DD form or empty.
type CandidateRecord struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Address       string        `json:"address,omitempty"`
	Birthday      string        `json:"birthday,omitempty"`
	MaritalStatus MaritalStatus `json:"maritalStatus"`
	MemberStatus  MemberStatus  `json:"memberStatus"`
	CellGroupName string        `json:"cellGroupName,omitempty"`
	BroughtBy     string        `json:"broughtBy,omitempty"`
	Notes         string        `json:"notes,omitempty"`

	// Duplicate is advisory review metadata. It is never persisted to the
	// member directory and is stripped before commit.
	Duplicate *DuplicateInfo `json:"duplicate,omitempty"`
}

// Issues returns the record's required-field defects, in a fixed order.
// A record with no issues is committable.
func (r CandidateRecord) Issues() []string {
	var issues []string
	if strings.TrimSpace(r.FirstName) == "" {
		issues = append(issues, "Missing first name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		issues = append(issues, "Missing last name")
	}
	return issues
}

// MatchType identifies which directory field produced a duplicate match,
// strongest first: email, then phone, then name+birthday.
type MatchType string

const (
	MatchEmail        MatchType = "email"
	MatchPhone        MatchType = "phone"
	MatchNameBirthday MatchType = "name_birthday"
)

// DuplicateInfo annotates a candidate record with the result of a directory
// lookup. Advisory only; the commit engine re-resolves matches itself.
type DuplicateInfo struct {
	IsMatch           bool      `json:"isMatch"`
	MatchedMemberID   string    `json:"matchedMemberId,omitempty"`
	MatchType         MatchType `json:"matchType,omitempty"`
	MatchedMemberName string    `json:"matchedMemberName,omitempty"`
}

// RowError collects the defects found in a single parsed row. RowIndex is
// the zero-based position among data rows, not the source file line.
// There is at most one RowError per row; multiple defects aggregate.
type RowError struct {
	RowIndex int      `json:"rowIndex"`
	Issues   []string `json:"issues"`
}

// ParseResult is the outcome of extracting one document: every row that
// could be produced, plus the per-row defects. Partial success is the
// normal case, not an error.
type ParseResult struct {
	Rows   []CandidateRecord `json:"rows"`
	Errors []RowError        `json:"errors"`
}

// CommitResult aggregates the outcome of applying a reviewed row set to
// the member directory.
type CommitResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
