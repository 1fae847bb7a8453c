package importer

import "context"

// Member is an existing member directory entry as seen by the importer.
// The directory itself (storage, auth, everything else it does) is an
// external collaborator; this is only the slice the import flow touches.
type Member struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Address       string
	Birthday      string // YYYY-MM-DD or empty
	MaritalStatus MaritalStatus
	MemberStatus  MemberStatus
	GroupID       string
	BroughtBy     string
	Notes         string
}

// FullName returns the member's display name for review annotations.
func (m Member) FullName() string {
	switch {
	case m.FirstName == "":
		return m.LastName
	case m.LastName == "":
		return m.FirstName
	default:
		return m.FirstName + " " + m.LastName
	}
}

// MemberDirectory is the member directory abstraction the importer
// consumes. Lookups return (nil, nil) when no member matches.
type MemberDirectory interface {
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindByPhone(ctx context.Context, phone string) (*Member, error)
	FindByNameAndBirthday(ctx context.Context, firstName, lastName, birthday string) (*Member, error)
	Create(ctx context.Context, m *Member) error
	Update(ctx context.Context, m *Member) error
}

// GroupDirectory resolves cell group names to identifiers. Lookup is
// case-insensitive; a miss returns ("", nil).
type GroupDirectory interface {
	FindIDByName(ctx context.Context, name string) (string, error)
}
