package importer

import "context"

// Matcher annotates candidate records with advisory duplicate matches
// against the member directory.
type Matcher struct {
	directory MemberDirectory
}

// NewMatcher returns a matcher over the given directory.
func NewMatcher(directory MemberDirectory) *Matcher {
	return &Matcher{directory: directory}
}

// resolve finds the existing member a record corresponds to, trying the
// match criteria in strict priority order and stopping at the first hit:
// email, then phone, then first+last name with birthday. The ordering is
// a confidence ranking and must not change; only one match type is ever
// reported even when several criteria would hit.
func (m *Matcher) resolve(ctx context.Context, rec CandidateRecord) (*Member, MatchType, error) {
	if rec.Email != "" {
		member, err := m.directory.FindByEmail(ctx, rec.Email)
		if err != nil {
			return nil, "", err
		}
		if member != nil {
			return member, MatchEmail, nil
		}
	}

	if rec.Phone != "" {
		member, err := m.directory.FindByPhone(ctx, rec.Phone)
		if err != nil {
			return nil, "", err
		}
		if member != nil {
			return member, MatchPhone, nil
		}
	}

	if rec.FirstName != "" && rec.LastName != "" && rec.Birthday != "" {
		member, err := m.directory.FindByNameAndBirthday(ctx, rec.FirstName, rec.LastName, rec.Birthday)
		if err != nil {
			return nil, "", err
		}
		if member != nil {
			return member, MatchNameBirthday, nil
		}
	}

	return nil, "", nil
}

// Annotate attaches DuplicateInfo to every record in place. A lookup
// error on one record degrades to "no match" for that record; the
// annotation is advisory and must not sink the parse.
func (m *Matcher) Annotate(ctx context.Context, rows []CandidateRecord) []CandidateRecord {
	for i := range rows {
		member, matchType, err := m.resolve(ctx, rows[i])
		if err != nil || member == nil {
			rows[i].Duplicate = &DuplicateInfo{IsMatch: false}
			continue
		}
		rows[i].Duplicate = &DuplicateInfo{
			IsMatch:           true,
			MatchedMemberID:   member.ID,
			MatchType:         matchType,
			MatchedMemberName: member.FullName(),
		}
	}
	return rows
}
