package importer

import (
	"context"
	"fmt"
)

// Committer applies a reviewed row set to the member directory. Matches
// are re-resolved at commit time, independent of any earlier DuplicateInfo
// annotation, since the reviewer may have edited the rows.
//
// Known limitation, preserved deliberately: when an edited row matches two
// different existing members through two different fields (say the edited
// phone now matches member B while the email still matches member A), the
// first hit in priority order wins and the conflict goes undetected.
type Committer struct {
	matcher *Matcher
	members MemberDirectory
	groups  GroupDirectory
}

// NewCommitter returns a committer writing through the given directories.
func NewCommitter(members MemberDirectory, groups GroupDirectory) *Committer {
	return &Committer{
		matcher: NewMatcher(members),
		members: members,
		groups:  groups,
	}
}

// Commit processes rows in order and aggregates the outcome. One row's
// failure never aborts the remaining rows: each failure is recorded as a
// row-numbered error and counted as skipped. There is no cross-row
// transaction; partial success is the intended semantics.
func (c *Committer) Commit(ctx context.Context, rows []CandidateRecord, skipIndices map[int]bool) *CommitResult {
	result := &CommitResult{Errors: []string{}}

	for i, rec := range rows {
		if skipIndices[i] {
			result.Skipped++
			continue
		}

		rec.Duplicate = nil

		if issues := rec.Issues(); len(issues) > 0 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing required name fields", i+1))
			continue
		}

		updated, err := c.commitRow(ctx, rec)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	return result
}

// commitRow applies one record, reporting whether it updated an existing
// member (true) or created a new one (false).
func (c *Committer) commitRow(ctx context.Context, rec CandidateRecord) (bool, error) {
	existing, _, err := c.matcher.resolve(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("resolve match: %w", err)
	}

	groupID, err := c.resolveGroup(ctx, rec.CellGroupName)
	if err != nil {
		return false, fmt.Errorf("resolve group: %w", err)
	}

	if existing != nil {
		applyRecord(existing, rec, groupID)
		if err := c.members.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("update member: %w", err)
		}
		return true, nil
	}

	member := &Member{}
	applyRecord(member, rec, groupID)
	if err := c.members.Create(ctx, member); err != nil {
		return false, fmt.Errorf("create member: %w", err)
	}
	return false, nil
}

// resolveGroup maps a cell group name to an id. No match is not an
// error; the row simply gets no group assignment.
func (c *Committer) resolveGroup(ctx context.Context, name string) (string, error) {
	if name == "" || c.groups == nil {
		return "", nil
	}
	return c.groups.FindIDByName(ctx, name)
}

// applyRecord copies a candidate's fields onto a member, leaving target
// fields untouched where the candidate has no value.
func applyRecord(m *Member, rec CandidateRecord, groupID string) {
	m.FirstName = rec.FirstName
	m.LastName = rec.LastName
	if rec.Email != "" {
		m.Email = rec.Email
	}
	if rec.Phone != "" {
		m.Phone = rec.Phone
	}
	if rec.Address != "" {
		m.Address = rec.Address
	}
	if rec.Birthday != "" {
		m.Birthday = rec.Birthday
	}
	m.MaritalStatus = rec.MaritalStatus
	m.MemberStatus = rec.MemberStatus
	if groupID != "" {
		m.GroupID = groupID
	}
	if rec.BroughtBy != "" {
		m.BroughtBy = rec.BroughtBy
	}
	if rec.Notes != "" {
		m.Notes = rec.Notes
	}
}
