package importer

import (
	"context"
	"errors"
	"testing"
)

func TestCommitCreatesAndUpdates(t *testing.T) {
	dir := &fakeDirectory{}
	existing := dir.add(Member{FirstName: "Old", LastName: "Name", Email: "match@x.com"})

	rows := []CandidateRecord{
		{FirstName: "John", LastName: "Doe", Email: "match@x.com"},   // update
		{FirstName: "Jane", LastName: "Roe", Email: "fresh@x.com"},   // create
	}

	committer := NewCommitter(dir, &fakeGroups{})
	result := committer.Commit(context.Background(), rows, nil)

	if result.Updated != 1 || result.Created != 1 || result.Skipped != 0 {
		t.Fatalf("created=%d updated=%d skipped=%d, want 1/1/0",
			result.Created, result.Updated, result.Skipped)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	if len(dir.updated) != 1 || dir.updated[0] != existing.ID {
		t.Errorf("updated ids = %v, want [%s]", dir.updated, existing.ID)
	}

	// The updated member carries the row's fields.
	got, _ := dir.FindByEmail(context.Background(), "match@x.com")
	if got.FirstName != "John" || got.LastName != "Doe" {
		t.Errorf("update did not apply: %+v", got)
	}
}

func TestCommitNonMatchingEmailCreates(t *testing.T) {
	dir := &fakeDirectory{}
	dir.add(Member{FirstName: "Someone", LastName: "Else", Email: "other@x.com"})

	rows := []CandidateRecord{{FirstName: "John", LastName: "Doe", Email: "new@x.com"}}
	result := NewCommitter(dir, &fakeGroups{}).Commit(context.Background(), rows, nil)

	if result.Created != 1 || result.Updated != 0 {
		t.Fatalf("created=%d updated=%d, want 1/0", result.Created, result.Updated)
	}
}

func TestCommitSkipIndices(t *testing.T) {
	dir := &fakeDirectory{}
	rows := []CandidateRecord{
		{FirstName: "A", LastName: "One"},
		{FirstName: "B", LastName: "Two"},
		{FirstName: "C", LastName: "Three"},
	}

	result := NewCommitter(dir, &fakeGroups{}).Commit(context.Background(), rows, map[int]bool{1: true})

	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
	if len(dir.created) != 2 {
		t.Errorf("directory got %d creates, want 2", len(dir.created))
	}
}

// TestCommitSkipIdempotency: committing the same row set again with every
// previously processed index in the skip set touches nothing.
func TestCommitSkipIdempotency(t *testing.T) {
	dir := &fakeDirectory{}
	rows := []CandidateRecord{
		{FirstName: "A", LastName: "One", Email: "a@x.com"},
		{FirstName: "B", LastName: "Two", Email: "b@x.com"},
	}

	committer := NewCommitter(dir, &fakeGroups{})
	first := committer.Commit(context.Background(), rows, nil)
	if first.Created != 2 {
		t.Fatalf("first pass created = %d, want 2", first.Created)
	}

	second := committer.Commit(context.Background(), rows, map[int]bool{0: true, 1: true})
	if second.Skipped != len(rows) || second.Created != 0 || second.Updated != 0 {
		t.Fatalf("second pass created=%d updated=%d skipped=%d, want 0/0/%d",
			second.Created, second.Updated, second.Skipped, len(rows))
	}
}

func TestCommitMissingNamesSkippedWithError(t *testing.T) {
	dir := &fakeDirectory{}
	rows := []CandidateRecord{
		{FirstName: "", LastName: "Doe"},
		{FirstName: "Jane", LastName: "Roe"},
	}

	result := NewCommitter(dir, &fakeGroups{}).Commit(context.Background(), rows, nil)

	if result.Skipped != 1 || result.Created != 1 {
		t.Fatalf("skipped=%d created=%d, want 1/1", result.Skipped, result.Created)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one row-numbered error", result.Errors)
	}
}

func TestCommitRowFailureDoesNotAbort(t *testing.T) {
	dir := &fakeDirectory{failCreate: errors.New("unique constraint violated")}

	rows := []CandidateRecord{
		{FirstName: "A", LastName: "One"},
		{FirstName: "B", LastName: "Two"},
	}

	result := NewCommitter(dir, &fakeGroups{}).Commit(context.Background(), rows, nil)

	if result.Skipped != 2 || result.Created != 0 {
		t.Fatalf("skipped=%d created=%d, want 2/0", result.Skipped, result.Created)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %v, want 2", result.Errors)
	}
}

func TestCommitResolvesGroupName(t *testing.T) {
	dir := &fakeDirectory{}
	groups := &fakeGroups{groups: map[string]string{"north side": "group-9"}}

	rows := []CandidateRecord{
		{FirstName: "A", LastName: "One", CellGroupName: "North Side"},
		{FirstName: "B", LastName: "Two", CellGroupName: "No Such Group"},
	}

	result := NewCommitter(dir, groups).Commit(context.Background(), rows, nil)
	if result.Created != 2 {
		t.Fatalf("created = %d, want 2", result.Created)
	}

	if dir.members[0].GroupID != "group-9" {
		t.Errorf("row 0 group = %q, want group-9", dir.members[0].GroupID)
	}
	// An unknown group name is not an error; the member just gets no group.
	if dir.members[1].GroupID != "" {
		t.Errorf("row 1 group = %q, want empty", dir.members[1].GroupID)
	}
}

func TestCommitStripsDuplicateAnnotation(t *testing.T) {
	dir := &fakeDirectory{}

	rows := []CandidateRecord{{
		FirstName: "A", LastName: "One",
		Duplicate: &DuplicateInfo{IsMatch: true, MatchedMemberID: "stale"},
	}}

	// The stale annotation points at a member that no longer exists; the
	// commit must re-resolve (finding nothing) and create.
	result := NewCommitter(dir, &fakeGroups{}).Commit(context.Background(), rows, nil)
	if result.Created != 1 || result.Updated != 0 {
		t.Fatalf("created=%d updated=%d, want 1/0", result.Created, result.Updated)
	}
}
