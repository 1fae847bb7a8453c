package importer

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func newTestService(t *testing.T, dir *fakeDirectory, store *memSessionStore) *Service {
	t.Helper()
	svc, err := NewService(store, dir, &fakeGroups{}, ServiceOptions{
		UploadsDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func uploadCSV(t *testing.T, svc *Service, content string) *Session {
	t.Helper()
	session, err := svc.Upload(context.Background(), "roster.csv", strings.NewReader(content), "tester")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return session
}

func TestUploadCreatesPendingSession(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())

	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")

	if session.Status != SessionPending {
		t.Errorf("status = %q, want %q", session.Status, SessionPending)
	}
	if session.SourceKind != SourceTabular {
		t.Errorf("kind = %q, want %q", session.SourceKind, SourceTabular)
	}
	if _, err := os.Stat(session.StoredPath); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())

	_, err := svc.Upload(context.Background(), "notes.docx", strings.NewReader("x"), "tester")
	if err == nil {
		t.Fatal("expected rejection for .docx")
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := newMemSessionStore()
	svc, err := NewService(store, &fakeDirectory{}, &fakeGroups{}, ServiceOptions{
		UploadsDir:  t.TempDir(),
		MaxFileSize: 16,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Upload(context.Background(), "roster.csv", strings.NewReader(strings.Repeat("a", 64)), "tester")
	if err == nil {
		t.Fatal("expected size limit rejection")
	}
	if len(store.sessions) != 0 {
		t.Error("rejected upload left a session behind")
	}
}

func TestParseTransitionsToParsed(t *testing.T) {
	store := newMemSessionStore()
	svc := newTestService(t, &fakeDirectory{}, store)

	session := uploadCSV(t, svc, "First Name,Last Name,Email\nJohn,Doe,john@x.com\n,Roe,\n")

	parsed, err := svc.Parse(context.Background(), session.ID, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Status != SessionParsed {
		t.Fatalf("status = %q, want %q", parsed.Status, SessionParsed)
	}
	if parsed.RowCount != 2 {
		t.Errorf("row count = %d, want 2", parsed.RowCount)
	}
	if len(parsed.Errors) != 1 {
		t.Errorf("row errors = %d, want 1", len(parsed.Errors))
	}

	// The outcome is durable, not just returned.
	stored, err := store.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != SessionParsed || len(stored.Rows) != 2 {
		t.Errorf("stored session = %q with %d rows", stored.Status, len(stored.Rows))
	}
}

func TestParseAnnotatesDuplicates(t *testing.T) {
	dir := &fakeDirectory{}
	existing := dir.add(Member{FirstName: "John", LastName: "Doe", Email: "john@x.com"})

	svc := newTestService(t, dir, newMemSessionStore())
	session := uploadCSV(t, svc, "First Name,Last Name,Email\nJohn,Doe,john@x.com\n")

	parsed, err := svc.Parse(context.Background(), session.ID, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	dup := parsed.Rows[0].Duplicate
	if dup == nil || !dup.IsMatch {
		t.Fatalf("row not annotated: %+v", dup)
	}
	if dup.MatchedMemberID != existing.ID {
		t.Errorf("matched id = %q, want %q", dup.MatchedMemberID, existing.ID)
	}
	if dup.MatchType != MatchEmail {
		t.Errorf("match type = %q, want %q", dup.MatchType, MatchEmail)
	}
}

func TestParseMissingFileFails(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())
	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")

	if err := os.Remove(session.StoredPath); err != nil {
		t.Fatalf("remove stored file: %v", err)
	}

	if _, err := svc.Parse(context.Background(), session.ID, false); err == nil {
		t.Fatal("expected error for missing stored file")
	}
}

func TestParseExtractionFailureMarksSessionFailed(t *testing.T) {
	store := newMemSessionStore()
	svc := newTestService(t, &fakeDirectory{}, store)

	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")

	// Force a document-level extraction error through the pipeline.
	svc.pipeline.Document = &DocumentExtractor{
		heuristic: NewHeuristicExtractor(NewColumnMapper()),
		convert: func(path string) (string, error) {
			return "", errors.New("engine unavailable")
		},
	}
	stored, _ := store.Get(context.Background(), session.ID)
	stored.SourceKind = SourcePDF
	if err := store.Update(context.Background(), stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := svc.Parse(context.Background(), session.ID, false)
	if err != nil {
		t.Fatalf("Parse returned server error for document failure: %v", err)
	}
	if got.Status != SessionFailed {
		t.Errorf("status = %q, want %q", got.Status, SessionFailed)
	}
	if got.ParseError == "" {
		t.Error("expected parse error recorded on the session")
	}
}

func TestParseUnknownSession(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())

	_, err := svc.Parse(context.Background(), "no-such-session", false)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestCommitRequiresParsedStatus(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())
	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")

	_, err := svc.Commit(context.Background(), session.ID, nil, nil)
	if !errors.Is(err, ErrNotParsed) {
		t.Fatalf("err = %v, want ErrNotParsed", err)
	}
}

func TestCommitUsesStoredRowsWhenNoneGiven(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(t, dir, newMemSessionStore())

	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\nJane,Roe\n")
	if _, err := svc.Parse(context.Background(), session.ID, false); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	result, err := svc.Commit(context.Background(), session.ID, nil, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
}

func TestCommitWithEditedRowsAndSkips(t *testing.T) {
	dir := &fakeDirectory{}
	svc := newTestService(t, dir, newMemSessionStore())

	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")
	if _, err := svc.Parse(context.Background(), session.ID, false); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	edited := []CandidateRecord{
		{FirstName: "John", LastName: "Doe-Edited"},
		{FirstName: "Extra", LastName: "Row"},
	}
	result, err := svc.Commit(context.Background(), session.ID, edited, []int{1})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Created != 1 || result.Skipped != 1 {
		t.Fatalf("created=%d skipped=%d, want 1/1", result.Created, result.Skipped)
	}
	if dir.members[0].LastName != "Doe-Edited" {
		t.Errorf("committed row = %+v, want the edited one", dir.members[0])
	}
}

func TestCommitRefusesDoubleCommit(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())
	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")
	if _, err := svc.Parse(context.Background(), session.ID, false); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := svc.Commit(context.Background(), session.ID, nil, nil); err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	_, err := svc.Commit(context.Background(), session.ID, nil, nil)
	if !errors.Is(err, ErrNotParsed) {
		t.Fatalf("err = %v, want ErrNotParsed", err)
	}
}

func TestCommitDeletesStoredFile(t *testing.T) {
	svc := newTestService(t, &fakeDirectory{}, newMemSessionStore())
	session := uploadCSV(t, svc, "First Name,Last Name\nJohn,Doe\n")
	if _, err := svc.Parse(context.Background(), session.ID, false); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := svc.Commit(context.Background(), session.ID, nil, nil); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := os.Stat(session.StoredPath); !os.IsNotExist(err) {
		t.Errorf("stored file still present after commit (err=%v)", err)
	}
}
