package importer

import (
	"errors"
	"testing"
)

func TestDocumentExtractorParsesConvertedText(t *testing.T) {
	ext := NewDocumentExtractor(NewHeuristicExtractor(NewColumnMapper()))
	ext.convert = func(path string) (string, error) {
		return "First Name\tLast Name\tEmail\nJohn\tDoe\tjohn@x.com", nil
	}

	result, err := ext.Extract("whatever.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(result.Rows))
	}
	if result.Rows[0].Email != "john@x.com" {
		t.Errorf("email = %q", result.Rows[0].Email)
	}
}

func TestDocumentExtractorConversionFailure(t *testing.T) {
	ext := NewDocumentExtractor(NewHeuristicExtractor(NewColumnMapper()))
	ext.convert = func(path string) (string, error) {
		return "", errors.New("no text layer")
	}

	if _, err := ext.Extract("scan.pdf"); err == nil {
		t.Fatal("expected conversion error")
	}
}
