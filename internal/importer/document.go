package importer

import (
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// DocumentExtractor obtains raw text from PDFs (embedded text) and images
// (optical character recognition), then hands the blob to the heuristic
// extractor. The extraction engines themselves live in docconv; this type
// is orchestration.
type DocumentExtractor struct {
	heuristic *HeuristicExtractor

	// convert is swappable for tests; production uses docconv.
	convert func(path string) (string, error)
}

// NewDocumentExtractor returns a document extractor feeding the given
// heuristic text parser.
func NewDocumentExtractor(heuristic *HeuristicExtractor) *DocumentExtractor {
	return &DocumentExtractor{
		heuristic: heuristic,
		convert:   convertToText,
	}
}

// Extract converts the document at path to text and parses it. A
// conversion failure is a document-level error; the caller marks the
// session failed.
func (e *DocumentExtractor) Extract(path string) (*ParseResult, error) {
	text, err := e.convert(path)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	return e.heuristic.ExtractText(text), nil
}

// convertToText runs docconv over the stored file. PDF text comes from the
// embedded text layer; images go through the OCR engine.
func convertToText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Body), nil
}
