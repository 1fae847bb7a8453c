package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceKind is the closed set of supported document shapes, resolved once
// at upload time from the file extension.
type SourceKind string

const (
	SourceTabular SourceKind = "tabular"
	SourcePDF     SourceKind = "pdf"
	SourceImage   SourceKind = "image"
)

// Extractor turns one stored document into candidate rows plus per-row
// defects. Implementations are total over the rows they can iterate:
// malformed rows become RowErrors, not failures. A returned error means
// the document itself could not be read.
type Extractor interface {
	Extract(path string) (*ParseResult, error)
}

// extensionKinds maps supported file extensions to their source kind.
var extensionKinds = map[string]SourceKind{
	".csv":  SourceTabular,
	".tsv":  SourceTabular,
	".txt":  SourceTabular,
	".xlsx": SourceTabular,
	".pdf":  SourcePDF,
	".png":  SourceImage,
	".jpg":  SourceImage,
	".jpeg": SourceImage,
	".tiff": SourceImage,
	".bmp":  SourceImage,
}

// KindForFilename resolves a filename to its source kind. Unsupported
// extensions are rejected before any storage happens.
func KindForFilename(name string) (SourceKind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := extensionKinds[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
	return kind, nil
}

// ExtractorFor returns the extractor matching a source kind.
func (p *Pipeline) ExtractorFor(kind SourceKind) (Extractor, error) {
	switch kind {
	case SourceTabular:
		return p.Tabular, nil
	case SourcePDF, SourceImage:
		return p.Document, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// Pipeline bundles the extraction strategies behind their shared
// dependencies (column mapper, text heuristics).
type Pipeline struct {
	Tabular  *TabularExtractor
	Document *DocumentExtractor
}

// NewPipeline wires the default extraction pipeline.
func NewPipeline() *Pipeline {
	mapper := NewColumnMapper()
	heuristic := NewHeuristicExtractor(mapper)
	return &Pipeline{
		Tabular:  NewTabularExtractor(mapper),
		Document: NewDocumentExtractor(heuristic),
	}
}
