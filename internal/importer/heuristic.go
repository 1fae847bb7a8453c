package importer

// heuristic.go parses text blobs that came out of PDFs or OCR. There is no
// reliable grammar in that text, so this extractor optimizes for recall
// over precision and leaves the human review pass as the correctness
// backstop.

import (
	"encoding/csv"
	"regexp"
	"strings"
)

// headerSearchLines is how many leading lines are scanned for a header.
var headerSearchLines = 5

// headerKeywords mark a line as header-like. Lowercase.
var headerKeywords = []string{"name", "email", "e-mail"}

// separator is one candidate column separator. Candidates are ordered
// data so the priority can be tuned without touching control flow.
type separator struct {
	name  string
	split func(line string) []string
}

var separators = []separator{
	{"tab", func(line string) []string {
		return strings.Split(line, "\t")
	}},
	{"comma", splitQuotedComma},
	{"spaces", func(line string) []string {
		return multiSpaceRe.Split(line, -1)
	}},
	{"pipe", func(line string) []string {
		return strings.Split(line, "|")
	}},
}

var (
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)

	// Fallback scraping patterns. A line yields a record only when the
	// name pattern hits.
	nameRe  = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?[0-9][0-9()\-\s.]{6,}[0-9]`)
)

// HeuristicExtractor detects table structure inside free text and falls
// back to per-line pattern scraping when none is found.
type HeuristicExtractor struct {
	mapper *ColumnMapper
}

// NewHeuristicExtractor returns a heuristic extractor using the given
// column mapper.
func NewHeuristicExtractor(mapper *ColumnMapper) *HeuristicExtractor {
	return &HeuristicExtractor{mapper: mapper}
}

// ExtractText parses one text blob into candidate records. It never
// fails: an unusable blob yields zero rows and a single RowError.
func (e *HeuristicExtractor) ExtractText(text string) *ParseResult {
	lines := nonEmptyLines(text)

	if headerIdx, sep := e.findHeader(lines); headerIdx >= 0 {
		return e.extractTable(lines, headerIdx, sep)
	}
	return e.extractFreeform(lines)
}

// findHeader scans the leading lines for one that looks like a column
// header, trying each candidate separator in priority order. Returns the
// line index and the separator that split it, or -1.
func (e *HeuristicExtractor) findHeader(lines []string) (int, *separator) {
	limit := headerSearchLines
	if len(lines) < limit {
		limit = len(lines)
	}

	for i := 0; i < limit; i++ {
		lower := strings.ToLower(lines[i])
		keyword := false
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				keyword = true
				break
			}
		}
		if !keyword {
			continue
		}

		for s := range separators {
			sep := &separators[s]
			if countNonEmpty(sep.split(lines[i])) >= 2 {
				return i, sep
			}
		}
	}
	return -1, nil
}

// extractTable parses lines below the header with the header's separator.
func (e *HeuristicExtractor) extractTable(lines []string, headerIdx int, sep *separator) *ParseResult {
	result := &ParseResult{}
	fields := e.mapper.MapHeaders(trimAll(sep.split(lines[headerIdx])))

	for _, line := range lines[headerIdx+1:] {
		parts := trimAll(sep.split(line))
		if countNonEmpty(parts) == 0 {
			continue
		}

		rec := newCandidateRecord()
		for i, raw := range parts {
			if i >= len(fields) {
				break
			}
			setField(&rec, fields[i], raw)
		}

		idx := len(result.Rows)
		result.Rows = append(result.Rows, rec)
		if issues := rec.Issues(); len(issues) > 0 {
			result.Errors = append(result.Errors, RowError{RowIndex: idx, Issues: issues})
		}
	}

	return result
}

// extractFreeform scrapes each line independently. A line without a
// capitalized first-last name pair yields no record and is dropped
// silently; emails and phone numbers ride along when present.
func (e *HeuristicExtractor) extractFreeform(lines []string) *ParseResult {
	result := &ParseResult{}

	for _, line := range lines {
		m := nameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := newCandidateRecord()
		rec.FirstName = m[1]
		rec.LastName = m[2]
		if email := emailRe.FindString(line); email != "" {
			rec.Email = email
		}
		if phone := phoneRe.FindString(line); phone != "" {
			rec.Phone = strings.TrimSpace(phone)
		}
		result.Rows = append(result.Rows, rec)
	}

	if len(result.Rows) == 0 {
		result.Errors = append(result.Errors, RowError{
			RowIndex: 0,
			Issues:   []string{"could not parse any records from the document text"},
		})
	}

	return result
}

// splitQuotedComma splits on commas while respecting quoted fields.
func splitQuotedComma(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	parts, err := r.Read()
	if err != nil {
		return strings.Split(line, ",")
	}
	return parts
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func trimAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func countNonEmpty(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
