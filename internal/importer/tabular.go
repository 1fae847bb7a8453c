package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// TabularExtractor reads spreadsheet and delimited-text documents. Only
// the first sheet/table is read; the first row is the header.
type TabularExtractor struct {
	mapper *ColumnMapper
}

// NewTabularExtractor returns a tabular extractor using the given mapper.
func NewTabularExtractor(mapper *ColumnMapper) *TabularExtractor {
	return &TabularExtractor{mapper: mapper}
}

// Extract reads the document at path and builds candidate records. Rows
// missing required names are still emitted, paired with a RowError, so
// the reviewer can fix them in place.
func (e *TabularExtractor) Extract(path string) (*ParseResult, error) {
	var rows [][]string
	var err error

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readWorkbook(path)
	} else {
		rows, err = readDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	return e.fromRows(rows), nil
}

// fromRows maps a raw header+data grid to candidate records.
func (e *TabularExtractor) fromRows(rows [][]string) *ParseResult {
	result := &ParseResult{}
	if len(rows) == 0 {
		return result
	}

	fields := e.mapper.MapHeaders(rows[0])

	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		rec := newCandidateRecord()
		for i, raw := range row {
			if i >= len(fields) {
				break
			}
			setField(&rec, fields[i], cleanCell(raw))
		}

		idx := len(result.Rows)
		result.Rows = append(result.Rows, rec)
		if issues := rec.Issues(); len(issues) > 0 {
			result.Errors = append(result.Errors, RowError{RowIndex: idx, Issues: issues})
		}
	}

	return result
}

// readDelimited parses a CSV/TSV file into raw rows.
func readDelimited(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return rows, nil
}

// readWorkbook reads the first sheet of an .xlsx file into raw rows.
// Raw cell values keep date serials numeric for the normalizer.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// cleanCell removes CSV artifacts: surrounding whitespace, Excel formula
// prefixes (="value"), and stray quote pairs.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune
// so encoding/csv never chokes on mojibake exports.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
