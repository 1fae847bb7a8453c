package importer

// normalize.go converts raw cell/text values into canonical field values.
//
// These functions handle the messy reality of user-provided rosters:
//   - Spreadsheet numeric date serials alongside four string date layouts
//   - Free-spelled enumerations ("Married", "IN ACTIVE")
//   - Stray whitespace everywhere
//
// All normalizers are total: unrecognized input degrades to the field's
// default (or absence), never to an error.

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateLayouts are the explicitly supported string date encodings, tried in
// order before falling back to general parsing.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"02.01.2006",
	"2.1.2006",
}

// excelEpoch is day zero of the spreadsheet date serial system. Serial 1 is
// 1899-12-31; the off-by-one from Lotus's 1900 leap-year bug is baked in.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NormalizeDate converts a raw cell value to a YYYY-MM-DD string. It
// accepts a spreadsheet numeric serial or any supported string layout,
// falling back to general date parsing. Returns "" if nothing matches.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Spreadsheet serials arrive as bare numbers. Anything with a
	// separator is a string date, so a clean float parse is unambiguous.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < 1 || serial > 200000 {
			return ""
		}
		t := excelEpoch.AddDate(0, 0, int(serial))
		return t.Format("2006-01-02")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.Format("2006-01-02")
	}

	return ""
}

// NormalizeMaritalStatus maps free-form input onto the closed marital
// status set. Anything unrecognized, including empty, is undisclosed.
func NormalizeMaritalStatus(raw string) MaritalStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "single":
		return MaritalSingle
	case "married":
		return MaritalMarried
	default:
		return MaritalUndisclosed
	}
}

// NormalizeMemberStatus maps free-form input onto the closed member status
// set. Internal whitespace collapses to underscores so "in active" and
// "in_active" read the same. Anything unrecognized is pending approval.
func NormalizeMemberStatus(raw string) MemberStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), "_")
	switch s {
	case "active":
		return StatusActive
	case "inactive", "in_active":
		return StatusInactive
	default:
		return StatusPendingApproval
	}
}

// NormalizeString trims a raw value. The empty result means "not
// provided"; absence is the only state recorded.
func NormalizeString(raw string) string {
	return strings.TrimSpace(raw)
}

// setField writes one normalized cell value into a candidate record.
func setField(rec *CandidateRecord, field Field, raw string) {
	switch field {
	case FieldFirstName:
		rec.FirstName = NormalizeString(raw)
	case FieldLastName:
		rec.LastName = NormalizeString(raw)
	case FieldEmail:
		rec.Email = NormalizeString(raw)
	case FieldPhone:
		rec.Phone = NormalizeString(raw)
	case FieldAddress:
		rec.Address = NormalizeString(raw)
	case FieldBirthday:
		rec.Birthday = NormalizeDate(raw)
	case FieldMaritalStatus:
		rec.MaritalStatus = NormalizeMaritalStatus(raw)
	case FieldMemberStatus:
		rec.MemberStatus = NormalizeMemberStatus(raw)
	case FieldCellGroup:
		rec.CellGroupName = NormalizeString(raw)
	case FieldBroughtBy:
		rec.BroughtBy = NormalizeString(raw)
	case FieldNotes:
		rec.Notes = NormalizeString(raw)
	}
}

// newCandidateRecord returns a record carrying the enumeration defaults.
func newCandidateRecord() CandidateRecord {
	return CandidateRecord{
		MaritalStatus: MaritalUndisclosed,
		MemberStatus:  StatusPendingApproval,
	}
}
