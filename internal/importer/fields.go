package importer

import "strings"

// Field is a canonical CandidateRecord attribute that column-header
// synonyms resolve to.
type Field string

const (
	FieldFirstName     Field = "first_name"
	FieldLastName      Field = "last_name"
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldAddress       Field = "address"
	FieldBirthday      Field = "birthday"
	FieldMaritalStatus Field = "marital_status"
	FieldMemberStatus  Field = "member_status"
	FieldCellGroup     Field = "cell_group"
	FieldBroughtBy     Field = "brought_by"
	FieldNotes         Field = "notes"

	// FieldUnmapped marks a header no synonym covers. Its column values
	// are dropped silently; user files routinely carry extra columns.
	FieldUnmapped Field = ""
)

// defaultSynonyms maps lowercase header spellings to canonical fields.
// When multiple raw headers mean the same thing, they all map here.
var defaultSynonyms = map[string]Field{
	"first name": FieldFirstName,
	"firstname":  FieldFirstName,
	"first_name": FieldFirstName,
	"first":      FieldFirstName,
	"fname":      FieldFirstName,
	"given name": FieldFirstName,

	"last name":  FieldLastName,
	"lastname":   FieldLastName,
	"last_name":  FieldLastName,
	"last":       FieldLastName,
	"lname":      FieldLastName,
	"surname":    FieldLastName,
	"family name": FieldLastName,

	"email":         FieldEmail,
	"e-mail":        FieldEmail,
	"email address": FieldEmail,
	"mail":          FieldEmail,

	"phone":        FieldPhone,
	"phone number": FieldPhone,
	"telephone":    FieldPhone,
	"mobile":       FieldPhone,
	"cell phone":   FieldPhone,
	"contact":      FieldPhone,

	"address":      FieldAddress,
	"home address": FieldAddress,
	"location":     FieldAddress,

	"birthday":      FieldBirthday,
	"birth date":    FieldBirthday,
	"birthdate":     FieldBirthday,
	"date of birth": FieldBirthday,
	"dob":           FieldBirthday,

	"marital status": FieldMaritalStatus,
	"marital":        FieldMaritalStatus,
	"marriage":       FieldMaritalStatus,

	"status":        FieldMemberStatus,
	"member status": FieldMemberStatus,
	"membership":    FieldMemberStatus,

	"cell group": FieldCellGroup,
	"cellgroup":  FieldCellGroup,
	"cell":       FieldCellGroup,
	"group":      FieldCellGroup,
	"group name": FieldCellGroup,
	"small group": FieldCellGroup,

	"brought by":  FieldBroughtBy,
	"broughtby":   FieldBroughtBy,
	"referred by": FieldBroughtBy,
	"invited by":  FieldBroughtBy,
	"referrer":    FieldBroughtBy,

	"notes":    FieldNotes,
	"note":     FieldNotes,
	"comment":  FieldNotes,
	"comments": FieldNotes,
	"remarks":  FieldNotes,
}

// templateHeaders lists one representative spelling per canonical field,
// in CandidateRecord order. Used for the downloadable template.
var templateHeaders = []struct {
	Header  string
	Field   Field
	Example string
}{
	{"First Name", FieldFirstName, "John"},
	{"Last Name", FieldLastName, "Doe"},
	{"Email", FieldEmail, "john.doe@example.com"},
	{"Phone", FieldPhone, "+1 555 010 2030"},
	{"Address", FieldAddress, "12 Hilltop Road"},
	{"Birthday", FieldBirthday, "1990-04-15"},
	{"Marital Status", FieldMaritalStatus, "single"},
	{"Status", FieldMemberStatus, "active"},
	{"Cell Group", FieldCellGroup, "North Side"},
	{"Brought By", FieldBroughtBy, "Jane Doe"},
	{"Notes", FieldNotes, "New to the area"},
}

// ColumnMapper resolves arbitrary header spellings to canonical fields.
// The synonym table is fixed at construction; matching is case-insensitive
// and ignores surrounding whitespace.
type ColumnMapper struct {
	synonyms map[string]Field
}

// NewColumnMapper returns a mapper using the built-in synonym table.
func NewColumnMapper() *ColumnMapper {
	return &ColumnMapper{synonyms: defaultSynonyms}
}

// NewColumnMapperWith returns a mapper over a caller-supplied synonym
// table. Keys must be lowercase. Used by tests and bespoke deployments.
func NewColumnMapperWith(synonyms map[string]Field) *ColumnMapper {
	return &ColumnMapper{synonyms: synonyms}
}

// Map returns the canonical field for a raw header, or FieldUnmapped when
// no synonym matches.
func (m *ColumnMapper) Map(header string) Field {
	key := strings.ToLower(strings.TrimSpace(header))
	if f, ok := m.synonyms[key]; ok {
		return f
	}
	return FieldUnmapped
}

// MapHeaders maps a header row to per-column canonical fields. Unmapped
// columns come back as FieldUnmapped in place, preserving positions.
func (m *ColumnMapper) MapHeaders(headers []string) []Field {
	fields := make([]Field, len(headers))
	for i, h := range headers {
		fields[i] = m.Map(h)
	}
	return fields
}
