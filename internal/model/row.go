package model

// RawRow is one data row produced by a parser, aligned to the header.
// Malformed is set when the source row's cell count did not match the
// header; the normalizer pads or truncates using the header as ground
// truth rather than dropping the row.
type RawRow struct {
	Index     int // 1-based position among data rows in the source file
	Cells     []string
	Malformed bool
}

// CanonicalField names a recognized lead attribute that a source column
// can map to. Unrecognized columns are kept under their cleaned header
// names in ColumnMapping.Custom.
type CanonicalField string

const (
	FieldEmail     CanonicalField = "email"
	FieldFirstName CanonicalField = "first_name"
	FieldLastName  CanonicalField = "last_name"
	FieldCompany   CanonicalField = "company"
	FieldTitle     CanonicalField = "title"
	FieldDomain    CanonicalField = "domain"
)

// ColumnMapping resolves canonical fields to source column indices.
// Built once per file; Email must resolve or the run is rejected.
type ColumnMapping struct {
	Columns map[CanonicalField]int `json:"columns"`
	Custom  map[string]int         `json:"custom,omitempty"`
	Width   int                    `json:"width"` // header cell count
}

// Index returns the source column for a canonical field, or -1.
func (m ColumnMapping) Index(f CanonicalField) int {
	if i, ok := m.Columns[f]; ok {
		return i
	}
	return -1
}
