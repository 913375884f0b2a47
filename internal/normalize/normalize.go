// Package normalize builds typed leads from raw rows and provides the
// text canonicalization helpers shared by the matching stages.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/leadcheck/internal/model"
)

// accentFolder strips combining marks so "Müller" and "Muller" compare
// equal during competitor matching.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Record converts one raw row into a Lead using the column mapping.
// Rows narrower than the header are padded with empty cells, wider rows
// truncated; either case records a malformed_row issue. Rows with an
// empty or unparseable email are kept in the output with the relevant
// issue so the caller sees exactly which rows failed and why.
func Record(row model.RawRow, mapping model.ColumnMapping, sev model.SeverityMap) model.Lead {
	cells := align(row.Cells, mapping.Width)

	lead := model.Lead{RowIndex: row.Index}
	if row.Malformed {
		lead.AddIssue(model.IssueMalformedRow, sev.For(model.IssueMalformedRow),
			fmt.Sprintf("row has %d cells, header has %d", len(row.Cells), mapping.Width))
	}

	lead.FirstName = cell(cells, mapping, model.FieldFirstName)
	lead.LastName = cell(cells, mapping, model.FieldLastName)
	lead.Company = CollapseSpace(cell(cells, mapping, model.FieldCompany))
	lead.Title = CollapseSpace(cell(cells, mapping, model.FieldTitle))

	for name, idx := range mapping.Custom {
		if idx < len(cells) {
			if v := strings.TrimSpace(cells[idx]); v != "" {
				if lead.Custom == nil {
					lead.Custom = make(map[string]string)
				}
				lead.Custom[name] = v
			}
		}
	}

	email := strings.ToLower(strings.TrimSpace(cells[mapping.Index(model.FieldEmail)]))
	lead.Email = email

	switch {
	case email == "":
		lead.AddIssue(model.IssueMissingEmail, sev.For(model.IssueMissingEmail),
			"email cell is empty")
	case !strings.Contains(email, "@"):
		lead.AddIssue(model.IssueInvalidEmailSyntax, sev.For(model.IssueInvalidEmailSyntax),
			fmt.Sprintf("%q contains no @", email))
	default:
		lead.Domain = email[strings.LastIndex(email, "@")+1:]
	}

	// A mapped domain column fills in when the email yields none.
	if lead.Domain == "" {
		if idx := mapping.Index(model.FieldDomain); idx >= 0 {
			lead.Domain = strings.ToLower(strings.TrimSpace(cells[idx]))
		}
	}

	return lead
}

// align pads or truncates cells to the header width.
func align(cells []string, width int) []string {
	if len(cells) == width {
		return cells
	}
	out := make([]string, width)
	copy(out, cells)
	return out
}

// cell returns the trimmed value of a mapped column, or "".
func cell(cells []string, mapping model.ColumnMapping, field model.CanonicalField) string {
	idx := mapping.Index(field)
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// CollapseSpace trims a string and collapses internal whitespace runs
// to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold lower-cases a string, strips diacritics, and collapses
// whitespace. Used for fuzzy company-name comparison.
func Fold(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	return CollapseSpace(strings.ToLower(folded))
}
