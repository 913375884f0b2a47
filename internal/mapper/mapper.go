// Package mapper resolves messy CSV headers to canonical lead fields.
package mapper

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcheck/internal/model"
)

// ErrMissingEmailColumn is returned when no header maps to the email
// field. Email is the only mandatory column; without it the run is
// rejected before any row is processed.
var ErrMissingEmailColumn = eris.New("mapper: no email column found in header")

// synonyms lists accepted header spellings per canonical field, after
// lower-casing and punctuation stripping. Exact synonym match beats
// substring containment; the leftmost column wins among equal matches.
var synonyms = map[model.CanonicalField][]string{
	model.FieldEmail: {
		"email", "e mail", "email address", "e mail address",
		"contact email", "work email", "mail", "emailaddress",
	},
	model.FieldFirstName: {
		"first name", "firstname", "fname", "first", "given name",
	},
	model.FieldLastName: {
		"last name", "lastname", "lname", "last", "surname", "family name",
	},
	model.FieldCompany: {
		"company", "company name", "organization", "organisation", "org",
		"account", "account name", "employer",
	},
	model.FieldTitle: {
		"title", "job title", "jobtitle", "position", "role",
	},
	model.FieldDomain: {
		"domain", "website", "company domain", "web site", "url",
	},
}

// canonicalOrder fixes the resolution order so that a header matching
// two fields deterministically goes to the more specific one first.
var canonicalOrder = []model.CanonicalField{
	model.FieldEmail,
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldCompany,
	model.FieldTitle,
	model.FieldDomain,
}

// Map builds a ColumnMapping from the header row. Headers that match no
// canonical field are kept as custom columns under their cleaned name.
func Map(header []string) (model.ColumnMapping, error) {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = cleanHeader(h)
	}

	mapping := model.ColumnMapping{
		Columns: make(map[model.CanonicalField]int, len(canonicalOrder)),
		Width:   len(header),
	}
	claimed := make(map[int]bool, len(header))

	// Pass 1: exact synonym matches.
	for _, field := range canonicalOrder {
		for i, h := range cleaned {
			if claimed[i] || h == "" {
				continue
			}
			if containsExact(synonyms[field], h) {
				mapping.Columns[field] = i
				claimed[i] = true
				break
			}
		}
	}

	// Pass 2: substring containment fallback for still-unmapped fields.
	for _, field := range canonicalOrder {
		if _, ok := mapping.Columns[field]; ok {
			continue
		}
		name := strings.ReplaceAll(string(field), "_", " ")
		for i, h := range cleaned {
			if claimed[i] || h == "" {
				continue
			}
			if strings.Contains(h, name) || strings.Contains(name, h) {
				mapping.Columns[field] = i
				claimed[i] = true
				break
			}
		}
	}

	if _, ok := mapping.Columns[model.FieldEmail]; !ok {
		return model.ColumnMapping{}, ErrMissingEmailColumn
	}

	// Everything unclaimed becomes a custom column.
	for i, h := range cleaned {
		if claimed[i] || h == "" {
			continue
		}
		if mapping.Custom == nil {
			mapping.Custom = make(map[string]int)
		}
		if _, dup := mapping.Custom[h]; !dup {
			mapping.Custom[h] = i
		}
	}

	return mapping, nil
}

// cleanHeader lower-cases a header cell and strips punctuation so that
// "E-Mail_Address" and "email address" compare equal.
func cleanHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsExact(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
