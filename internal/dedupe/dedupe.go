// Package dedupe collapses leads that resolve to the same inbox.
package dedupe

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadcheck/internal/model"
)

// gmailDomains treat dots in the local part as insignificant.
var gmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// CanonicalKey normalizes an email to the identity major providers
// route it to: lower-cased, +tag subaddress removed, and dots stripped
// from Gmail-style local parts. Canonicalizing an already-canonical
// address returns it unchanged.
func CanonicalKey(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}

	local, domain := email[:at], email[at+1:]
	// tag > 0: a leading + is part of the mailbox name, not a separator.
	if tag := strings.Index(local, "+"); tag > 0 {
		local = local[:tag]
	}
	if gmailDomains[domain] {
		local = strings.ReplaceAll(local, ".", "")
	}
	return local + "@" + domain
}

// Apply runs the global dedup pass over the full lead list, which must
// be in row order and fully classified. The first occurrence of each
// canonical key stays unmarked; later ones get is_duplicate and a
// duplicate issue referencing the original row. Leads without a usable
// email each get a per-row sentinel key so blank rows never collapse
// into one duplicate group. Returns the number of duplicates marked.
func Apply(leads []model.Lead, sev model.SeverityMap) int {
	firstSeen := make(map[string]int, len(leads))
	duplicates := 0

	for i := range leads {
		lead := &leads[i]

		var key string
		if lead.Email == "" || lead.HasIssue(model.IssueInvalidEmailSyntax) {
			key = fmt.Sprintf("row:%d", lead.RowIndex)
		} else {
			key = CanonicalKey(lead.Email)
		}
		lead.CanonicalKey = key

		original, seen := firstSeen[key]
		if !seen {
			firstSeen[key] = lead.RowIndex
			continue
		}

		lead.IsDuplicate = true
		duplicates++
		lead.AddIssue(model.IssueDuplicate, sev.For(model.IssueDuplicate),
			fmt.Sprintf("duplicate of row %d", original))
	}

	return duplicates
}
