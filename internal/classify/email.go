// Package classify flags leads against email hygiene and competitor rules.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/leadcheck/internal/config"
	"github.com/sells-group/leadcheck/internal/model"
)

// emailPattern validates printable-ASCII local parts and dotted domains.
// Leading/trailing dots and empty labels are rejected by the structure
// of the expression; a single @ is guaranteed by the anchored groups.
var emailPattern = regexp.MustCompile(
	`^[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*` +
		`@[a-z0-9](?:[a-z0-9-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]*[a-z0-9])?)+$`)

// EmailClassifier runs the per-lead email checks: syntax, disposable
// domain, role account. Checks are additive; a lead can carry several
// findings at once. A failed syntax check short-circuits the rest.
type EmailClassifier struct {
	disposable map[string]bool
	roles      map[string]bool
	sev        model.SeverityMap
}

// NewEmailClassifier builds a classifier from the engine rule set.
func NewEmailClassifier(cfg config.EngineConfig, sev model.SeverityMap) *EmailClassifier {
	return &EmailClassifier{
		disposable: lowerSet(cfg.DisposableDomains),
		roles:      lowerSet(cfg.RolePrefixes),
		sev:        sev,
	}
}

// Classify records email findings on the lead. Leads that never got an
// email, or were already flagged by the normalizer, are left alone.
func (c *EmailClassifier) Classify(lead *model.Lead) {
	if lead.Email == "" || lead.HasIssue(model.IssueInvalidEmailSyntax) {
		return
	}

	if !emailPattern.MatchString(lead.Email) {
		lead.AddIssue(model.IssueInvalidEmailSyntax, c.sev.For(model.IssueInvalidEmailSyntax),
			fmt.Sprintf("%q is not a valid email address", lead.Email))
		return
	}

	if c.disposable[lead.Domain] {
		lead.AddIssue(model.IssueDisposableDomain, c.sev.For(model.IssueDisposableDomain),
			fmt.Sprintf("%q is a known disposable email domain", lead.Domain))
	}

	local := lead.Email[:strings.LastIndex(lead.Email, "@")]
	if tag := strings.Index(local, "+"); tag > 0 {
		local = local[:tag] // sales+q3@x.com is still the sales mailbox
	}
	if c.roles[local] {
		lead.AddIssue(model.IssueRoleAccount, c.sev.For(model.IssueRoleAccount),
			fmt.Sprintf("%q is a role mailbox, not a person", local))
	}
}

// lowerSet builds a case-insensitive lookup set.
func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if v := strings.ToLower(strings.TrimSpace(item)); v != "" {
			set[v] = true
		}
	}
	return set
}
