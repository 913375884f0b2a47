package classify

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadcheck/internal/config"
	"github.com/sells-group/leadcheck/internal/model"
	"github.com/sells-group/leadcheck/internal/normalize"
)

// CompetitorMatcher flags leads belonging to configured competitors.
// Domain matches are exact; company-name matches are substring checks
// in both directions so "Acme" catches "Acme Inc." and vice versa.
type CompetitorMatcher struct {
	domains map[string]bool
	names   []string
	sev     model.SeverityMap
}

// NewCompetitorMatcher builds a matcher from the engine rule set.
func NewCompetitorMatcher(cfg config.EngineConfig, sev model.SeverityMap) *CompetitorMatcher {
	names := make([]string, 0, len(cfg.CompetitorNameFragments))
	for _, n := range cfg.CompetitorNameFragments {
		if folded := normalize.Fold(n); folded != "" {
			names = append(names, folded)
		}
	}
	return &CompetitorMatcher{
		domains: lowerSet(cfg.CompetitorDomains),
		names:   names,
		sev:     sev,
	}
}

// Match records a competitor_domain finding when the lead's domain or
// company matches the competitor list.
func (m *CompetitorMatcher) Match(lead *model.Lead) {
	if lead.Domain != "" && m.domains[lead.Domain] {
		lead.AddIssue(model.IssueCompetitorDomain, m.sev.For(model.IssueCompetitorDomain),
			fmt.Sprintf("domain %q is on the competitor list", lead.Domain))
		return
	}

	company := normalize.Fold(lead.Company)
	if company == "" {
		return
	}
	for _, name := range m.names {
		if strings.Contains(company, name) || strings.Contains(name, company) {
			lead.AddIssue(model.IssueCompetitorDomain, m.sev.For(model.IssueCompetitorDomain),
				fmt.Sprintf("company %q matches competitor %q", lead.Company, name))
			return
		}
	}
}
