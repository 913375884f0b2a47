// Package scorer computes ideal-customer-profile match scores for leads.
package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcheck/internal/config"
	"github.com/sells-group/leadcheck/internal/model"
)

// ICPScorer scores leads against a weighted keyword profile. Scoring is
// purely additive: a lead with no title or company data scores 0, never
// negative, and the total is clamped to [0, 100].
type ICPScorer struct {
	profile config.ICPConfig
	sev     model.SeverityMap
}

// New creates an ICPScorer after validating the profile.
func New(profile config.ICPConfig, sev model.SeverityMap) (*ICPScorer, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	return &ICPScorer{profile: profile, sev: sev}, nil
}

// Score sets the lead's ICP score and records an icp_mismatch finding
// when it falls below the profile threshold. Each keyword counts once
// no matter how often it occurs in the text.
func (s *ICPScorer) Score(lead *model.Lead) {
	total := 0
	var matched []string

	total += matchWeighted(lead.Title, s.profile.TitleKeywords, &matched)
	total += matchWeighted(lead.Company, s.profile.IndustryKeywords, &matched)

	if total > 100 {
		total = 100
	}
	lead.ICPScore = total

	if len(matched) > 0 {
		sort.Strings(matched)
		lead.MatchedKeywords = matched
	}

	if total < s.profile.MinScore {
		lead.AddIssue(model.IssueICPMismatch, s.sev.For(model.IssueICPMismatch),
			fmt.Sprintf("icp score %d below threshold %d", total, s.profile.MinScore))
	}
}

// matchWeighted sums the weights of keywords found as case-insensitive
// substrings of text, appending hits to matched.
func matchWeighted(text string, keywords map[string]int, matched *[]string) int {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	total := 0
	for kw, weight := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			total += weight
			*matched = append(*matched, kw)
		}
	}
	return total
}

// ValidateProfile checks that an ICP profile is internally consistent.
func ValidateProfile(p config.ICPConfig) error {
	var errs []string

	for kw, w := range p.TitleKeywords {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("title keyword %q weight must be >= 0", kw))
		}
	}
	for kw, w := range p.IndustryKeywords {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("industry keyword %q weight must be >= 0", kw))
		}
	}
	if p.MinScore < 0 || p.MinScore > 100 {
		errs = append(errs, "min_score must be between 0 and 100")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return eris.Errorf("scorer: profile validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
