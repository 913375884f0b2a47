// Package model defines the core entities of the lead list validation engine.
package model

import "time"

// Severity classifies how strongly a ValidationIssue counts against a lead.
// Only error-severity issues disqualify a lead from the valid count.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IssueKind identifies the category of a validation finding.
type IssueKind string

const (
	IssueMissingEmail       IssueKind = "missing_email"
	IssueInvalidEmailSyntax IssueKind = "invalid_email_syntax"
	IssueDisposableDomain   IssueKind = "disposable_domain"
	IssueRoleAccount        IssueKind = "role_account"
	IssueCompetitorDomain   IssueKind = "competitor_domain"
	IssueDuplicate          IssueKind = "duplicate"
	IssueICPMismatch        IssueKind = "icp_mismatch"
	IssueMalformedRow       IssueKind = "malformed_row"
)

// ValidationIssue is a single finding recorded against a lead.
// Issues are appended in detection order and never removed.
type ValidationIssue struct {
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// SeverityMap resolves the severity for each issue kind. Structural
// problems default to error; relevance findings stay advisory.
type SeverityMap map[IssueKind]Severity

// DefaultSeverities returns the baseline severity per issue kind.
func DefaultSeverities() SeverityMap {
	return SeverityMap{
		IssueMissingEmail:       SeverityError,
		IssueInvalidEmailSyntax: SeverityError,
		IssueDisposableDomain:   SeverityWarning,
		IssueRoleAccount:        SeverityInfo,
		IssueCompetitorDomain:   SeverityError,
		IssueDuplicate:          SeverityWarning,
		IssueICPMismatch:        SeverityWarning,
		IssueMalformedRow:       SeverityWarning,
	}
}

// For returns the configured severity for kind, falling back to error
// so that an unknown kind never silently passes.
func (m SeverityMap) For(kind IssueKind) Severity {
	if sev, ok := m[kind]; ok {
		return sev
	}
	return SeverityError
}

// Lead is the central entity: one normalized row from the source file.
// After normalization only Issues (append), ICPScore (set once), and
// IsDuplicate (set once) are written, each by exactly one pipeline stage.
type Lead struct {
	RowIndex        int               `json:"row_index"`
	Email           string            `json:"email"`
	Domain          string            `json:"domain"`
	FirstName       string            `json:"first_name,omitempty"`
	LastName        string            `json:"last_name,omitempty"`
	Company         string            `json:"company,omitempty"`
	Title           string            `json:"title,omitempty"`
	Custom          map[string]string `json:"custom,omitempty"`
	CanonicalKey    string            `json:"canonical_key"`
	Issues          []ValidationIssue `json:"issues,omitempty"`
	ICPScore        int               `json:"icp_score"`
	MatchedKeywords []string          `json:"matched_keywords,omitempty"`
	IsDuplicate     bool              `json:"is_duplicate"`
}

// AddIssue appends a finding to the lead.
func (l *Lead) AddIssue(kind IssueKind, sev Severity, msg string) {
	l.Issues = append(l.Issues, ValidationIssue{Kind: kind, Severity: sev, Message: msg})
}

// HasIssue reports whether the lead carries a finding of the given kind.
func (l *Lead) HasIssue(kind IssueKind) bool {
	for _, is := range l.Issues {
		if is.Kind == kind {
			return true
		}
	}
	return false
}

// HasError reports whether any issue carries error severity.
func (l *Lead) HasError() bool {
	for _, is := range l.Issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Valid reports whether the lead counts toward the report's valid_count:
// no error-severity issues and not a duplicate.
func (l *Lead) Valid() bool {
	return !l.IsDuplicate && !l.HasError()
}

// ValidationReport is the final, immutable output of a validation run.
// Leads are ordered by RowIndex regardless of processing order.
type ValidationReport struct {
	Total           int       `json:"total"`
	ValidCount      int       `json:"valid_count"`
	InvalidCount    int       `json:"invalid_count"`
	DuplicateCount  int       `json:"duplicate_count"`
	AverageICPScore float64   `json:"average_icp_score"`
	Leads           []Lead    `json:"leads"`
	GeneratedAt     time.Time `json:"generated_at"`
}
