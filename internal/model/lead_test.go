package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLead_Valid(t *testing.T) {
	lead := Lead{Email: "a@b.com"}
	assert.True(t, lead.Valid())

	lead.AddIssue(IssueICPMismatch, SeverityWarning, "below threshold")
	assert.True(t, lead.Valid(), "warnings are advisory")

	lead.AddIssue(IssueCompetitorDomain, SeverityError, "competitor")
	assert.False(t, lead.Valid())
}

func TestLead_DuplicateInvalid(t *testing.T) {
	lead := Lead{Email: "a@b.com", IsDuplicate: true}
	assert.False(t, lead.Valid())
	assert.False(t, lead.HasError())
}

func TestSeverityMap_For(t *testing.T) {
	sev := DefaultSeverities()

	assert.Equal(t, SeverityError, sev.For(IssueMissingEmail))
	assert.Equal(t, SeverityInfo, sev.For(IssueRoleAccount))
	// Unknown kinds never silently pass.
	assert.Equal(t, SeverityError, sev.For(IssueKind("mystery")))
}

func TestColumnMapping_Index(t *testing.T) {
	m := ColumnMapping{Columns: map[CanonicalField]int{FieldEmail: 2}}
	assert.Equal(t, 2, m.Index(FieldEmail))
	assert.Equal(t, -1, m.Index(FieldCompany))
}
