package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcheck/internal/model"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"already canonical", "alice@acme.com", "alice@acme.com"},
		{"case folded", "Alice@Acme.COM", "alice@acme.com"},
		{"plus tag stripped", "alice+newsletter@acme.com", "alice@acme.com"},
		{"gmail dots stripped", "a.li.ce@gmail.com", "alice@gmail.com"},
		{"googlemail dots stripped", "a.lice@googlemail.com", "alice@googlemail.com"},
		{"non-gmail dots kept", "a.lice@acme.com", "a.lice@acme.com"},
		{"gmail tag and dots", "A.Lice+Spam@Gmail.Com", "alice@gmail.com"},
		{"no at sign", "not-an-email", "not-an-email"},
		{"empty", "", ""},
		{"leading plus kept", "+alice@acme.com", "+alice@acme.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalKey(tt.email))
		})
	}
}

func TestCanonicalKey_Idempotent(t *testing.T) {
	emails := []string{
		"Alice+tag@Gmail.com",
		"b.ob@googlemail.com",
		"carol@acme.com",
	}
	for _, email := range emails {
		once := CanonicalKey(email)
		assert.Equal(t, once, CanonicalKey(once), "email %q", email)
	}
}

func TestApply_MarksLaterOccurrences(t *testing.T) {
	leads := []model.Lead{
		{RowIndex: 1, Email: "x@y.com"},
		{RowIndex: 2, Email: "other@y.com"},
		{RowIndex: 3, Email: "X@Y.com"},
	}

	n := Apply(leads, model.DefaultSeverities())

	assert.Equal(t, 1, n)
	assert.False(t, leads[0].IsDuplicate)
	assert.False(t, leads[1].IsDuplicate)
	require.True(t, leads[2].IsDuplicate)
	require.True(t, leads[2].HasIssue(model.IssueDuplicate))
	assert.Contains(t, leads[2].Issues[0].Message, "duplicate of row 1")
}

func TestApply_TagAndDotVariants(t *testing.T) {
	leads := []model.Lead{
		{RowIndex: 1, Email: "alice@gmail.com"},
		{RowIndex: 2, Email: "a.lice@gmail.com"},
		{RowIndex: 3, Email: "alice+promo@gmail.com"},
		{RowIndex: 4, Email: "a.lice@acme.com"},
		{RowIndex: 5, Email: "alice@acme.com"},
	}

	n := Apply(leads, model.DefaultSeverities())

	assert.Equal(t, 2, n)
	assert.True(t, leads[1].IsDuplicate)
	assert.True(t, leads[2].IsDuplicate)
	// Dots are significant outside gmail domains.
	assert.False(t, leads[3].IsDuplicate)
	assert.False(t, leads[4].IsDuplicate)
}

func TestApply_UnusableEmailsNeverCollapse(t *testing.T) {
	missing1 := model.Lead{RowIndex: 1}
	missing2 := model.Lead{RowIndex: 2}
	invalid := model.Lead{RowIndex: 3, Email: "garbage"}
	invalid.AddIssue(model.IssueInvalidEmailSyntax, model.SeverityError, "no @")

	leads := []model.Lead{missing1, missing2, invalid}
	n := Apply(leads, model.DefaultSeverities())

	assert.Equal(t, 0, n)
	assert.Equal(t, "row:1", leads[0].CanonicalKey)
	assert.Equal(t, "row:2", leads[1].CanonicalKey)
	assert.Equal(t, "row:3", leads[2].CanonicalKey)
}

func TestApply_LeadingPlusAddressesDistinct(t *testing.T) {
	leads := []model.Lead{
		{RowIndex: 1, Email: "+a@acme.com"},
		{RowIndex: 2, Email: "+b@acme.com"},
	}

	n := Apply(leads, model.DefaultSeverities())

	assert.Equal(t, 0, n)
	assert.Equal(t, "+a@acme.com", leads[0].CanonicalKey)
	assert.Equal(t, "+b@acme.com", leads[1].CanonicalKey)
	assert.False(t, leads[1].IsDuplicate)
}

func TestApply_SetsCanonicalKeyOnAll(t *testing.T) {
	leads := []model.Lead{
		{RowIndex: 1, Email: "Alice+x@Gmail.com"},
		{RowIndex: 2, Email: "bob@acme.com"},
	}

	Apply(leads, model.DefaultSeverities())

	assert.Equal(t, "alice@gmail.com", leads[0].CanonicalKey)
	assert.Equal(t, "bob@acme.com", leads[1].CanonicalKey)
}

func TestApply_DuplicateSeverityAdvisory(t *testing.T) {
	leads := []model.Lead{
		{RowIndex: 1, Email: "x@y.com"},
		{RowIndex: 2, Email: "x@y.com"},
	}

	Apply(leads, model.DefaultSeverities())

	require.True(t, leads[1].HasIssue(model.IssueDuplicate))
	assert.False(t, leads[1].HasError(), "duplicates stay valid by default")
}
