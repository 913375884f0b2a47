package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadcheck/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:     "aaaaaaaa-1111-2222-3333-444444444444",
			Source: "leads.csv",
			Status: model.RunStatusComplete,
			Report: &model.ValidationReport{
				Total: 10, ValidCount: 8, DuplicateCount: 1, AverageICPScore: 62.5,
			},
			CreatedAt: now,
		},
		{
			ID:        "bbbbbbbb-1111-2222-3333-444444444444",
			Source:    "a-really-long-source-file-name-that-keeps-going.csv",
			Status:    model.RunStatusFailed,
			Error:     "no email column",
			CreatedAt: now,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "leads.csv")
	assert.Contains(t, out, "62.50")
	assert.Contains(t, out, "complete")
	// Failed run has no report; stats show placeholders.
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "that-keeps-going")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789abc"))
	assert.Equal(t, "short", truncateID("short"))
}
