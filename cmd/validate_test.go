package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcheck/internal/config"
	"github.com/sells-group/leadcheck/internal/engine"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newCmdTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(config.EngineConfig{
		Workers: 2,
		ICP: config.ICPConfig{
			TitleKeywords: map[string]int{"VP": 40},
		},
	})
	require.NoError(t, err)
	return eng
}

func TestRunFile_CSV(t *testing.T) {
	eng := newCmdTestEngine(t)
	path := writeTempCSV(t, "leads.csv", "email,title\na@acme.com,VP of Product\n")

	report, err := runFile(context.Background(), eng, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 40, report.Leads[0].ICPScore)
}

func TestRunFile_MissingFile(t *testing.T) {
	eng := newCmdTestEngine(t)

	_, err := runFile(context.Background(), eng, filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}

func TestRunBatch(t *testing.T) {
	eng := newCmdTestEngine(t)
	a := writeTempCSV(t, "a.csv", "email\na@acme.com\n")
	b := writeTempCSV(t, "b.csv", "email\nb@acme.com\nb@acme.com\n")

	validateNoStore = true
	t.Cleanup(func() { validateNoStore = false })

	reports, err := runBatch(context.Background(), eng, []string{a, b})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[a].Total)
	assert.Equal(t, 1, reports[b].DuplicateCount)
}

func TestRunBatch_FatalFileFailsInvocation(t *testing.T) {
	eng := newCmdTestEngine(t)
	good := writeTempCSV(t, "good.csv", "email\na@acme.com\n")
	bad := writeTempCSV(t, "bad.csv", "name,phone\nAlice,555\n")

	validateNoStore = true
	t.Cleanup(func() { validateNoStore = false })

	_, err := runBatch(context.Background(), eng, []string{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}
