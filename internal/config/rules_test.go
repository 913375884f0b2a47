package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, `
disposable_domains:
  - tempmail.org
competitor_domains:
  - rivalco.com
severity_overrides:
  disposable_domain: error
icp:
  title_keywords:
    VP: 40
    Sales: 30
  min_score: 50
`)

	rf, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"tempmail.org"}, rf.DisposableDomains)
	assert.Equal(t, []string{"rivalco.com"}, rf.CompetitorDomains)
	assert.Equal(t, "error", rf.SeverityOverrides["disposable_domain"])
	require.NotNil(t, rf.ICP)
	assert.Equal(t, 40, rf.ICP.TitleKeywords["VP"])
	assert.Equal(t, 50, rf.ICP.MinScore)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRules_BadYAML(t *testing.T) {
	path := writeRules(t, "disposable_domains: [unclosed")
	_, err := LoadRules(path)
	require.Error(t, err)
}

func TestRuleFile_Apply(t *testing.T) {
	cfg := EngineConfig{
		DisposableDomains: []string{"old.org"},
		RolePrefixes:      []string{"info"},
		ICP:               ICPConfig{MinScore: 40},
	}

	rf := RuleFile{
		DisposableDomains: []string{"new.org"},
		ICP:               &ICPConfig{MinScore: 60},
	}
	rf.Apply(&cfg)

	assert.Equal(t, []string{"new.org"}, cfg.DisposableDomains)
	// Absent sections keep their existing values.
	assert.Equal(t, []string{"info"}, cfg.RolePrefixes)
	assert.Equal(t, 60, cfg.ICP.MinScore)
}
