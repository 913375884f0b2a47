package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RuleFile is a standalone YAML rule set that can be versioned and
// shipped independently of the application config. Any populated
// section replaces the corresponding EngineConfig section wholesale.
type RuleFile struct {
	DisposableDomains       []string          `yaml:"disposable_domains"`
	RolePrefixes            []string          `yaml:"role_prefixes"`
	CompetitorDomains       []string          `yaml:"competitor_domains"`
	CompetitorNameFragments []string          `yaml:"competitor_name_fragments"`
	SeverityOverrides       map[string]string `yaml:"severity_overrides"`
	ICP                     *ICPConfig        `yaml:"icp"`
}

// LoadRules reads a rule file from path.
func LoadRules(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read rules %s", path)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrapf(err, "config: parse rules %s", path)
	}
	return &rf, nil
}

// Apply merges the rule file into an engine config. Sections absent
// from the file keep their existing values.
func (rf *RuleFile) Apply(cfg *EngineConfig) {
	if len(rf.DisposableDomains) > 0 {
		cfg.DisposableDomains = rf.DisposableDomains
	}
	if len(rf.RolePrefixes) > 0 {
		cfg.RolePrefixes = rf.RolePrefixes
	}
	if len(rf.CompetitorDomains) > 0 {
		cfg.CompetitorDomains = rf.CompetitorDomains
	}
	if len(rf.CompetitorNameFragments) > 0 {
		cfg.CompetitorNameFragments = rf.CompetitorNameFragments
	}
	if len(rf.SeverityOverrides) > 0 {
		cfg.SeverityOverrides = rf.SeverityOverrides
	}
	if rf.ICP != nil {
		cfg.ICP = *rf.ICP
	}
}
