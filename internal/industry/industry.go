// Package industry loads YAML industry configurations that shape agent
// prompts: terminology, priority keywords, skill taxonomies, and resume
// guidance for a target industry.
package industry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillCategory groups related skills with a priority level.
type SkillCategory struct {
	Name     string   `yaml:"name"`
	Priority string   `yaml:"priority"` // "high", "medium", "low"
	Skills   []string `yaml:"skills"`
}

// Config describes one industry.
type Config struct {
	Industry    string `yaml:"industry"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`

	Acronyms    map[string]string `yaml:"acronyms,omitempty"`
	CommonTerms []string          `yaml:"common_terms,omitempty"`

	SkillCategories map[string]SkillCategory `yaml:"skill_categories,omitempty"`

	PriorityKeywords []string `yaml:"priority_keywords,omitempty"`
	ActionVerbs      []string `yaml:"action_verbs,omitempty"`

	HighlyValuedCerts map[string]string `yaml:"highly_valued_certs,omitempty"`

	PrimaryRoles []string `yaml:"primary_roles,omitempty"`
	RelatedRoles []string `yaml:"related_roles,omitempty"`

	ResumeTips map[string][]string `yaml:"resume_tips,omitempty"`
}

// Load reads the configuration for an industry from
// <configDir>/<name>.yaml.
func Load(name string, configDir string) (*Config, error) {
	path := filepath.Join(configDir, name+".yaml")
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read industry config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse industry config %s: %w", path, err)
	}
	if cfg.Industry == "" {
		cfg.Industry = name
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.Industry
	}
	return &cfg, nil
}

// HighPrioritySkills returns every skill in a high-priority category,
// sorted for stable output.
func (c *Config) HighPrioritySkills() []string {
	var skills []string
	for _, cat := range c.SkillCategories {
		if cat.Priority == "high" {
			skills = append(skills, cat.Skills...)
		}
	}
	sort.Strings(skills)
	return skills
}

// SuggestKeywords returns priority keywords that appear in the job text
// but not in the resume text. A basic lexical pass; the agents layer
// smarter matching on top.
func (c *Config) SuggestKeywords(jobText, resumeText string) []string {
	jobLower := strings.ToLower(jobText)
	resumeLower := strings.ToLower(resumeText)

	var suggested []string
	for _, kw := range c.PriorityKeywords {
		lower := strings.ToLower(kw)
		if strings.Contains(jobLower, lower) && !strings.Contains(resumeLower, lower) {
			suggested = append(suggested, kw)
		}
	}
	return suggested
}

// ExpandAcronym returns the expansion for an industry acronym, if known.
func (c *Config) ExpandAcronym(acronym string) (string, bool) {
	expansion, ok := c.Acronyms[strings.ToUpper(acronym)]
	return expansion, ok
}
