// Package classify implements the deterministic multi-signal classification
// engine: radar-category scoring, faction tagging, five-axis scores, and
// confidence diagnostics. No external calls, no randomness.
package classify

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Signal is one weighted regex rule of a radar category.
type Signal struct {
	Pattern string  `yaml:"pattern"`
	Weight  float64 `yaml:"weight"`

	re *regexp.Regexp
}

// Matches tests the signal against title+summary text or the item URL.
func (s *Signal) Matches(text, url string) bool {
	if s.re == nil {
		return false
	}
	return s.re.MatchString(text) || s.re.MatchString(url)
}

// RadarCategoryDef is the rule set for one radar category.
type RadarCategoryDef struct {
	ID             string             `yaml:"id"`
	LabelEN        string             `yaml:"label_en"`
	LabelZH        string             `yaml:"label_zh"`
	SeedKeywordsEN []string           `yaml:"seed_keywords_en"`
	SeedKeywordsZH []string           `yaml:"seed_keywords_zh"`
	Signals        []Signal           `yaml:"signals"`
	SourcePrior    map[string]float64 `yaml:"source_prior"`
}

// AxisRule is one regex rule of a semantic axis, matched over lowercased text.
type AxisRule struct {
	Pattern string `yaml:"pattern"`
	Weight  int    `yaml:"weight"`

	re *regexp.Regexp
}

// Taxonomy is the full classification rule table: six radar categories,
// eight factions, five axes. Built once per run and passed to the
// Classifier; loadable from a versioned YAML file.
type Taxonomy struct {
	RadarOrder      []string                    `yaml:"radar_order"`
	Radar           map[string]RadarCategoryDef `yaml:"radar"`
	Factions        []string                    `yaml:"factions"`
	FactionKeywords map[string][]string         `yaml:"faction_keywords"`
	FactionLabelZH  map[string]string           `yaml:"faction_label_zh"`
	AxisOrder       []string                    `yaml:"axis_order"`
	AxisRules       map[string][]AxisRule       `yaml:"axis_rules"`
	DefaultFaction  string                      `yaml:"default_faction"`
}

// defaultSourcePrior applies to sources without an explicit prior; only
// priors strictly above it contribute to scoring.
const defaultSourcePrior = 0.3

// SourcePrior returns the reputation prior of sourceName for the category.
func (t *Taxonomy) SourcePrior(categoryID, sourceName string) float64 {
	def, ok := t.Radar[categoryID]
	if !ok {
		return defaultSourcePrior
	}
	if prior, ok := def.SourcePrior[sourceName]; ok {
		return prior
	}
	return defaultSourcePrior
}

// FactionLabel resolves the localized faction label, falling back to the tag.
func (t *Taxonomy) FactionLabel(tag string) string {
	if label, ok := t.FactionLabelZH[tag]; ok {
		return label
	}
	return tag
}

// compile builds every regex in the taxonomy.
func (t *Taxonomy) compile() error {
	for id, def := range t.Radar {
		for i := range def.Signals {
			re, err := regexp.Compile(def.Signals[i].Pattern)
			if err != nil {
				return fmt.Errorf("category %s signal %q: %w", id, def.Signals[i].Pattern, err)
			}
			def.Signals[i].re = re
		}
		t.Radar[id] = def
	}
	for axis, rules := range t.AxisRules {
		for i := range rules {
			re, err := regexp.Compile(rules[i].Pattern)
			if err != nil {
				return fmt.Errorf("axis %s rule %q: %w", axis, rules[i].Pattern, err)
			}
			rules[i].re = re
		}
		t.AxisRules[axis] = rules
	}
	return nil
}

// LoadTaxonomy reads a taxonomy override from a YAML file.
func LoadTaxonomy(path string) (Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	var tax Taxonomy
	if err := yaml.Unmarshal(raw, &tax); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	if err := tax.compile(); err != nil {
		return Taxonomy{}, err
	}
	return tax, nil
}
