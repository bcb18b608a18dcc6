// Package config loads and validates the triage policy configuration.
//
// Resolution is layered: an explicit path, then a user-level file, then a
// file next to the executable, then built-in defaults. Loading fails soft:
// a missing or broken document degrades to the defaults with a warning, it
// never aborts a run.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name probed in the user's home
// directory (dot-prefixed) and next to the executable.
const FileName = "issue-triage.yaml"

// Read-time defaults applied to sub-keys absent from a user document.
// These are distinct from the built-in default document: a partial file
// gets the permissive complexity ceiling, not the curated one.
const (
	defaultMaxAgeDays    = 30
	defaultComplexityMin = 1
	defaultComplexityMax = 10

	defaultLabelWeight      = 0.4
	defaultAgeWeight        = 0.2
	defaultComplexityWeight = 0.2
	defaultEngagementWeight = 0.2
)

// Config is the triage policy, immutable for the duration of a batch run.
// All label names and title keywords are stored lowercased so scoring code
// can compare without normalizing.
type Config struct {
	IssueFilters   IssueFilters
	Prioritization Prioritization
}

// IssueFilters holds the suitability constraints.
type IssueFilters struct {
	IncludeLabels []string
	ExcludeLabels []string
	TitleKeywords TitleKeywords
	MaxAgeDays    int
	Complexity    Range
}

// Range is an inclusive integer range.
type Range struct {
	Min int
	Max int
}

// TitleKeywords constrains issue titles by substring containment.
type TitleKeywords struct {
	Include []string
	Exclude []string
}

// Prioritization holds the scoring weights and label priority table.
type Prioritization struct {
	LabelPriorities map[string]int
	Weights         Weights
}

// Weights are the linear coefficients of the composite priority score.
// They need not sum to 1.
type Weights struct {
	LabelPriority    float64
	AgeFactor        float64
	ComplexityFactor float64
	EngagementFactor float64
}

// Source reports how a configuration was obtained, so callers can assert
// which resolution branch was taken instead of scraping log output.
type Source struct {
	Path           string // path of the loaded document, empty when defaults were used
	FallbackReason string // non-empty when built-in defaults were used
}

// IsDefault reports whether the built-in defaults were used.
func (s Source) IsDefault() bool { return s.FallbackReason != "" }

// document is the YAML wire shape. Pointer fields distinguish "absent"
// from "zero" so partial documents resolve to documented defaults.
type document struct {
	IssueFilters *struct {
		IncludeLabels   []string `yaml:"include_labels"`
		ExcludeLabels   []string `yaml:"exclude_labels"`
		MaxAgeDays      *int     `yaml:"max_age_days"`
		ComplexityScore *struct {
			Min *int `yaml:"min"`
			Max *int `yaml:"max"`
		} `yaml:"complexity_score"`
		TitleKeywords *struct {
			Include []string `yaml:"include"`
			Exclude []string `yaml:"exclude"`
		} `yaml:"title_keywords"`
	} `yaml:"issue_filters"`
	Prioritization *struct {
		Weights *struct {
			LabelPriority    *float64 `yaml:"label_priority"`
			AgeFactor        *float64 `yaml:"age_factor"`
			ComplexityFactor *float64 `yaml:"complexity_factor"`
			EngagementFactor *float64 `yaml:"engagement_factor"`
		} `yaml:"weights"`
		LabelPriorities map[string]int `yaml:"label_priorities"`
	} `yaml:"prioritization"`
}

// Default returns the built-in configuration used when no document can be
// loaded.
func Default() *Config {
	return &Config{
		IssueFilters: IssueFilters{
			IncludeLabels: []string{"good first issue", "bug", "enhancement"},
			ExcludeLabels: []string{"wontfix", "duplicate", "blocked"},
			MaxAgeDays:    defaultMaxAgeDays,
			Complexity:    Range{Min: 1, Max: 7},
		},
		Prioritization: Prioritization{
			Weights: Weights{
				LabelPriority:    defaultLabelWeight,
				AgeFactor:        defaultAgeWeight,
				ComplexityFactor: defaultComplexityWeight,
				EngagementFactor: defaultEngagementWeight,
			},
			LabelPriorities: map[string]int{
				"good first issue": 10,
				"bug":              8,
				"typo":             9,
				"documentation":    6,
			},
		},
	}
}

// Load resolves and loads the configuration. The returned Source reports
// whether a document was loaded (and from where) or the built-in defaults
// were used (and why). An explicitly given but missing path falls back to
// defaults with a warning rather than failing the run.
func Load(explicit string) (*Config, Source) {
	path := resolvePath(explicit)

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Config file not readable, using built-in defaults", "path", path, "error", err)
		return Default(), Source{FallbackReason: fmt.Sprintf("config file not readable at %s", path)}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("Config file not parseable, using built-in defaults", "path", path, "error", err)
		return Default(), Source{FallbackReason: fmt.Sprintf("config file not parseable at %s", path)}
	}

	cfg := doc.resolve()
	if err := cfg.validate(); err != nil {
		slog.Warn("Config file invalid, using built-in defaults", "path", path, "error", err)
		return Default(), Source{FallbackReason: fmt.Sprintf("config file invalid at %s: %v", path, err)}
	}

	slog.Debug("Loaded configuration", "path", path)
	return cfg, Source{Path: path}
}

// resolvePath picks the candidate configuration path: the explicit path if
// given, otherwise the user-level file if present, otherwise a file next
// to the executable.
func resolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, "."+FileName)
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// resolve converts a decoded document into a fully-populated Config,
// applying read-time defaults for absent sub-keys and lowercasing every
// label and keyword.
func (d *document) resolve() *Config {
	cfg := &Config{
		IssueFilters: IssueFilters{
			MaxAgeDays: defaultMaxAgeDays,
			Complexity: Range{Min: defaultComplexityMin, Max: defaultComplexityMax},
		},
		Prioritization: Prioritization{
			Weights: Weights{
				LabelPriority:    defaultLabelWeight,
				AgeFactor:        defaultAgeWeight,
				ComplexityFactor: defaultComplexityWeight,
				EngagementFactor: defaultEngagementWeight,
			},
			LabelPriorities: map[string]int{},
		},
	}

	if f := d.IssueFilters; f != nil {
		cfg.IssueFilters.IncludeLabels = lowered(f.IncludeLabels)
		cfg.IssueFilters.ExcludeLabels = lowered(f.ExcludeLabels)
		if f.MaxAgeDays != nil {
			cfg.IssueFilters.MaxAgeDays = *f.MaxAgeDays
		}
		if r := f.ComplexityScore; r != nil {
			if r.Min != nil {
				cfg.IssueFilters.Complexity.Min = *r.Min
			}
			if r.Max != nil {
				cfg.IssueFilters.Complexity.Max = *r.Max
			}
		}
		if k := f.TitleKeywords; k != nil {
			cfg.IssueFilters.TitleKeywords.Include = lowered(k.Include)
			cfg.IssueFilters.TitleKeywords.Exclude = lowered(k.Exclude)
		}
	}

	if p := d.Prioritization; p != nil {
		if w := p.Weights; w != nil {
			if w.LabelPriority != nil {
				cfg.Prioritization.Weights.LabelPriority = *w.LabelPriority
			}
			if w.AgeFactor != nil {
				cfg.Prioritization.Weights.AgeFactor = *w.AgeFactor
			}
			if w.ComplexityFactor != nil {
				cfg.Prioritization.Weights.ComplexityFactor = *w.ComplexityFactor
			}
			if w.EngagementFactor != nil {
				cfg.Prioritization.Weights.EngagementFactor = *w.EngagementFactor
			}
		}
		for label, priority := range p.LabelPriorities {
			cfg.Prioritization.LabelPriorities[strings.ToLower(label)] = priority
		}
	}

	return cfg
}

// validate rejects documents that would silently misrank: negative
// weights, an inverted complexity range, or a negative age limit.
func (c *Config) validate() error {
	w := c.Prioritization.Weights
	if w.LabelPriority < 0 || w.AgeFactor < 0 || w.ComplexityFactor < 0 || w.EngagementFactor < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if c.IssueFilters.Complexity.Min > c.IssueFilters.Complexity.Max {
		return fmt.Errorf("complexity_score min %d > max %d",
			c.IssueFilters.Complexity.Min, c.IssueFilters.Complexity.Max)
	}
	if c.IssueFilters.MaxAgeDays < 0 {
		return fmt.Errorf("max_age_days must be non-negative, got %d", c.IssueFilters.MaxAgeDays)
	}
	return nil
}

// lowered returns a lowercased copy of the given strings.
func lowered(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
