package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issue-triage.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingExplicitPathFallsBack(t *testing.T) {
	cfg, source := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	if !source.IsDefault() {
		t.Fatal("expected fallback to built-in defaults")
	}
	if source.FallbackReason == "" {
		t.Error("expected a fallback reason")
	}
	if cfg.IssueFilters.MaxAgeDays != 30 {
		t.Errorf("expected default max age 30, got %d", cfg.IssueFilters.MaxAgeDays)
	}
	if cfg.IssueFilters.Complexity.Max != 7 {
		t.Errorf("expected built-in complexity max 7, got %d", cfg.IssueFilters.Complexity.Max)
	}
}

func TestLoad_FullDocument(t *testing.T) {
	path := writeConfig(t, `
issue_filters:
  include_labels: [Feature, "Good First Issue"]
  exclude_labels: [WontFix]
  max_age_days: 60
  complexity_score: {min: 2, max: 6}
  title_keywords:
    include: [Docs]
    exclude: [WIP]
prioritization:
  weights:
    label_priority: 0.5
    age_factor: 0.3
    complexity_factor: 0.1
    engagement_factor: 0.1
  label_priorities:
    Feature: 7
`)

	cfg, source := Load(path)
	if source.IsDefault() {
		t.Fatalf("expected document load, fell back: %s", source.FallbackReason)
	}
	if source.Path != path {
		t.Errorf("expected source path %q, got %q", path, source.Path)
	}

	// Labels and keywords are lowercased at load time.
	if got := cfg.IssueFilters.IncludeLabels; len(got) != 2 || got[0] != "feature" || got[1] != "good first issue" {
		t.Errorf("unexpected include labels %v", got)
	}
	if got := cfg.IssueFilters.ExcludeLabels; len(got) != 1 || got[0] != "wontfix" {
		t.Errorf("unexpected exclude labels %v", got)
	}
	if cfg.IssueFilters.MaxAgeDays != 60 {
		t.Errorf("expected max age 60, got %d", cfg.IssueFilters.MaxAgeDays)
	}
	if cfg.IssueFilters.Complexity != (Range{Min: 2, Max: 6}) {
		t.Errorf("unexpected complexity range %+v", cfg.IssueFilters.Complexity)
	}
	if got := cfg.IssueFilters.TitleKeywords.Include; len(got) != 1 || got[0] != "docs" {
		t.Errorf("unexpected include keywords %v", got)
	}
	if got := cfg.IssueFilters.TitleKeywords.Exclude; len(got) != 1 || got[0] != "wip" {
		t.Errorf("unexpected exclude keywords %v", got)
	}
	if cfg.Prioritization.Weights.LabelPriority != 0.5 {
		t.Errorf("expected label weight 0.5, got %v", cfg.Prioritization.Weights.LabelPriority)
	}
	if cfg.Prioritization.LabelPriorities["feature"] != 7 {
		t.Errorf("expected priority 7 for 'feature', got %d", cfg.Prioritization.LabelPriorities["feature"])
	}
}

func TestLoad_PartialDocumentGetsReadTimeDefaults(t *testing.T) {
	path := writeConfig(t, `
issue_filters:
  include_labels: [bug]
`)

	cfg, source := Load(path)
	if source.IsDefault() {
		t.Fatalf("expected document load, fell back: %s", source.FallbackReason)
	}

	// Absent sub-keys get the permissive read-time defaults, not the
	// built-in default document (whose complexity max is 7).
	if cfg.IssueFilters.MaxAgeDays != 30 {
		t.Errorf("expected read-time default max age 30, got %d", cfg.IssueFilters.MaxAgeDays)
	}
	if cfg.IssueFilters.Complexity != (Range{Min: 1, Max: 10}) {
		t.Errorf("expected read-time default range [1,10], got %+v", cfg.IssueFilters.Complexity)
	}
	if w := cfg.Prioritization.Weights; w.LabelPriority != 0.4 || w.AgeFactor != 0.2 {
		t.Errorf("expected default weights, got %+v", w)
	}
	if len(cfg.IssueFilters.ExcludeLabels) != 0 {
		t.Errorf("expected no exclude labels, got %v", cfg.IssueFilters.ExcludeLabels)
	}
}

func TestLoad_PartialWeights(t *testing.T) {
	path := writeConfig(t, `
prioritization:
  weights:
    label_priority: 0.9
`)

	cfg, _ := Load(path)

	w := cfg.Prioritization.Weights
	if w.LabelPriority != 0.9 {
		t.Errorf("expected overridden label weight 0.9, got %v", w.LabelPriority)
	}
	if w.AgeFactor != 0.2 || w.ComplexityFactor != 0.2 || w.EngagementFactor != 0.2 {
		t.Errorf("expected remaining weights to default to 0.2, got %+v", w)
	}
}

func TestLoad_ExplicitZeroWeightIsKept(t *testing.T) {
	path := writeConfig(t, `
prioritization:
  weights:
    age_factor: 0
`)

	cfg, _ := Load(path)

	if cfg.Prioritization.Weights.AgeFactor != 0 {
		t.Errorf("expected explicit zero weight to survive, got %v", cfg.Prioritization.Weights.AgeFactor)
	}
}

func TestLoad_UnparseableFallsBack(t *testing.T) {
	path := writeConfig(t, "issue_filters: [not: valid: yaml\n")

	cfg, source := Load(path)
	if !source.IsDefault() {
		t.Fatal("expected fallback for unparseable document")
	}
	if cfg.IssueFilters.Complexity.Max != 7 {
		t.Errorf("expected built-in defaults, got %+v", cfg.IssueFilters.Complexity)
	}
}

func TestLoad_InvalidRangeFallsBack(t *testing.T) {
	path := writeConfig(t, `
issue_filters:
  complexity_score: {min: 8, max: 2}
`)

	_, source := Load(path)
	if !source.IsDefault() {
		t.Fatal("expected fallback for inverted complexity range")
	}
}

func TestLoad_NegativeWeightFallsBack(t *testing.T) {
	path := writeConfig(t, `
prioritization:
  weights:
    age_factor: -1
`)

	_, source := Load(path)
	if !source.IsDefault() {
		t.Fatal("expected fallback for negative weight")
	}
}

func TestDefault_MatchesDocumentedPolicy(t *testing.T) {
	cfg := Default()

	if got := cfg.IssueFilters.IncludeLabels; len(got) != 3 || got[0] != "good first issue" {
		t.Errorf("unexpected include labels %v", got)
	}
	if cfg.IssueFilters.Complexity != (Range{Min: 1, Max: 7}) {
		t.Errorf("unexpected complexity range %+v", cfg.IssueFilters.Complexity)
	}
	if cfg.Prioritization.LabelPriorities["typo"] != 9 {
		t.Errorf("expected typo priority 9, got %d", cfg.Prioritization.LabelPriorities["typo"])
	}
	w := cfg.Prioritization.Weights
	if w.LabelPriority != 0.4 || w.AgeFactor != 0.2 || w.ComplexityFactor != 0.2 || w.EngagementFactor != 0.2 {
		t.Errorf("unexpected default weights %+v", w)
	}
}
