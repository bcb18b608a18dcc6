package triage

import (
	"testing"
	"time"

	"github.com/codeGROOVE-dev/issue-triage/pkg/config"
	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

// rankingConfig scores purely by label priority so tests can dictate
// exact scores.
func rankingConfig() *config.Config {
	return &config.Config{
		IssueFilters: config.IssueFilters{
			MaxAgeDays: 30,
			Complexity: config.Range{Min: 1, Max: 10},
		},
		Prioritization: config.Prioritization{
			Weights:         config.Weights{LabelPriority: 1},
			LabelPriorities: map[string]int{"low": 3, "high": 5},
		},
	}
}

func testEngine(cfg *config.Config) *Engine {
	e := New(cfg)
	e.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func openLabeled(number int, label string) *types.Issue {
	return &types.Issue{
		Number:    number,
		Title:     "issue",
		State:     "open",
		Labels:    []string{label},
		CreatedAt: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	engine := testEngine(rankingConfig())

	// A and B tie at 3.00, C scores 5.00: expect [C, A, B] with the tie
	// keeping input order.
	a := openLabeled(1, "low")
	b := openLabeled(2, "low")
	c := openLabeled(3, "high")

	ranked := engine.Rank([]*types.Issue{a, b, c}, 0)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked issues, got %d", len(ranked))
	}
	if ranked[0] != c || ranked[1] != a || ranked[2] != b {
		t.Errorf("expected order [3 1 2], got [%d %d %d]",
			ranked[0].Number, ranked[1].Number, ranked[2].Number)
	}
}

func TestRank_NonPositiveLimitReturnsEverything(t *testing.T) {
	engine := testEngine(rankingConfig())

	issues := []*types.Issue{
		openLabeled(1, "low"),
		openLabeled(2, "high"),
		openLabeled(3, "low"),
	}

	for _, limit := range []int{0, -1} {
		ranked := engine.Rank(issues, limit)
		if len(ranked) != 3 {
			t.Errorf("limit %d: expected full set of 3, got %d", limit, len(ranked))
		}
	}
}

func TestRank_TruncatesToLimit(t *testing.T) {
	engine := testEngine(rankingConfig())

	issues := []*types.Issue{
		openLabeled(1, "low"),
		openLabeled(2, "high"),
		openLabeled(3, "low"),
	}

	ranked := engine.Rank(issues, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(ranked))
	}
	if ranked[0].Number != 2 {
		t.Errorf("expected top issue 2, got %d", ranked[0].Number)
	}
}

func TestRank_RejectedIssueStillAnnotated(t *testing.T) {
	engine := testEngine(rankingConfig())

	rejected := openLabeled(9, "low")
	rejected.Assignee = "alice"
	rejected.PriorityScore = 99 // stale value from a previous run

	ranked := engine.Rank([]*types.Issue{rejected}, 0)

	if len(ranked) != 0 {
		t.Fatalf("expected no suitable issues, got %d", len(ranked))
	}
	if rejected.Suitable {
		t.Error("expected Suitable=false")
	}
	if rejected.Reason != "Issue already assigned" {
		t.Errorf("unexpected reason %q", rejected.Reason)
	}
	if rejected.PriorityScore != 0 {
		t.Errorf("expected stale score reset to 0, got %v", rejected.PriorityScore)
	}
	if rejected.Complexity < 1 || rejected.Complexity > 10 {
		t.Errorf("expected complexity annotated even when rejected, got %d", rejected.Complexity)
	}
	if rejected.AgeDays != 0 {
		t.Errorf("expected age annotated, got %d", rejected.AgeDays)
	}
}

func TestRank_Idempotent(t *testing.T) {
	engine := testEngine(rankingConfig())

	issue := openLabeled(4, "high")
	engine.Rank([]*types.Issue{issue}, 0)
	firstScore := issue.PriorityScore
	firstReason := issue.Reason

	engine.Rank([]*types.Issue{issue}, 0)

	if issue.PriorityScore != firstScore || issue.Reason != firstReason {
		t.Errorf("re-annotation changed results: score %v -> %v, reason %q -> %q",
			firstScore, issue.PriorityScore, firstReason, issue.Reason)
	}
}

func TestAnnotate_PanicContained(t *testing.T) {
	// A nil config dereference inside scoring must reject the one issue
	// rather than abort the batch.
	engine := New(nil)
	engine.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	bad := openLabeled(1, "low")
	good := openLabeled(2, "high")

	ranked := engine.Rank([]*types.Issue{bad, good}, 0)

	if len(ranked) != 0 {
		t.Fatalf("expected no suitable issues with nil config, got %d", len(ranked))
	}
	for _, issue := range []*types.Issue{bad, good} {
		if issue.Suitable {
			t.Errorf("issue %d: expected rejection", issue.Number)
		}
		if issue.Reason == "" {
			t.Errorf("issue %d: expected a diagnostic reason", issue.Number)
		}
		if issue.PriorityScore != 0 {
			t.Errorf("issue %d: expected zero score, got %v", issue.Number, issue.PriorityScore)
		}
	}
}
