// Package triage implements the issue suitability and prioritization
// engine: a deterministic pipeline that classifies issues as automatable,
// estimates their complexity from unstructured text, and ranks them by a
// weighted composite priority score.
package triage

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/codeGROOVE-dev/issue-triage/pkg/config"
	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

// Engine applies the configured triage policy to batches of issues. The
// configuration is read-only for the lifetime of the engine.
type Engine struct {
	cfg *config.Config
	now func() time.Time
}

// New creates an engine for the given configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// Rank annotates every issue, collects the suitable ones, sorts them by
// priority score (highest first, ties keep input order), and truncates to
// limit. A limit of zero or less returns the full sorted set.
//
// Every issue is annotated with its complexity estimate and age even when
// rejected, so the output explains every decision.
func (e *Engine) Rank(issues []*types.Issue, limit int) []*types.Issue {
	now := e.now().UTC()

	suitable := make([]*types.Issue, 0, len(issues))
	for _, issue := range issues {
		e.annotate(issue, now)
		if issue.Suitable {
			suitable = append(suitable, issue)
		}
	}

	// Stable: equal scores keep their input order, which typically
	// reflects recency, so ranking stays deterministic under ties.
	sort.SliceStable(suitable, func(i, j int) bool {
		return suitable[i].PriorityScore > suitable[j].PriorityScore
	})

	if limit > 0 && len(suitable) > limit {
		suitable = suitable[:limit]
	}

	return suitable
}

// Annotate scores a single issue in place using the current time.
func (e *Engine) Annotate(issue *types.Issue) {
	e.annotate(issue, e.now().UTC())
}

// annotate scores one issue in place. A panic while scoring is contained
// here and turns into a rejection, so one bad record cannot fail the
// whole batch.
func (e *Engine) annotate(issue *types.Issue, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scoring panicked, rejecting issue", "issue", issue.Number, "panic", r)
			issue.Suitable = false
			issue.Reason = fmt.Sprintf("Scoring failed: %v", r)
			issue.PriorityScore = 0
		}
	}()

	issue.Complexity = EstimateComplexity(issue)
	issue.AgeDays = AgeDays(issue.CreatedAt, now)
	issue.Suitable, issue.Reason = Classify(issue, e.cfg, now)

	if issue.Suitable {
		issue.PriorityScore = Score(issue, e.cfg, now)
	} else {
		issue.PriorityScore = 0
	}
}
