package triage

import (
	"math"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/issue-triage/pkg/config"
	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

// Sub-score bounds. Every sub-score except the label priority is clamped
// to [0,10]; the label table is taken as configured, so a misconfigured
// table can push the label sub-score past 10.
const (
	maxSubScore = 10

	ageDecayDivisor         = 3.0 // ~3.3 points lost per ten days, 0 at 30 days
	complexityInversionBase = 11  // inverts complexity: 1 -> 10, 10 -> 1
)

// Score computes the weighted composite priority score for an issue,
// rounded to two decimal places. The result is only meaningful for issues
// the classifier accepted; the engine forces 0 for rejected ones.
func Score(issue *types.Issue, cfg *config.Config, now time.Time) float64 {
	weights := cfg.Prioritization.Weights

	// Highest configured priority among the issue's labels, 0 if none.
	labelScore := 0.0
	for _, label := range issue.Labels {
		if priority, ok := cfg.Prioritization.LabelPriorities[strings.ToLower(label)]; ok {
			labelScore = math.Max(labelScore, float64(priority))
		}
	}

	// Newer issues score higher; decays linearly to 0 at 30 days.
	ageScore := math.Max(0, maxSubScore-float64(AgeDays(issue.CreatedAt, now))/ageDecayDivisor)

	// Simpler issues score higher.
	complexityScore := math.Max(0, float64(complexityInversionBase-EstimateComplexity(issue)))

	// Comment volume as an interest proxy, capped.
	engagementScore := math.Min(maxSubScore, float64(issue.Comments))

	total := weights.LabelPriority*labelScore +
		weights.AgeFactor*ageScore +
		weights.ComplexityFactor*complexityScore +
		weights.EngagementFactor*engagementScore

	return math.Round(total*100) / 100
}
