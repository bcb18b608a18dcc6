package triage

import (
	"strings"

	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

// Complexity bounds and bump sizes. Bumps are additive and each
// application is capped at maxComplexity.
const (
	minComplexity = 1
	maxComplexity = 10

	simpleBump  = 1
	mediumBump  = 3
	complexBump = 6

	longBodyThreshold   = 1000 // characters, +2
	mediumBodyThreshold = 500  // characters, +1
	manyLabelsThreshold = 3    // more than this, +1
)

// Keyword sets matched as substrings against the lowercased concatenation
// of title, body, and label names.
var (
	simpleIndicators = []string{
		"typo", "spelling", "fix text", "update readme",
		"add comment", "remove comment", "format",
	}

	mediumIndicators = []string{
		"bug", "fix", "update", "improve", "refactor",
		"test", "validation", "error handling",
	}

	complexIndicators = []string{
		"implement", "architecture", "design", "performance",
		"security", "database", "api", "integration",
	}
)

// EstimateComplexity estimates issue complexity on a scale of 1-10.
//
// This is a deterministic text heuristic, not a model: keyword sets bump
// the score additively (an issue matching both the simple and medium sets
// gets both bumps), long bodies and label-heavy issues bump it further,
// and the result is clamped to [1,10].
func EstimateComplexity(issue *types.Issue) int {
	text := strings.ToLower(issue.Title + " " + issue.Body + " " + strings.Join(issue.Labels, " "))

	score := minComplexity

	if containsAny(text, simpleIndicators) {
		score = capComplexity(score + simpleBump)
	}
	if containsAny(text, mediumIndicators) {
		score = capComplexity(score + mediumBump)
	}
	if containsAny(text, complexIndicators) {
		score = capComplexity(score + complexBump)
	}

	// Longer descriptions tend to mean more involved issues.
	switch bodyLen := len(issue.Body); {
	case bodyLen > longBodyThreshold:
		score = capComplexity(score + 2)
	case bodyLen > mediumBodyThreshold:
		score = capComplexity(score + 1)
	}

	if len(issue.Labels) > manyLabelsThreshold {
		score = capComplexity(score + 1)
	}

	return score
}

func capComplexity(score int) int {
	if score > maxComplexity {
		return maxComplexity
	}
	return score
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
