package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/issue-triage/pkg/config"
	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

// ReasonSuitable is the reason reported for an accepted issue.
const ReasonSuitable = "Suitable for automation"

// Classify decides whether an issue is suitable for automated processing.
//
// Checks run in a fixed order and short-circuit at the first failure, so
// exactly one reason is ever reported: an issue that is both assigned and
// a pull request is rejected for the assignment. Label comparisons are
// case-insensitive; title keyword checks are substring containment, not
// word-boundary matching, so short keywords can match inside longer words
// (preserved behavior).
func Classify(issue *types.Issue, cfg *config.Config, now time.Time) (bool, string) {
	filters := cfg.IssueFilters

	if issue.Assignee != "" {
		return false, "Issue already assigned"
	}

	if issue.PullRequest {
		return false, "Item is a pull request, not an issue"
	}

	if issue.State != "open" {
		return false, fmt.Sprintf("Issue state is %s", issue.State)
	}

	ageDays := AgeDays(issue.CreatedAt, now)
	if ageDays > filters.MaxAgeDays {
		return false, fmt.Sprintf("Issue too old (%d days > %d days)", ageDays, filters.MaxAgeDays)
	}

	labels := lowerLabels(issue.Labels)

	if len(filters.IncludeLabels) > 0 && !intersects(labels, filters.IncludeLabels) {
		return false, fmt.Sprintf("No matching include labels (has: %s)", joinOrNone(labels))
	}

	if excluded := intersection(labels, filters.ExcludeLabels); len(excluded) > 0 {
		return false, fmt.Sprintf("Has exclude labels: %s", strings.Join(excluded, ", "))
	}

	complexity := EstimateComplexity(issue)
	if complexity < filters.Complexity.Min || complexity > filters.Complexity.Max {
		return false, fmt.Sprintf("Complexity %d outside range [%d, %d]",
			complexity, filters.Complexity.Min, filters.Complexity.Max)
	}

	title := strings.ToLower(issue.Title)

	if include := filters.TitleKeywords.Include; len(include) > 0 && !containsAny(title, include) {
		return false, fmt.Sprintf("Title doesn't contain required keywords: %s", strings.Join(include, ", "))
	}

	if found := containedKeywords(title, filters.TitleKeywords.Exclude); len(found) > 0 {
		return false, fmt.Sprintf("Title contains excluded keywords: %s", strings.Join(found, ", "))
	}

	return true, ReasonSuitable
}

func lowerLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = strings.ToLower(label)
	}
	return out
}

func intersects(labels, wanted []string) bool {
	for _, label := range labels {
		for _, w := range wanted {
			if label == w {
				return true
			}
		}
	}
	return false
}

func intersection(labels, wanted []string) []string {
	var out []string
	for _, label := range labels {
		for _, w := range wanted {
			if label == w {
				out = append(out, label)
				break
			}
		}
	}
	return out
}

func containedKeywords(text string, keywords []string) []string {
	var found []string
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}

func joinOrNone(labels []string) string {
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ", ")
}
