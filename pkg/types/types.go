// Package types contains shared data structures used across the triage system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

import "time"

// Issue represents a GitHub issue with triage annotations.
//
// Raw fields are populated once, at the wire boundary (ParseIssues or the
// github package); scoring code reads them without defensive lookups.
// Missing optional fields decode to zero values: empty Body, empty
// Assignee, zero CreatedAt.
type Issue struct {
	CreatedAt time.Time
	Title     string
	Body      string
	State     string // "open", "closed", or other
	Assignee  string // login of the assigned user, empty = unassigned
	Reason    string // first disqualifying rule that matched, or the success message
	Labels    []string
	Number    int
	Comments  int

	// Annotations set by the triage engine.
	PriorityScore float64 // composite score, 0 for any issue not suitable
	Complexity    int     // heuristic estimate, always in [1,10]
	AgeDays       int     // whole days since creation, 0 when CreatedAt is unknown
	PullRequest   bool
	Suitable      bool
}
