package types

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// wireIssue is the GitHub REST shape of an issue, shared by file/stdin
// input, API fetch, and annotated output. Unknown fields are ignored.
type wireIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Labels  []struct {
		Name string `json:"name"`
	} `json:"labels,omitempty"`
	State    string `json:"state,omitempty"`
	Assignee *struct {
		Login string `json:"login"`
	} `json:"assignee,omitempty"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	Comments    int             `json:"comments,omitempty"`

	// Annotations, present on output only.
	AutomationSuitable *bool    `json:"automation_suitable,omitempty"`
	AutomationReason   string   `json:"automation_reason,omitempty"`
	PriorityScore      *float64 `json:"priority_score,omitempty"`
	ComplexityEstimate int      `json:"complexity_estimate,omitempty"`
	AgeDays            *int     `json:"age_days,omitempty"`
}

// ParseIssues decodes a JSON array of issues in the GitHub REST shape.
// The top level must be an array; anything else is an error. Within one
// issue, missing optional fields degrade to zero values and a malformed
// created_at degrades to an unknown creation time with a warning, so one
// bad record never aborts the batch.
func ParseIssues(data []byte) ([]*Issue, error) {
	var raw []wireIssue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of issues: %w", err)
	}

	issues := make([]*Issue, 0, len(raw))
	for i := range raw {
		issues = append(issues, raw[i].toIssue())
	}
	return issues, nil
}

// toIssue converts a decoded wire record into a typed Issue.
func (w *wireIssue) toIssue() *Issue {
	issue := &Issue{
		Number:      w.Number,
		Title:       w.Title,
		Body:        w.Body,
		State:       w.State,
		PullRequest: len(w.PullRequest) > 0 && string(w.PullRequest) != "null",
		Comments:    w.Comments,
	}

	if w.Assignee != nil {
		issue.Assignee = w.Assignee.Login
	}

	if len(w.Labels) > 0 {
		issue.Labels = make([]string, 0, len(w.Labels))
		for _, label := range w.Labels {
			issue.Labels = append(issue.Labels, label.Name)
		}
	}

	if w.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, w.CreatedAt)
		if err != nil {
			slog.Warn("Failed to parse created_at, treating creation time as unknown",
				"issue", w.Number, "created_at", w.CreatedAt, "error", err)
		} else {
			issue.CreatedAt = created
		}
	}

	return issue
}

// MarshalJSON renders the issue in the wire shape, including annotations.
func (i *Issue) MarshalJSON() ([]byte, error) {
	w := wireIssue{
		Number:   i.Number,
		Title:    i.Title,
		Body:     i.Body,
		State:    i.State,
		Comments: i.Comments,

		AutomationSuitable: &i.Suitable,
		AutomationReason:   i.Reason,
		PriorityScore:      &i.PriorityScore,
		ComplexityEstimate: i.Complexity,
		AgeDays:            &i.AgeDays,
	}

	if len(i.Labels) > 0 {
		w.Labels = make([]struct {
			Name string `json:"name"`
		}, len(i.Labels))
		for idx, name := range i.Labels {
			w.Labels[idx].Name = name
		}
	}

	if i.Assignee != "" {
		w.Assignee = &struct {
			Login string `json:"login"`
		}{Login: i.Assignee}
	}

	if i.PullRequest {
		w.PullRequest = json.RawMessage(`{}`)
	}

	if !i.CreatedAt.IsZero() {
		w.CreatedAt = i.CreatedAt.UTC().Format(time.RFC3339)
	}

	return json.Marshal(w)
}
