package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

const perPageLimit = 100 // GitHub API per_page limit

// Issues fetches all open issues for a repository.
//
// The issues endpoint also returns pull requests; they are decoded as-is
// and left for the suitability classifier to reject, so the decision (and
// its reason) stays in one place.
func (c *Client) Issues(ctx context.Context, owner, repo string) ([]*types.Issue, error) {
	slog.Info("Fetching open issues for repository", "component", "api", "owner", owner, "repo", repo)

	var all []*types.Issue
	page := 1

	for {
		apiURL := fmt.Sprintf("%s/repos/%s/%s/issues?state=open&per_page=%d&page=%d",
			c.apiBase, owner, repo, perPageLimit, page)

		issues, lastPage, err := c.issuesPage(ctx, apiURL)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
		}

		all = append(all, issues...)
		if lastPage {
			break
		}
		page++
	}

	slog.Info("Fetched open issues", "component", "api", "owner", owner, "repo", repo, "count", len(all))
	return all, nil
}

// issuesPage fetches and decodes one page of the issues listing. lastPage
// reports whether pagination should stop.
func (c *Client) issuesPage(ctx context.Context, apiURL string) (issues []*types.Issue, lastPage bool, err error) {
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("failed to list issues (status %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read issues response: %w", err)
	}

	issues, err = types.ParseIssues(body)
	if err != nil {
		return nil, false, err
	}

	// A short page means there is no next page.
	return issues, len(issues) < perPageLimit, nil
}
