// Package main implements a CLI tool that filters and prioritizes GitHub
// issues for automated processing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/codeGROOVE-dev/issue-triage/pkg/config"
	"github.com/codeGROOVE-dev/issue-triage/pkg/github"
	"github.com/codeGROOVE-dev/issue-triage/pkg/triage"
	"github.com/codeGROOVE-dev/issue-triage/pkg/types"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	repo       = flag.String("repo", "", "Repository in owner/name format (used with -fetch)")
	inputPath  = flag.String("input", "", "JSON file with issues (default: stdin)")
	outputPath = flag.String("output", "", "JSON file for filtered issues (default: stdout)")
	limit      = flag.Int("limit", 10, "Maximum number of issues to return (<=0 means unlimited)")
	summary    = flag.Bool("summary", false, "Print a human-readable summary instead of JSON")
	fetch      = flag.Bool("fetch", false, "Fetch open issues from the GitHub API")
	verbose    = flag.Bool("v", false, "Verbose output with detailed diagnostics")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Filters and prioritizes GitHub issues for automated processing.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -input issues.json -limit 5\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -fetch -repo owner/name -summary\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  cat issues.json | %s -config triage.yaml\n", os.Args[0])
	}
	flag.Parse()

	// Structured logging goes to stderr; stdout carries the JSON output.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg, source := config.Load(*configPath)
	if source.IsDefault() {
		slog.Info("Using built-in default configuration", "reason", source.FallbackReason)
	} else {
		slog.Debug("Using configuration file", "path", source.Path)
	}

	issues, err := loadIssues(ctx)
	if err != nil {
		slog.Error("Failed to load issues", "error", err)
		os.Exit(1)
	}

	engine := triage.New(cfg)
	ranked := engine.Rank(issues, *limit)

	if *summary {
		printSummary(os.Stdout, ranked, len(issues))
		return
	}

	if err := writeJSON(ranked); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}

// loadIssues reads the input batch from the GitHub API, a file, or stdin.
func loadIssues(ctx context.Context) ([]*types.Issue, error) {
	if *fetch {
		owner, name, err := splitRepo(*repo)
		if err != nil {
			return nil, err
		}

		token, err := githubToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get GitHub token: %w", err)
		}

		client, err := github.New(github.Config{Token: token})
		if err != nil {
			return nil, err
		}
		return client.Issues(ctx, owner, name)
	}

	var data []byte
	var err error
	if *inputPath != "" {
		data, err = os.ReadFile(*inputPath)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return types.ParseIssues(data)
}

// splitRepo parses an owner/name repository identifier.
func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q (expected owner/name)", repo)
	}
	return parts[0], parts[1], nil
}

// githubToken returns the token from the environment, falling back to the
// gh CLI.
func githubToken(ctx context.Context) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("GITHUB_TOKEN not set and gh CLI unavailable: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// writeJSON writes the ranked issues as an indented JSON array to the
// output file or stdout.
func writeJSON(issues []*types.Issue) error {
	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode issues: %w", err)
	}
	data = append(data, '\n')

	if *outputPath != "" {
		return os.WriteFile(*outputPath, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// printSummary prints one human-readable block per ranked issue.
func printSummary(w io.Writer, ranked []*types.Issue, total int) {
	fmt.Fprintf(w, "Filtered %d suitable issues from %d total:\n", len(ranked), total)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	for _, issue := range ranked {
		fmt.Fprintf(w, "#%d: %s\n", issue.Number, issue.Title)
		fmt.Fprintf(w, "  Priority: %.2f | Complexity: %d | Age: %d days\n",
			issue.PriorityScore, issue.Complexity, issue.AgeDays)
		labels := "None"
		if len(issue.Labels) > 0 {
			labels = strings.Join(issue.Labels, ", ")
		}
		fmt.Fprintf(w, "  Labels: %s\n", labels)
		fmt.Fprintf(w, "  Status: %s\n\n", issue.Reason)
	}
}
