// Package main implements a long-running bot that re-ranks a repository's
// open issues whenever issue events arrive, and reports each run to the
// automation dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/issue-triage/pkg/config"
	"github.com/codeGROOVE-dev/issue-triage/pkg/github"
	"github.com/codeGROOVE-dev/issue-triage/pkg/notify"
	"github.com/codeGROOVE-dev/issue-triage/pkg/triage"
)

const agentName = "issue-triage"

var (
	configPath   = flag.String("config", "", "Path to configuration file")
	repo         = flag.String("repo", "", "Repository to watch, in owner/name format")
	limit        = flag.Int("limit", 10, "Maximum number of issues to rank per run (<=0 means unlimited)")
	loopDelay    = flag.Duration("loop-delay", 5*time.Minute, "Delay between periodic full re-ranks")
	dashboardURL = flag.String("dashboard-url", "http://localhost:3005", "Dashboard base URL for execution reports")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -repo owner/name [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Watches a repository for issue events and keeps a prioritized queue of\n")
		fmt.Fprintf(os.Stderr, "automation-suitable issues, reporting each run to the dashboard.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GITHUB_TOKEN - GitHub token (falls back to 'gh auth token')\n")
	}
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	owner, name, err := splitRepo(*repo)
	if err != nil {
		slog.Error("Invalid repository", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := githubToken(ctx)
	if err != nil {
		slog.Error("Failed to get GitHub token", "error", err)
		os.Exit(1)
	}

	client, err := github.New(github.Config{Token: token})
	if err != nil {
		slog.Error("Failed to create GitHub client", "error", err)
		os.Exit(1)
	}

	cfg, source := config.Load(*configPath)
	if source.IsDefault() {
		slog.Info("Using built-in default configuration", "reason", source.FallbackReason)
	}

	bot := &Bot{
		client:   client,
		engine:   triage.New(cfg),
		reporter: notify.New(*dashboardURL),
		token:    token,
		owner:    owner,
		name:     name,
		limit:    *limit,
	}

	slog.Info("Starting issue triage bot", "owner", owner, "repo", name, "loop_delay", *loopDelay)
	bot.run(ctx, *loopDelay)
}

// Bot ties the GitHub collaborator, the triage engine, and the dashboard
// reporter together for one watched repository.
type Bot struct {
	client   *github.Client
	engine   *triage.Engine
	reporter *notify.Reporter
	token    string
	owner    string
	name     string
	limit    int
}

// run processes issue events and periodic ticks until the context is
// cancelled.
func (b *Bot) run(ctx context.Context, loopDelay time.Duration) {
	monitor := newIssueMonitor(b, b.owner)
	monitor.start(ctx)
	defer monitor.stop()

	// Initial ranking before the first event or tick.
	b.process(ctx, "startup")

	ticker := time.NewTicker(loopDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return
		case <-ticker.C:
			b.process(ctx, "periodic")
		case url := <-monitor.events:
			b.process(ctx, url)
		}
	}
}

// process runs one fetch-and-rank cycle and reports it to the dashboard.
// Failures are logged and reported; they never stop the bot.
func (b *Bot) process(ctx context.Context, trigger string) {
	start := time.Now()
	task := fmt.Sprintf("Rank open issues in %s/%s (trigger: %s)", b.owner, b.name, trigger)

	issues, err := b.client.Issues(ctx, b.owner, b.name)
	if err != nil {
		slog.Error("Failed to fetch issues", "owner", b.owner, "repo", b.name, "error", err)
		b.report(ctx, task, fmt.Sprintf("Fetch failed: %v", err), notify.StatusFailed, time.Since(start))
		return
	}

	ranked := b.engine.Rank(issues, b.limit)

	for i, issue := range ranked {
		slog.Info("Ranked issue", "rank", i+1, "issue", issue.Number, "title", issue.Title,
			"score", issue.PriorityScore, "complexity", issue.Complexity, "age_days", issue.AgeDays)
	}

	result := fmt.Sprintf("Ranked %d suitable issues out of %d open.", len(ranked), len(issues))
	if len(ranked) > 0 {
		result = fmt.Sprintf("%s Top candidate: #%d %q (score %.2f).",
			result, ranked[0].Number, ranked[0].Title, ranked[0].PriorityScore)
	}

	b.report(ctx, task, result, notify.StatusCompleted, time.Since(start))
}

// report sends an execution report, logging delivery problems and moving on.
func (b *Bot) report(ctx context.Context, task, result string, status notify.Status, duration time.Duration) {
	err := b.reporter.Report(ctx, notify.Execution{
		Agent:    agentName,
		Task:     task,
		Result:   result,
		Status:   status,
		Duration: duration,
	})
	if err != nil {
		slog.Warn("Dashboard report failed (continuing)", "error", err)
	}
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
