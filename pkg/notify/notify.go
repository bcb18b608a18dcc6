// Package notify reports automation executions to the dashboard chat
// endpoint. Delivery is best-effort: callers log a failed report and
// continue, a delivery problem never affects the triage pipeline.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"
)

// Status describes the outcome of an automation execution.
type Status string

// Execution statuses accepted by the dashboard.
const (
	StatusCompleted Status = "completed"
	StatusRunning   Status = "running"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Fixed identity the dashboard attributes automation reports to.
const (
	automationUserID = "00000000-0000-0000-0000-000000000001"
	dashboardModel   = "gpt-4.1-nano"
	systemPrompt     = "You are an automation dashboard assistant tracking automation executions."
)

const (
	reportMaxAttempts = 3
	reportMaxDelay    = 10 * time.Second
)

// Execution is one automation run to report.
type Execution struct {
	Agent    string // actor name, e.g. "issue-triage"
	Task     string // what the run was asked to do
	Result   string // free-form result body
	Status   Status
	Duration time.Duration // optional, 0 = unknown
}

// Reporter posts execution reports to a dashboard chat endpoint.
type Reporter struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a reporter for the dashboard at baseURL (e.g.
// "http://localhost:3005").
func New(baseURL string) *Reporter {
	return &Reporter{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// chatMessage is one message in the dashboard chat payload.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatPayload is the dashboard chat API request shape.
type chatPayload struct {
	Messages        []chatMessage `json:"messages"`
	ChatID          string        `json:"chatId"`
	UserID          string        `json:"userId"`
	Model           string        `json:"model"`
	SystemPrompt    string        `json:"systemPrompt"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	EnableSearch    bool          `json:"enableSearch"`
}

// Report posts one execution to the dashboard. The returned error is
// informational; callers are expected to log it and carry on.
func (r *Reporter) Report(ctx context.Context, exec Execution) error {
	payload := chatPayload{
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf("%s: %s", exec.Agent, exec.Task)},
			{Role: "assistant", Content: formatReport(exec)},
		},
		ChatID:          uuid.NewString(),
		UserID:          automationUserID,
		Model:           dashboardModel,
		SystemPrompt:    systemPrompt,
		IsAuthenticated: false,
		EnableSearch:    false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	endpoint := r.baseURL + "/api/chat"
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := r.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					slog.Warn("Failed to close response body", "error", err)
				}
			}()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("dashboard returned status %d", resp.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(reportMaxAttempts),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxDelay(reportMaxDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to report execution to dashboard: %w", err)
	}

	slog.Info("Reported execution to dashboard", "component", "notify", "agent", exec.Agent, "status", exec.Status)
	return nil
}

// formatReport renders the assistant-side report body.
func formatReport(exec Execution) string {
	duration := ""
	if exec.Duration > 0 {
		duration = fmt.Sprintf(" (%dms)", exec.Duration.Milliseconds())
	}

	return fmt.Sprintf("**%s automation %s**%s\n\n**Task**: %s\n\n**Result**:\n%s\n\n---\n*Executed at %s UTC*",
		exec.Agent, exec.Status, duration, exec.Task, exec.Result,
		time.Now().UTC().Format("2006-01-02 15:04:05"))
}
