package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/sprinkler/pkg/client"
)

const (
	eventChannelSize = 100             // Buffer size for the event channel
	eventDedupWindow = 5 * time.Second // Window for deduplicating events per URL
	eventMapMaxSize  = 1000            // Maximum entries in the dedup map
	reconnectBackoff = 30 * time.Second
	maxBackoff       = 5 * time.Minute
)

// issueMonitor subscribes to issue webhook events for one org over the
// sprinkler event stream and forwards deduplicated issue URLs to the bot.
type issueMonitor struct {
	mu           sync.Mutex
	bot          *Bot
	client       *client.Client
	events       chan string
	lastEventMap map[string]time.Time
	stopChan     chan struct{}
	org          string
	stopped      bool
}

// newIssueMonitor creates a monitor for the given org.
func newIssueMonitor(bot *Bot, org string) *issueMonitor {
	return &issueMonitor{
		bot:          bot,
		org:          org,
		events:       make(chan string, eventChannelSize),
		lastEventMap: make(map[string]time.Time),
		stopChan:     make(chan struct{}),
	}
}

// start begins the connection manager goroutine.
func (m *issueMonitor) start(ctx context.Context) {
	slog.Info("Starting issue event monitor", "component", "sprinkler", "org", m.org)
	go m.manageConnection(ctx)
}

// manageConnection keeps the WebSocket client running. The client has its
// own internal reconnection; this restarts it when it gives up.
func (m *issueMonitor) manageConnection(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Connection manager panic", "component", "sprinkler", "org", m.org, "panic", r)
		}
	}()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		default:
		}

		err := m.connect(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}

		attempts++
		backoff := reconnectBackoff * time.Duration(attempts)
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		if err != nil {
			slog.Warn("WebSocket client gave up, restarting after backoff",
				"component", "sprinkler", "org", m.org, "attempt", attempts, "backoff", backoff, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-time.After(backoff):
		}
	}
}

// connect runs one WebSocket client session (blocking).
func (m *issueMonitor) connect(ctx context.Context) error {
	cfg := client.Config{
		ServerURL:    "wss://" + client.DefaultServerAddress + "/ws",
		Organization: m.org,
		TokenProvider: func() (string, error) {
			return m.bot.token, nil
		},
		EventTypes:     []string{"issues"},
		UserEventsOnly: false,
		OnConnect: func() {
			slog.Info("WebSocket connected", "component", "sprinkler", "org", m.org)
		},
		OnDisconnect: func(err error) {
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("WebSocket disconnected", "component", "sprinkler", "org", m.org, "error", err)
			}
		},
		OnEvent: func(event client.Event) {
			m.handleEvent(event)
		},
	}

	wsClient, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.mu.Lock()
	m.client = wsClient
	m.mu.Unlock()

	return wsClient.Start(ctx)
}

// handleEvent forwards deduplicated issue events to the bot.
func (m *issueMonitor) handleEvent(event client.Event) {
	if event.Type != "issues" || event.URL == "" {
		return
	}

	// Only watch our repository; URL format is
	// https://github.com/org/repo/issues/123.
	parts := strings.Split(event.URL, "/")
	const minParts = 5
	if len(parts) < minParts || parts[2] != "github.com" {
		slog.Warn("Malformed event URL", "component", "sprinkler", "url", event.URL)
		return
	}
	if parts[3] != m.bot.owner || parts[4] != m.bot.name {
		slog.Debug("Ignoring event for other repository", "component", "sprinkler", "url", event.URL)
		return
	}

	m.mu.Lock()
	now := time.Now()
	if last, seen := m.lastEventMap[event.URL]; seen && now.Sub(last) < eventDedupWindow {
		m.mu.Unlock()
		return
	}
	m.lastEventMap[event.URL] = now

	// Bound the dedup map.
	if len(m.lastEventMap) > eventMapMaxSize {
		cutoff := now.Add(-time.Hour)
		for url, seen := range m.lastEventMap {
			if seen.Before(cutoff) {
				delete(m.lastEventMap, url)
			}
		}
	}
	m.mu.Unlock()

	slog.Info("Issue event received", "component", "sprinkler", "url", event.URL)

	select {
	case m.events <- event.URL:
	default:
		slog.Warn("Event channel full, dropping event", "component", "sprinkler", "url", event.URL)
	}
}

// stop shuts the monitor down.
func (m *issueMonitor) stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	wsClient := m.client
	m.mu.Unlock()

	close(m.stopChan)
	if wsClient != nil {
		wsClient.Stop()
	}
	slog.Info("Issue event monitor stopped", "component", "sprinkler", "org", m.org)
}
