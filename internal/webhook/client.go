// internal/webhook/client.go
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github-digest-reporter/internal/model"
)

// Client posts rendered reports to their delivery webhooks. There are no
// retries; the caller decides whether a failed delivery is fatal.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client whose requests are bounded by timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send delivers one report as a JSON POST to its webhook. A transport error
// or non-2xx status is returned as an error.
func (c *Client) Send(ctx context.Context, report model.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report for %q: %w", report.Repo, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, report.Webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request for %q: %w", report.Repo, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook for %q: %w", report.Repo, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("posting webhook for %q: unexpected status %d", report.Repo, resp.StatusCode)
	}

	c.logger.Debug("Webhook delivered", "repo", report.Repo, "status", resp.StatusCode)
	return nil
}
