// internal/webhook/client_test.go
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-digest-reporter/internal/model"
)

func newTestClient() *Client {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewClient(5*time.Second, logger)
}

func TestClient_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the report as JSON", func(t *testing.T) {
		var received model.Report
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		}))
		defer server.Close()

		report := model.Report{
			Repo:     "Widgets",
			Webhook:  server.URL,
			Interval: "4",
			Filters:  "bug, enhancement",
			Date:     "2024-03-10",
			PRs:      "---\n⏰ [alice] something\n",
		}

		err := newTestClient().Send(ctx, report)

		require.NoError(t, err)
		assert.Equal(t, report, received)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		err := newTestClient().Send(ctx, model.Report{Repo: "Widgets", Webhook: server.URL})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // Connection refused from here on.

		err := newTestClient().Send(ctx, model.Report{Repo: "Widgets", Webhook: server.URL})

		require.Error(t, err)
	})
}
