// internal/members/refresher.go
package members

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github-digest-reporter/internal/registry"
)

// Number of team rosters to refresh in parallel
const concurrency = 5

// TeamLister fetches the member logins of a team.
type TeamLister interface {
	TeamMembers(ctx context.Context, team string) ([]string, error)
}

// Refresher keeps per-repository team rosters in the registry current.
type Refresher struct {
	gh       TeamLister
	source   registry.Source
	logger   *slog.Logger
	interval time.Duration

	now func() time.Time
}

// NewRefresher creates a new Refresher instance.
func NewRefresher(gh TeamLister, source registry.Source, logger *slog.Logger, interval time.Duration) *Refresher {
	return &Refresher{
		gh:       gh,
		source:   source,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start refreshes all rosters immediately and then on every interval tick
// until the context is canceled.
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting membership refresher", "interval", r.interval.String(), "concurrency", concurrency)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.RunOnce(ctx); err != nil {
		r.logger.Error("Membership refresh failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error("Membership refresh failed", "error", err)
			}
		case <-ctx.Done():
			r.logger.Info("Membership refresher shutting down", "reason", ctx.Err())
			return
		}
	}
}

// RunOnce refreshes the roster of every registration. A failure for one
// registration is logged and does not stop the others.
func (r *Refresher) RunOnce(ctx context.Context) error {
	regs, err := r.source.List(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, reg := range regs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			logger := r.logger.With("id", reg.ID, "team", reg.Team)
			logger.Info("Updating team members")

			logins, err := r.gh.TeamMembers(gctx, reg.Team)
			if err != nil {
				logger.Error("Failed to fetch team members, skipping", "error", err)
				return nil
			}

			if err := r.source.UpdateMembers(gctx, reg.ID, logins, r.now().UTC()); err != nil {
				logger.Error("Failed to store team members, skipping", "error", err)
				return nil
			}

			logger.Info("Updated team members", "count", len(logins))
			return nil
		})
	}

	return g.Wait()
}
