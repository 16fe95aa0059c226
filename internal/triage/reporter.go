// internal/triage/reporter.go
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github-digest-reporter/internal/model"
	"github-digest-reporter/internal/registry"
)

// The search API allows ten requests per minute; past this many
// registrations a single cycle may hit the quota.
const searchQuotaWarnCount = 10

// GitHubAPI is the slice of the hosting API the pipeline needs.
type GitHubAPI interface {
	SearchOpenIssues(ctx context.Context, cutoff time.Time, excludedLabels []string, resultCap int) ([]model.RawIssue, error)
	IsApproved(ctx context.Context, repo string, number int) (bool, error)
}

// Sender delivers one rendered report to its webhook.
type Sender interface {
	Send(ctx context.Context, report model.Report) error
}

// Options configures a Reporter.
type Options struct {
	LookbackWeeks   int
	ExcludedLabels  []string
	SearchResultCap int
	IncludeIssues   bool
	Interval        time.Duration
}

// Reporter orchestrates the digest pipeline: fetch, classify, filter,
// annotate, format, deliver.
type Reporter struct {
	gh     GitHubAPI
	source registry.Source
	sender Sender
	logger *slog.Logger
	opts   Options

	// now is the run clock; swapped out in tests.
	now func() time.Time
}

// NewReporter creates a new Reporter instance.
func NewReporter(gh GitHubAPI, source registry.Source, sender Sender, logger *slog.Logger, opts Options) *Reporter {
	return &Reporter{
		gh:     gh,
		source: source,
		sender: sender,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// Start runs a report cycle immediately and then on every interval tick until
// the context is canceled. A failed cycle aborts that cycle only.
func (r *Reporter) Start(ctx context.Context) {
	r.logger.Info("Starting reporter", "interval", r.opts.Interval.String())
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			r.runCycle(ctx)
		case <-ctx.Done():
			r.logger.Info("Reporter shutting down", "reason", ctx.Err())
			return
		}
	}
}

func (r *Reporter) runCycle(ctx context.Context) {
	r.logger.Info("Starting report cycle")
	if err := r.Run(ctx); err != nil {
		r.logger.Error("Report cycle aborted", "error", err)
		return
	}
	r.logger.Info("Report cycle finished")
}

// Run executes one full digest run against the current registry snapshot and
// reference date. A fetch failure is fatal for the run and no deliveries
// happen; a delivery failure is logged and the remaining reports are still
// attempted.
func (r *Reporter) Run(ctx context.Context) error {
	regs, err := r.source.List(ctx)
	if err != nil {
		return fmt.Errorf("listing registrations: %w", err)
	}
	if len(regs) > searchQuotaWarnCount {
		r.logger.Warn("Registration count may exceed the search rate budget", "count", len(regs))
	}

	today := r.now().UTC()
	cutoff := today.AddDate(0, 0, -7*r.opts.LookbackWeeks)

	raw, err := r.gh.SearchOpenIssues(ctx, cutoff, r.opts.ExcludedLabels, r.opts.SearchResultCap)
	if err != nil {
		return fmt.Errorf("fetching issues: %w", err)
	}
	r.logger.Debug("Fetched candidate records", "count", len(raw))

	byRepo := r.triageByRepo(ctx, regs, raw, today)

	reports := r.assembleReports(regs, byRepo, today)
	r.logger.Info("Reports ready to send", "count", len(reports))

	for _, report := range reports {
		logger := r.logger.With("repo", report.Repo)
		logger.Info("Sending webhook")
		if err := r.sender.Send(ctx, report); err != nil {
			logger.Error("Failed to post webhook, skipping", "error", err)
			continue
		}
	}

	return nil
}

// triageByRepo classifies and filters the raw records, grouping survivors by
// registered repository id. Records from unregistered repositories and
// records authored by team members are dropped.
func (r *Reporter) triageByRepo(ctx context.Context, regs []model.Registration, raw []model.RawIssue, today time.Time) map[string][]model.TriagedIssue {
	members := make(map[string][]string, len(regs))
	for _, reg := range regs {
		members[reg.Repo] = reg.Members
	}

	byRepo := make(map[string][]model.TriagedIssue)
	for _, record := range raw {
		team, registered := members[record.Repo]
		if !registered || slices.Contains(team, record.Author) {
			continue
		}

		approved := false
		if record.IsPR {
			var err error
			approved, err = r.gh.IsApproved(ctx, record.Repo, record.Number)
			if err != nil {
				// Approval unknown: keep the record rather than silently
				// dropping a pull request that may need attention.
				r.logger.Warn("Review lookup failed, treating as not approved",
					"repo", record.Repo, "number", record.Number, "error", err)
				approved = false
			}
		}

		issue, ok := classify(record, approved, today)
		if !ok {
			continue
		}
		byRepo[record.Repo] = append(byRepo[record.Repo], issue)
	}

	return byRepo
}

// assembleReports renders one report per registration with at least one
// surviving record, in registry order.
func (r *Reporter) assembleReports(regs []model.Registration, byRepo map[string][]model.TriagedIssue, today time.Time) []model.Report {
	var reports []model.Report
	for _, reg := range regs {
		issues := byRepo[reg.Repo]
		if len(issues) == 0 {
			continue
		}

		prs, issuesTxt := buildSections(issues, r.opts.IncludeIssues)
		reports = append(reports, model.Report{
			Repo:     reg.Name,
			Webhook:  reg.Webhook,
			Interval: strconv.Itoa(r.opts.LookbackWeeks),
			Filters:  strings.Join(r.opts.ExcludedLabels, ", "),
			Date:     today.Format("2006-01-02"),
			PRs:      prs,
			Issues:   issuesTxt,
		})
	}
	return reports
}
