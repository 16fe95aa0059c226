// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github-digest-reporter/internal/model"
)

const (
	searchPageSize = 100

	// Bound on every outbound API call.
	requestTimeout = 30 * time.Second
)

// Client is a wrapper around the go-github client scoped to a single
// organization.
type Client struct {
	gh     *github.Client
	org    string
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token, org string, logger *slog.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = requestTimeout

	return &Client{
		gh:     github.NewClient(tc),
		org:    org,
		logger: logger,
	}
}

// SearchOpenIssues runs an org-wide search for open issues and pull requests
// created after cutoff, excluding the given labels. It follows pagination
// until min(reported total, cap) records have been accumulated or an empty
// page is returned. Any request error aborts the whole fetch.
func (c *Client) SearchOpenIssues(ctx context.Context, cutoff time.Time, excludedLabels []string, resultCap int) ([]model.RawIssue, error) {
	query := buildSearchQuery(c.org, excludedLabels, cutoff)

	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	}

	var all []model.RawIssue
	for {
		c.logger.Debug("Fetching search results page", "query", query, "page", opts.Page)

		result, resp, err := c.gh.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("searching issues (page %d): %w", opts.Page, err)
		}

		limit := min(result.GetTotal(), resultCap)
		for _, issue := range result.Issues {
			all = append(all, toInternalIssue(issue))
			if len(all) >= limit {
				return all, nil
			}
		}

		if len(result.Issues) == 0 || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// IsApproved reports whether the pull request has at least one review in the
// APPROVED state. It handles review-list pagination transparently.
func (c *Client) IsApproved(ctx context.Context, repo string, number int) (bool, error) {
	opts := &github.ListOptions{PerPage: searchPageSize}

	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, c.org, repo, number, opts)
		if err != nil {
			return false, fmt.Errorf("listing reviews for %s/%s#%d: %w", c.org, repo, number, err)
		}

		for _, review := range reviews {
			if review.GetState() == "APPROVED" {
				return true, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return false, nil
}

// TeamMembers fetches the logins of all members of a team identified by its
// slug within the client's organization.
func (c *Client) TeamMembers(ctx context.Context, team string) ([]string, error) {
	opts := &github.TeamListTeamMembersOptions{
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	}

	var logins []string
	for {
		members, resp, err := c.gh.Teams.ListTeamMembersBySlug(ctx, c.org, team, opts)
		if err != nil {
			return nil, fmt.Errorf("listing members of team %s/%s: %w", c.org, team, err)
		}

		for _, member := range members {
			logins = append(logins, member.GetLogin())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return logins, nil
}

// buildSearchQuery assembles the search expression, e.g.
// "org:acme is:open -label:bug created:>2024-01-01".
func buildSearchQuery(org string, excludedLabels []string, cutoff time.Time) string {
	parts := []string{"org:" + org, "is:open"}
	for _, label := range excludedLabels {
		parts = append(parts, "-label:"+label)
	}
	parts = append(parts, "created:>"+cutoff.UTC().Format("2006-01-02"))
	return strings.Join(parts, " ")
}

// toInternalIssue translates a github.Issue search result to our internal model.RawIssue.
func toInternalIssue(issue *github.Issue) model.RawIssue {
	raw := model.RawIssue{
		Repo:      lastPathSegment(issue.GetRepositoryURL()),
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Author:    issue.GetUser().GetLogin(),
		Assignee:  issue.GetAssignee().GetLogin(),
		Comments:  issue.GetComments(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		Link:      issue.GetHTMLURL(),
		IsPR:      issue.IsPullRequest(),
	}
	for _, assignee := range issue.Assignees {
		raw.Assignees = append(raw.Assignees, assignee.GetLogin())
	}
	for _, label := range issue.Labels {
		raw.Labels = append(raw.Labels, label.GetName())
	}
	return raw
}

func lastPathSegment(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}
