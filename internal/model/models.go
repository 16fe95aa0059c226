// internal/model/models.go
package model

import "time"

// Registration is the registry entry for a single repository: who owns it,
// where its digest goes, and which authors are filtered out as team members.
type Registration struct {
	ID               string    `json:"id"`
	Repo             string    `json:"repo"`
	Team             string    `json:"team"`
	Name             string    `json:"name"`
	Webhook          string    `json:"webhook"`
	Members          []string  `json:"members,omitempty"`
	MembersUpdatedAt time.Time `json:"updated_members_at,omitzero"`
}

// RawIssue is a search result as returned by the hosting API, mapped to the
// fields the triage pipeline consumes. It lives for a single run.
type RawIssue struct {
	Repo      string // last path segment of the repository URL
	Number    int
	Title     string
	Author    string
	Assignee  string
	Assignees []string
	Labels    []string
	Comments  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Link      string
	IsPR      bool
}

// AlertFlag is a set of advisory attention signals derived for a triaged
// issue. Flags decorate the rendered digest line; they never filter records.
type AlertFlag uint8

const (
	AlertUnassigned AlertFlag = 1 << iota
	AlertLowEngagement
	AlertStale
	AlertNeedsFollowUp
)

// Has reports whether every flag in mask is set.
func (f AlertFlag) Has(mask AlertFlag) bool {
	return f&mask == mask
}

// TriagedIssue is the immutable classified view of a raw issue.
type TriagedIssue struct {
	Repo            string
	Title           string
	IsPR            bool
	Assignee        string
	Comments        int
	DaysOpen        int
	DaysSinceUpdate int
	Labels          string
	Link            string
	Alerts          AlertFlag
}

// Report is the digest payload delivered to a repository's webhook.
type Report struct {
	Repo     string `json:"repo"`
	Webhook  string `json:"webhook"`
	Interval string `json:"interval"`
	Filters  string `json:"filters"`
	Date     string `json:"date"`
	PRs      string `json:"prs"`
	Issues   string `json:"issues,omitempty"`
}
