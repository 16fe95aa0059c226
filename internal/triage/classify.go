// internal/triage/classify.go
package triage

import (
	"strings"
	"time"

	"github-digest-reporter/internal/model"
)

const (
	maxTitleLength = 50

	// Sentinel assignee for records nobody has picked up.
	unassigned = "unassigned"
)

// classify derives the immutable triaged view of a raw record. Approved pull
// requests carry no further signal and are dropped: ok is false and the
// returned value is the zero TriagedIssue.
func classify(raw model.RawIssue, approved bool, today time.Time) (model.TriagedIssue, bool) {
	if raw.IsPR && approved {
		return model.TriagedIssue{}, false
	}

	issue := model.TriagedIssue{
		Repo:            raw.Repo,
		Title:           truncate(raw.Title, maxTitleLength),
		IsPR:            raw.IsPR,
		Assignee:        assigneeString(raw),
		Comments:        raw.Comments,
		DaysOpen:        daysSince(raw.CreatedAt, today),
		DaysSinceUpdate: daysSince(raw.UpdatedAt, today),
		Labels:          strings.Join(raw.Labels, ", "),
		Link:            raw.Link,
	}
	issue.Alerts = alertFlags(issue)

	return issue, true
}

// truncate shortens s to max characters, the last two being an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-2]) + ".."
}

// assigneeString joins multiple assignee logins with a comma, falls back to
// the single assignee, and finally to the unassigned sentinel.
func assigneeString(raw model.RawIssue) string {
	if len(raw.Assignees) > 0 {
		return strings.Join(raw.Assignees, ",")
	}
	if raw.Assignee != "" {
		return raw.Assignee
	}
	return unassigned
}

// daysSince is the calendar-day distance between t and today, both taken as
// UTC dates with no time-of-day component.
func daysSince(t, today time.Time) int {
	y, m, d := t.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = today.UTC().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}
