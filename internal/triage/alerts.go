// internal/triage/alerts.go
package triage

import "github-digest-reporter/internal/model"

// alertFlags derives the advisory attention flags for a triaged record. Pull
// requests and issues use different engagement and staleness thresholds.
func alertFlags(issue model.TriagedIssue) model.AlertFlag {
	if issue.IsPR {
		return prAlerts(issue)
	}
	return issueAlerts(issue)
}

func prAlerts(issue model.TriagedIssue) model.AlertFlag {
	var flags model.AlertFlag
	if issue.Assignee == unassigned {
		flags |= model.AlertUnassigned
	}
	if issue.Comments < 2 {
		flags |= model.AlertLowEngagement
	}
	if issue.DaysSinceUpdate > 2 || issue.DaysOpen < 1 {
		flags |= model.AlertStale
	}
	if issue.DaysSinceUpdate < 2 && issue.DaysOpen > 7 {
		flags |= model.AlertNeedsFollowUp
	}
	return flags
}

func issueAlerts(issue model.TriagedIssue) model.AlertFlag {
	var flags model.AlertFlag
	if issue.Assignee == unassigned {
		flags |= model.AlertUnassigned
	}
	if issue.Comments == 0 {
		flags |= model.AlertLowEngagement
	}
	if issue.DaysSinceUpdate > 2 {
		flags |= model.AlertStale
	}
	if issue.DaysSinceUpdate < 2 && issue.DaysOpen > 7 {
		flags |= model.AlertNeedsFollowUp
	}
	return flags
}
