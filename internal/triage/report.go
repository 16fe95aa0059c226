// internal/triage/report.go
package triage

import (
	"fmt"
	"sort"
	"strings"

	"github-digest-reporter/internal/model"
)

// maxBodyLength caps the rendered size of each digest section set. Records
// that would push past it are dropped whole; a block is never cut mid-way.
const maxBodyLength = 40000

// Display glyphs for alert flags, emitted in this fixed order.
var alertGlyphs = []struct {
	flag  model.AlertFlag
	glyph string
}{
	{model.AlertStale, "⏰"},
	{model.AlertUnassigned, "👤"},
	{model.AlertLowEngagement, "🔴"},
	{model.AlertNeedsFollowUp, "🤔"},
}

func renderAlerts(flags model.AlertFlag) string {
	var sb strings.Builder
	for _, g := range alertGlyphs {
		if flags.Has(g.flag) {
			sb.WriteString(g.glyph)
		}
	}
	return sb.String()
}

// renderBlock formats a single record for the digest body.
func renderBlock(issue model.TriagedIssue) string {
	labels := ""
	if issue.Labels != "" {
		labels = "(" + issue.Labels + ")"
	}

	return fmt.Sprintf("---\n%s [%s] %s\n%d comments, created: %s, updated: %s %s\n%s\n\n",
		renderAlerts(issue.Alerts), issue.Assignee, issue.Title,
		issue.Comments, daysAgo(issue.DaysOpen), daysAgo(issue.DaysSinceUpdate), labels,
		issue.Link)
}

// daysAgo humanizes a day count.
func daysAgo(count int) string {
	if count == 0 {
		return "today"
	}
	suffix := "days"
	if count == 1 {
		suffix = "day"
	}
	return fmt.Sprintf("%d %s ago", count, suffix)
}

// sortForReport orders records by (assignee, pull-request flag) ascending,
// grouping work by assignee with issues ahead of pull requests. The sort is
// stable.
func sortForReport(issues []model.TriagedIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Assignee != issues[j].Assignee {
			return issues[i].Assignee < issues[j].Assignee
		}
		return !issues[i].IsPR && issues[j].IsPR
	})
}

// buildSections renders the pull-request section and, when includeIssues is
// set, the issue section. Records are appended in sorted order until the next
// block would push the combined body past maxBodyLength; the remainder is
// silently discarded.
func buildSections(issues []model.TriagedIssue, includeIssues bool) (prs, issuesTxt string) {
	sorted := make([]model.TriagedIssue, len(issues))
	copy(sorted, issues)
	sortForReport(sorted)

	var prsB, issuesB strings.Builder
	for _, issue := range sorted {
		if !issue.IsPR && !includeIssues {
			continue
		}
		block := renderBlock(issue)
		if prsB.Len()+issuesB.Len()+len(block) > maxBodyLength {
			break
		}
		if issue.IsPR {
			prsB.WriteString(block)
		} else {
			issuesB.WriteString(block)
		}
	}

	return prsB.String(), issuesB.String()
}
