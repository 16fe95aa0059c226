// internal/triage/classify_test.go
package triage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-digest-reporter/internal/model"
)

var testToday = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestClassify_TitleTruncation(t *testing.T) {
	t.Run("long titles are cut to 50 characters with an ellipsis", func(t *testing.T) {
		raw := model.RawIssue{Title: strings.Repeat("a", 80), CreatedAt: testToday, UpdatedAt: testToday}

		issue, ok := classify(raw, false, testToday)

		require.True(t, ok)
		assert.Len(t, []rune(issue.Title), 50)
		assert.Equal(t, strings.Repeat("a", 48)+"..", issue.Title)
	})

	t.Run("titles at the limit are unchanged", func(t *testing.T) {
		title := strings.Repeat("b", 50)
		raw := model.RawIssue{Title: title, CreatedAt: testToday, UpdatedAt: testToday}

		issue, ok := classify(raw, false, testToday)

		require.True(t, ok)
		assert.Equal(t, title, issue.Title)
	})

	t.Run("multi-byte titles are truncated by characters, not bytes", func(t *testing.T) {
		raw := model.RawIssue{Title: strings.Repeat("日", 60), CreatedAt: testToday, UpdatedAt: testToday}

		issue, ok := classify(raw, false, testToday)

		require.True(t, ok)
		assert.Len(t, []rune(issue.Title), 50)
		assert.True(t, strings.HasSuffix(issue.Title, ".."))
	})
}

func TestClassify_Assignee(t *testing.T) {
	t.Run("joins multiple assignees with a comma", func(t *testing.T) {
		raw := model.RawIssue{Assignees: []string{"alice", "bob"}, Assignee: "alice", CreatedAt: testToday, UpdatedAt: testToday}

		issue, _ := classify(raw, false, testToday)

		assert.Equal(t, "alice,bob", issue.Assignee)
	})

	t.Run("uses the single assignee login", func(t *testing.T) {
		raw := model.RawIssue{Assignee: "carol", CreatedAt: testToday, UpdatedAt: testToday}

		issue, _ := classify(raw, false, testToday)

		assert.Equal(t, "carol", issue.Assignee)
	})

	t.Run("falls back to the unassigned sentinel", func(t *testing.T) {
		raw := model.RawIssue{CreatedAt: testToday, UpdatedAt: testToday}

		issue, _ := classify(raw, false, testToday)

		assert.Equal(t, "unassigned", issue.Assignee)
	})
}

func TestClassify_DropsApprovedPullRequests(t *testing.T) {
	raw := model.RawIssue{Title: "fix", IsPR: true, CreatedAt: testToday, UpdatedAt: testToday}

	_, ok := classify(raw, true, testToday)
	assert.False(t, ok)

	// An approved plain issue cannot happen, but the flag must only drop PRs.
	raw.IsPR = false
	_, ok = classify(raw, true, testToday)
	assert.True(t, ok)
}

func TestClassify_Labels(t *testing.T) {
	raw := model.RawIssue{Labels: []string{"p1", "needs-triage"}, CreatedAt: testToday, UpdatedAt: testToday}

	issue, _ := classify(raw, false, testToday)

	assert.Equal(t, "p1, needs-triage", issue.Labels)
}

func TestDaysSince(t *testing.T) {
	t.Run("counts calendar days, ignoring time of day", func(t *testing.T) {
		created := time.Date(2024, 3, 8, 23, 59, 0, 0, time.UTC)
		today := time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)

		assert.Equal(t, 2, daysSince(created, today))
	})

	t.Run("same day is zero", func(t *testing.T) {
		created := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
		today := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)

		assert.Equal(t, 0, daysSince(created, today))
	})

	t.Run("is never negative for past timestamps", func(t *testing.T) {
		for days := 0; days < 30; days++ {
			created := testToday.AddDate(0, 0, -days)
			assert.GreaterOrEqual(t, daysSince(created, testToday), 0)
		}
	})
}
