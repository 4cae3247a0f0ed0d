package icalendar

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mutateNow = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

const storedTask = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Nextcloud Tasks v0.16//EN\r\n" +
	"BEGIN:VTODO\r\n" +
	"UID:abc-123\r\n" +
	"CREATED:20250101T100000Z\r\n" +
	"LAST-MODIFIED:20250101T100000Z\r\n" +
	"DTSTAMP:20250101T100000Z\r\n" +
	"SUMMARY:Write report\r\n" +
	"STATUS:NEEDS-ACTION\r\n" +
	"DUE;VALUE=DATE:20250110\r\n" +
	"X-APPLE-SORT-ORDER:42\r\n" +
	"BEGIN:VALARM\r\n" +
	"ACTION:DISPLAY\r\n" +
	"SUMMARY:alarm\r\n" +
	"TRIGGER:-PT15M\r\n" +
	"END:VALARM\r\n" +
	"END:VTODO\r\n" +
	"END:VCALENDAR\r\n"

func lineWith(t *testing.T, text, prefix string) string {
	t.Helper()
	for _, l := range strings.Split(text, "\r\n") {
		if strings.HasPrefix(l, prefix) {
			return l
		}
	}
	t.Fatalf("no line starting with %q in:\n%s", prefix, text)
	return ""
}

func TestApplyTaskUpdateStatusKeepsOtherLines(t *testing.T) {
	out := ApplyTaskUpdate(storedTask, TaskUpdate{Status: mo.Some(StatusCompleted)}, mutateNow)

	assert.Contains(t, out, "\r\nSTATUS:COMPLETED\r\n")
	assert.NotContains(t, out, "NEEDS-ACTION")
	for _, keep := range []string{"UID:abc-123", "SUMMARY:Write report", "DUE;VALUE=DATE:20250110", "X-APPLE-SORT-ORDER:42", "SUMMARY:alarm", "TRIGGER:-PT15M"} {
		assert.Contains(t, out, "\r\n"+keep+"\r\n")
	}
	assert.Equal(t, "LAST-MODIFIED:20250203T040506Z", lineWith(t, out, "LAST-MODIFIED"))
	assert.Equal(t, strings.Count(storedTask, "\r\n"), strings.Count(out, "\r\n"))
}

func TestApplyTaskUpdateSummaryKeepsStatus(t *testing.T) {
	out := ApplyTaskUpdate(storedTask, TaskUpdate{Summary: mo.Some("Write final report, v2")}, mutateNow)

	assert.Equal(t, `SUMMARY:Write final report\, v2`, lineWith(t, out, "SUMMARY"))
	assert.Contains(t, out, "\r\nSTATUS:NEEDS-ACTION\r\n")
	// The alarm's SUMMARY is nested and must not be touched.
	assert.Contains(t, out, "\r\nSUMMARY:alarm\r\n")

	tasks := DecodeTasks(out)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write final report, v2", tasks[0].Summary)
	assert.Equal(t, StatusNeedsAction, tasks[0].Status)
}

func TestApplyTaskUpdateOnlyTouchesTargetLines(t *testing.T) {
	out := ApplyTaskUpdate(storedTask, TaskUpdate{Status: mo.Some(StatusInProcess)}, mutateNow)

	before := strings.Split(storedTask, "\r\n")
	after := strings.Split(out, "\r\n")
	require.Equal(t, len(before), len(after))

	var changed []string
	for i := range before {
		if before[i] != after[i] {
			changed = append(changed, after[i])
		}
	}
	assert.ElementsMatch(t, []string{"STATUS:IN-PROCESS", "LAST-MODIFIED:20250203T040506Z"}, changed)
}

func TestApplyTaskUpdatePercentInsertedOnce(t *testing.T) {
	first := ApplyTaskUpdate(storedTask, TaskUpdate{PercentComplete: mo.Some(25)}, mutateNow)

	lines := strings.Split(first, "\r\n")
	end := -1
	for i, l := range lines {
		if l == "END:VTODO" {
			end = i
		}
	}
	require.Greater(t, end, 0)
	assert.Equal(t, "PERCENT-COMPLETE:25", lines[end-1])
	assert.Equal(t, 1, strings.Count(first, "PERCENT-COMPLETE"))

	second := ApplyTaskUpdate(first, TaskUpdate{PercentComplete: mo.Some(80)}, mutateNow)
	assert.Equal(t, 1, strings.Count(second, "PERCENT-COMPLETE"))
	assert.Contains(t, second, "\r\nPERCENT-COMPLETE:80\r\n")

	tasks := DecodeTasks(second)
	require.Len(t, tasks, 1)
	assert.Equal(t, mo.Some(80), tasks[0].PercentComplete)
}

func TestApplyTaskUpdateMissingSummaryIsNoop(t *testing.T) {
	raw := "BEGIN:VCALENDAR\nBEGIN:VTODO\nUID:no-summary\nEND:VTODO\nEND:VCALENDAR\n"

	out := ApplyTaskUpdate(raw, TaskUpdate{Summary: mo.Some("ignored"), Status: mo.Some(StatusCompleted)}, mutateNow)

	assert.NotContains(t, out, "SUMMARY")
	assert.NotContains(t, out, "STATUS")
	assert.NotContains(t, out, "\r\n")
	assert.Equal(t,
		"BEGIN:VCALENDAR\nBEGIN:VTODO\nUID:no-summary\nLAST-MODIFIED:20250203T040506Z\nEND:VTODO\nEND:VCALENDAR\n",
		out)
}

func TestApplyTaskUpdateReplacesFoldedProperty(t *testing.T) {
	raw := "BEGIN:VCALENDAR\r\nBEGIN:VTODO\r\nUID:f\r\n" +
		"SUMMARY:a summary that was folded\r\n across two lines\r\n" +
		"STATUS:NEEDS-ACTION\r\nEND:VTODO\r\nEND:VCALENDAR\r\n"

	out := ApplyTaskUpdate(raw, TaskUpdate{Summary: mo.Some("short")}, mutateNow)

	assert.NotContains(t, out, "across two lines")
	assert.Contains(t, out, "\r\nSUMMARY:short\r\nSTATUS:NEEDS-ACTION\r\n")
}

func TestApplyTaskUpdateFoldsLongValues(t *testing.T) {
	long := strings.Repeat("word ", 40)
	out := ApplyTaskUpdate(storedTask, TaskUpdate{Summary: mo.Some(long)}, mutateNow)

	for _, l := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len(l), maxLineOctets)
	}
	tasks := DecodeTasks(out)
	require.Len(t, tasks, 1)
	assert.Equal(t, long, tasks[0].Summary)
}

func TestApplyTaskUpdateWithoutVTODO(t *testing.T) {
	raw := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nUID:e\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"

	out := ApplyTaskUpdate(raw, TaskUpdate{Status: mo.Some(StatusCompleted)}, mutateNow)
	assert.Equal(t, raw, out)
}

func TestFoldLineKeepsRunesWhole(t *testing.T) {
	line := "SUMMARY:" + strings.Repeat("é", 60)

	parts := foldLine(line)
	require.Greater(t, len(parts), 1)
	var joined strings.Builder
	for i, p := range parts {
		assert.LessOrEqual(t, len(p), maxLineOctets)
		if i > 0 {
			require.True(t, strings.HasPrefix(p, " "))
			p = p[1:]
		}
		joined.WriteString(p)
	}
	assert.Equal(t, line, joined.String())
}

func TestTaskUpdateEmpty(t *testing.T) {
	assert.True(t, TaskUpdate{}.Empty())
	assert.False(t, TaskUpdate{Status: mo.Some(StatusCompleted)}.Empty())
}
