package dialogue

import (
	"testing"
	"time"

	"convosched/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extractNow is a fixed Tuesday morning.
var extractNow = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

func TestExtractDurationAndWindow(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("Find the best time for a 2-hour session next week", extractNow)

	require.NotNil(t, d.DurationMinutes)
	assert.Equal(t, 120, *d.DurationMinutes)
	require.NotNil(t, d.SearchWindowDays)
	assert.Equal(t, 7, *d.SearchWindowDays)
	assert.Nil(t, d.Title, "filler like 'session' must not become a title")
	assert.Nil(t, d.Date)
}

func TestExtractDurationVariants(t *testing.T) {
	e := NewPatternExtractor()

	cases := map[string]int{
		"block 30 minutes":        30,
		"a 1.5 hour review":       90,
		"half an hour would do":   30,
		"I need an hour":          60,
		"set aside 2 hours":       120,
		"a quick 45 min check-in": 45,
	}
	for text, want := range cases {
		d := e.Extract(text, extractNow)
		require.NotNil(t, d.DurationMinutes, "text: %q", text)
		assert.Equal(t, want, *d.DurationMinutes, "text: %q", text)
	}
}

func TestExtractRecurrenceConsumesWeekday(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("Block 30 minutes every Friday afternoon", extractNow)

	require.NotNil(t, d.DurationMinutes)
	assert.Equal(t, 30, *d.DurationMinutes)
	require.NotNil(t, d.Recurrence)
	require.NotNil(t, d.Recurrence.Weekday)
	assert.Equal(t, time.Friday, *d.Recurrence.Weekday)
	// "every friday" is a recurrence, not a concrete date.
	assert.Nil(t, d.Date)
	require.Len(t, d.Prefer, 1)
	assert.Equal(t, 12*60, d.Prefer[0].StartMinute)
}

func TestExtractBareWeekdayBecomesDate(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("let's do it on Friday", extractNow)

	require.NotNil(t, d.Date)
	assert.Equal(t, "2026-08-28", *d.Date)
	assert.Nil(t, d.Recurrence)
}

func TestExtractTomorrowWithClockTime(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("Schedule a review tomorrow at 3pm", extractNow)

	require.NotNil(t, d.Date)
	assert.Equal(t, "2026-08-26", *d.Date)
	require.NotNil(t, d.TimeOfDayMinute)
	assert.Equal(t, 15*60, *d.TimeOfDayMinute)
	assert.Nil(t, d.DurationMinutes)
}

func TestExtractClockTimeVariants(t *testing.T) {
	e := NewPatternExtractor()

	cases := map[string]int{
		"at 9":        9 * 60,
		"at 9:30am":   9*60 + 30,
		"at 12pm":     12 * 60,
		"maybe 7pm?":  19 * 60,
		"at 12:15 am": 15,
	}
	for text, want := range cases {
		d := e.Extract(text, extractNow)
		require.NotNil(t, d.TimeOfDayMinute, "text: %q", text)
		assert.Equal(t, want, *d.TimeOfDayMinute, "text: %q", text)
	}
}

func TestExtractAvoidAndPreferWindows(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("sometime this week, nothing too early and no evenings", extractNow)

	require.NotNil(t, d.SearchWindowDays)
	require.Len(t, d.Avoid, 2)
	assert.Equal(t, 0, d.Avoid[0].StartMinute)
	assert.Equal(t, 10*60, d.Avoid[0].EndMinute)
	assert.Equal(t, 17*60, d.Avoid[1].StartMinute)
}

func TestExtractWorkHoursOnly(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("keep it during business hours please", extractNow)

	require.NotNil(t, d.WorkHoursOnly)
	assert.True(t, *d.WorkHoursOnly)
}

func TestExtractTitles(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract(`an hour tomorrow called sprint planning`, extractNow)
	require.NotNil(t, d.Title)
	assert.Equal(t, "sprint planning", *d.Title)

	d = e.Extract(`book "Quarterly Review" for next week`, extractNow)
	require.NotNil(t, d.Title)
	assert.Equal(t, "quarterly review", *d.Title)

	d = e.Extract("find time for a dentist appointment", extractNow)
	require.NotNil(t, d.Title)
	assert.Equal(t, "dentist appointment", *d.Title)
}

func TestExtractAnchors(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("an hour the day before the report is due", extractNow)
	require.NotNil(t, d.Anchor)
	assert.Equal(t, "day before report due", *d.Anchor)

	d = e.Extract("squeeze it in after my standup", extractNow)
	require.NotNil(t, d.Anchor)
	assert.Equal(t, "after standup", *d.Anchor)
}

func TestExtractUnparsableYieldsEmptyDelta(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("hmm let me think about that", extractNow)

	assert.True(t, d.Empty())
}

func TestExtractDailyRecurrenceThisWeek(t *testing.T) {
	e := NewPatternExtractor()

	d := e.Extract("half an hour each day this week", extractNow)

	require.NotNil(t, d.Recurrence)
	assert.True(t, d.Recurrence.Daily)
	// Tuesday now: six days remain until next Monday.
	assert.Equal(t, 6, d.Recurrence.HorizonDays)
}

func TestExtractMergeNeverClearsFields(t *testing.T) {
	e := NewPatternExtractor()
	cs := models.ConstraintSet{}

	e.Extract("an hour tomorrow at 3pm", extractNow).Apply(&cs)
	require.NotNil(t, cs.TimeOfDayMinute)
	assert.Equal(t, 15*60, *cs.TimeOfDayMinute)

	// A later utterance naming only the date overwrites the date and
	// leaves duration and time untouched.
	e.Extract("on friday", extractNow).Apply(&cs)
	assert.Equal(t, "2026-08-28", cs.Date)
	assert.Equal(t, 60, cs.DurationMinutes)
	require.NotNil(t, cs.TimeOfDayMinute)
	assert.Equal(t, 15*60, *cs.TimeOfDayMinute)
}
