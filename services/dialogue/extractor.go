package dialogue

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"convosched/models"
)

// Extractor turns free text into a partial constraint delta. Unmatched text
// never raises; an all-nil delta is a valid (if unhelpful) result handled by
// the dialogue loop asking for clarification.
type Extractor interface {
	Extract(text string, now time.Time) models.ConstraintDelta
}

// patternRule maps one phrase pattern to a field setter. Rules run in table
// order against a working copy of the utterance; a matching rule consumes its
// matched text so later rules cannot re-read it (this is how "every friday"
// becomes a recurrence without also becoming a date).
type patternRule struct {
	re    *regexp.Regexp
	apply func(m []string, now time.Time, d *models.ConstraintDelta)
}

// PatternExtractor is the declarative, ordered rule table. First match per
// field wins; independent fields can all match within one utterance.
type PatternExtractor struct {
	rules []patternRule
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

const weekdayAlt = "sunday|monday|tuesday|wednesday|thursday|friday|saturday"

func NewPatternExtractor() *PatternExtractor {
	intp := func(v int) *int { return &v }
	boolp := func(v bool) *bool { return &v }
	strp := func(v string) *string { return &v }

	morning := models.HourWindow{StartMinute: 0, EndMinute: 10 * 60}
	midMorning := models.HourWindow{StartMinute: 9 * 60, EndMinute: 12 * 60}
	afternoon := models.HourWindow{StartMinute: 12 * 60, EndMinute: 17 * 60}
	evening := models.HourWindow{StartMinute: 17 * 60, EndMinute: 22 * 60}

	rules := []patternRule{
		// --- duration ---
		{regexp.MustCompile(`(\d+(?:\.\d+)?)[\s-]*hours?\b`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.DurationMinutes != nil {
				return
			}
			if h, err := strconv.ParseFloat(m[1], 64); err == nil {
				d.DurationMinutes = intp(int(h * 60))
			}
		}},
		{regexp.MustCompile(`(\d+)\s*(?:minutes?|mins?)\b`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.DurationMinutes != nil {
				return
			}
			if n, err := strconv.Atoi(m[1]); err == nil {
				d.DurationMinutes = intp(n)
			}
		}},
		{regexp.MustCompile(`\bhalf an hour\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			if d.DurationMinutes == nil {
				d.DurationMinutes = intp(30)
			}
		}},
		{regexp.MustCompile(`\ban? hour\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			if d.DurationMinutes == nil {
				d.DurationMinutes = intp(60)
			}
		}},

		// --- recurrence (before date so "every friday" is consumed first) ---
		{regexp.MustCompile(`\bevery\s+(` + weekdayAlt + `)\b`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.Recurrence == nil {
				wd := weekdayNames[m[1]]
				d.Recurrence = &models.Recurrence{Weekday: &wd}
			}
		}},
		{regexp.MustCompile(`\b(?:each|every)\s+day\s+this\s+week\b`), func(_ []string, now time.Time, d *models.ConstraintDelta) {
			if d.Recurrence == nil {
				d.Recurrence = &models.Recurrence{Daily: true, HorizonDays: daysUntilNextWeek(now)}
			}
		}},

		// --- relative anchors ---
		{regexp.MustCompile(`\b(?:the\s+)?day\s+before\s+(?:the\s+)?([\w][\w\s-]{1,40}?)\s+(?:is\s+)?due\b`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.Anchor == nil {
				d.Anchor = strp("day before " + strings.TrimSpace(m[1]) + " due")
			}
		}},
		{regexp.MustCompile(`\bafter\s+(?:the\s+|my\s+)([\w][\w\s-]{1,40}?)(?:\s*$|[,.!?])`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.Anchor == nil {
				d.Anchor = strp("after " + strings.TrimSpace(m[1]))
			}
		}},

		// --- search window ---
		{regexp.MustCompile(`\btoday\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			if d.SearchWindowDays == nil {
				d.SearchWindowDays = intp(1)
			}
		}},
		{regexp.MustCompile(`\btomorrow\b`), func(m []string, now time.Time, d *models.ConstraintDelta) {
			if d.Date == nil {
				d.Date = strp(now.AddDate(0, 0, 1).Format("2006-01-02"))
			}
		}},
		{regexp.MustCompile(`\bthis\s+week\b`), func(_ []string, now time.Time, d *models.ConstraintDelta) {
			if d.SearchWindowDays == nil {
				d.SearchWindowDays = intp(daysUntilNextWeek(now))
			}
		}},
		{regexp.MustCompile(`\bnext\s+week\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			if d.SearchWindowDays == nil {
				d.SearchWindowDays = intp(7)
			}
		}},
		{regexp.MustCompile(`\b(?:on\s+)?(` + weekdayAlt + `)\b`), func(m []string, now time.Time, d *models.ConstraintDelta) {
			if d.Date == nil {
				d.Date = strp(nextWeekday(now, weekdayNames[m[1]]).Format("2006-01-02"))
			}
		}},

		// --- clock time ---
		{regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.TimeOfDayMinute == nil {
				if minute, ok := clockMinute(m[1], m[2], m[3]); ok {
					d.TimeOfDayMinute = intp(minute)
				}
			}
		}},
		{regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.TimeOfDayMinute == nil {
				if minute, ok := clockMinute(m[1], m[2], m[3]); ok {
					d.TimeOfDayMinute = intp(minute)
				}
			}
		}},

		// --- avoid/prefer (negations before bare daypart words) ---
		{regexp.MustCompile(`\b(?:nothing|not)\s+too\s+early\b|\bno\s+(?:early\s+)?mornings?\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			d.Avoid = append(d.Avoid, morning)
		}},
		{regexp.MustCompile(`\b(?:nothing|not)\s+too\s+late\b|\bno\s+(?:late\s+)?evenings?\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			d.Avoid = append(d.Avoid, evening)
		}},
		{regexp.MustCompile(`\bafternoons?\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			d.Prefer = append(d.Prefer, afternoon)
		}},
		{regexp.MustCompile(`\bmornings?\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			d.Prefer = append(d.Prefer, midMorning)
		}},
		{regexp.MustCompile(`\bevenings?\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			d.Prefer = append(d.Prefer, evening)
		}},
		{regexp.MustCompile(`\b(?:during\s+)?(?:work|business)\s+hours\b`), func(_ []string, _ time.Time, d *models.ConstraintDelta) {
			d.WorkHoursOnly = boolp(true)
		}},

		// --- title (last: date-like tokens win over name-like ones) ---
		{regexp.MustCompile(`"([^"]{2,60})"`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.Title == nil {
				d.Title = strp(strings.TrimSpace(m[1]))
			}
		}},
		{regexp.MustCompile(`\b(?:called|titled|named)\s+([\w][\w\s-]{1,40}?)(?:\s*$|[,.!?])`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.Title == nil {
				d.Title = strp(strings.TrimSpace(m[1]))
			}
		}},
		{regexp.MustCompile(`\bfor\s+(?:a\s+|an\s+|the\s+|my\s+)?([a-z][\w\s-]{2,40}?)(?:\s+session)?(?:\s*$|[,.!?])`), func(m []string, _ time.Time, d *models.ConstraintDelta) {
			if d.Title == nil {
				title := strings.TrimSpace(m[1])
				if !isStopTitle(title) {
					d.Title = strp(title)
				}
			}
		}},
	}

	return &PatternExtractor{rules: rules}
}

// Extract runs the rule table over the utterance. Each matching rule consumes
// its matched span from the working text before the next rule runs.
func (e *PatternExtractor) Extract(text string, now time.Time) models.ConstraintDelta {
	var delta models.ConstraintDelta
	working := strings.ToLower(text)

	for _, rule := range e.rules {
		m := rule.re.FindStringSubmatch(working)
		if m == nil {
			continue
		}
		rule.apply(m, now, &delta)
		working = strings.Replace(working, m[0], " ", 1)
	}
	return delta
}

// daysUntilNextWeek counts the days remaining until the next Monday.
func daysUntilNextWeek(now time.Time) int {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return days
}

// nextWeekday resolves a named weekday to its next occurrence after now.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func clockMinute(hourStr, minuteStr, meridiem string) (int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour > 23 {
		return 0, false
	}
	minute := 0
	if minuteStr != "" {
		if minute, err = strconv.Atoi(minuteStr); err != nil || minute > 59 {
			return 0, false
		}
	}
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour*60 + minute, true
}

// isStopTitle rejects filler captures ("a meeting", "some time") that carry
// no descriptive content.
func isStopTitle(title string) bool {
	switch title {
	case "meeting", "session", "time", "slot", "appointment", "it", "me", "us", "that", "this":
		return true
	}
	return false
}
