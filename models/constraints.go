package models

import "time"

// Field names for collected scheduling parameters.
const (
	FieldDuration   = "duration"
	FieldWindow     = "window"
	FieldDate       = "date"
	FieldTime       = "time"
	FieldTitle      = "title"
	FieldRecurrence = "recurrence"
	FieldAnchor     = "anchor"
)

// FieldPriority orders clarification questions: date/time-like fields are
// asked for before descriptive ones.
var FieldPriority = []string{FieldDuration, FieldWindow, FieldDate, FieldTime, FieldTitle}

// Preferences captures avoid/prefer windows and work-hour constraints.
type Preferences struct {
	Avoid          []HourWindow `json:"avoid,omitempty"`
	Prefer         []HourWindow `json:"prefer,omitempty"`
	WorkHoursOnly  bool         `json:"workHoursOnly"`
	EarliestMinute int          `json:"earliestMinute,omitempty"` // minutes from midnight
	LatestMinute   int          `json:"latestMinute,omitempty"`
	MinGapMinutes  int          `json:"minGapMinutes,omitempty"`
}

// Recurrence describes a repeating request ("every Friday", "each day this week").
type Recurrence struct {
	Weekday     *time.Weekday `json:"weekday,omitempty"`
	Daily       bool          `json:"daily"`
	HorizonDays int           `json:"horizonDays,omitempty"`
}

// ConstraintSet is built incrementally across turns; a zero/nil field is unset.
type ConstraintSet struct {
	DurationMinutes  int         `json:"durationMinutes,omitempty"`
	SearchWindowDays int         `json:"searchWindowDays,omitempty"`
	Date             string      `json:"date,omitempty"`            // "2006-01-02"
	TimeOfDayMinute  *int        `json:"timeOfDayMinute,omitempty"` // minutes from midnight
	Title            string      `json:"title,omitempty"`
	Recurrence       *Recurrence `json:"recurrence,omitempty"`
	Anchor           string      `json:"anchor,omitempty"`
	Preferences      Preferences `json:"preferences"`
}

// Has reports whether the named field holds a value.
func (cs ConstraintSet) Has(field string) bool {
	switch field {
	case FieldDuration:
		return cs.DurationMinutes > 0
	case FieldWindow:
		return cs.SearchWindowDays > 0 || cs.Date != ""
	case FieldDate:
		return cs.Date != ""
	case FieldTime:
		return cs.TimeOfDayMinute != nil
	case FieldTitle:
		return cs.Title != ""
	case FieldRecurrence:
		return cs.Recurrence != nil
	case FieldAnchor:
		return cs.Anchor != ""
	}
	return false
}

// CollectedFields lists the fields currently holding values, in priority order.
func (cs ConstraintSet) CollectedFields() []string {
	var fields []string
	for _, f := range []string{FieldDuration, FieldWindow, FieldDate, FieldTime, FieldTitle, FieldRecurrence, FieldAnchor} {
		if cs.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// ConstraintDelta is the extractor's partial output for a single utterance;
// nil fields were not mentioned and must be left untouched on merge.
type ConstraintDelta struct {
	DurationMinutes  *int
	SearchWindowDays *int
	Date             *string
	TimeOfDayMinute  *int
	Title            *string
	Recurrence       *Recurrence
	Anchor           *string
	WorkHoursOnly    *bool
	Avoid            []HourWindow
	Prefer           []HourWindow
}

// Empty reports whether the utterance produced no usable delta.
func (d ConstraintDelta) Empty() bool {
	return d.DurationMinutes == nil && d.SearchWindowDays == nil &&
		d.Date == nil && d.TimeOfDayMinute == nil && d.Title == nil &&
		d.Recurrence == nil && d.Anchor == nil && d.WorkHoursOnly == nil &&
		len(d.Avoid) == 0 && len(d.Prefer) == 0
}

// Fields lists the field names the delta supplies.
func (d ConstraintDelta) Fields() []string {
	var fields []string
	if d.DurationMinutes != nil {
		fields = append(fields, FieldDuration)
	}
	if d.SearchWindowDays != nil {
		fields = append(fields, FieldWindow)
	}
	if d.Date != nil {
		fields = append(fields, FieldDate)
	}
	if d.TimeOfDayMinute != nil {
		fields = append(fields, FieldTime)
	}
	if d.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if d.Recurrence != nil {
		fields = append(fields, FieldRecurrence)
	}
	if d.Anchor != nil {
		fields = append(fields, FieldAnchor)
	}
	return fields
}

// Apply merges every supplied field into cs, overwriting prior values.
// Fields the delta does not mention are never cleared.
func (d ConstraintDelta) Apply(cs *ConstraintSet) {
	if d.DurationMinutes != nil {
		cs.DurationMinutes = *d.DurationMinutes
	}
	if d.SearchWindowDays != nil {
		cs.SearchWindowDays = *d.SearchWindowDays
	}
	if d.Date != nil {
		cs.Date = *d.Date
	}
	if d.TimeOfDayMinute != nil {
		m := *d.TimeOfDayMinute
		cs.TimeOfDayMinute = &m
	}
	if d.Title != nil {
		cs.Title = *d.Title
	}
	if d.Recurrence != nil {
		r := *d.Recurrence
		cs.Recurrence = &r
	}
	if d.Anchor != nil {
		cs.Anchor = *d.Anchor
	}
	if d.WorkHoursOnly != nil {
		cs.Preferences.WorkHoursOnly = *d.WorkHoursOnly
	}
	cs.Preferences.Avoid = append(cs.Preferences.Avoid, d.Avoid...)
	cs.Preferences.Prefer = append(cs.Preferences.Prefer, d.Prefer...)
}
