package models

import (
	"fmt"
	"time"
)

// BusyInterval represents a calendar-reported range where the user is
// unavailable. Half-open: [Start, End). Input may be unsorted or overlapping.
type BusyInterval struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// FreeSlot is a maximal interval within the search window not covered by any
// merged busy interval.
type FreeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (f FreeSlot) Duration() time.Duration {
	return f.End.Sub(f.Start)
}

// Label renders the slot for spoken confirmation prompts,
// e.g. "Friday Aug 28 from 10:00 to 11:00".
func (f FreeSlot) Label() string {
	return fmt.Sprintf("%s from %s to %s",
		f.Start.Format("Monday Jan 2"),
		f.Start.Format("15:04"),
		f.End.Format("15:04"))
}

// HourWindow is a recurring day-local window expressed in minutes from
// midnight (e.g., 420 for 7:00 AM), optionally pinned to a weekday.
type HourWindow struct {
	Day         *time.Weekday `json:"day,omitempty"`
	StartMinute int           `json:"startMinute"`
	EndMinute   int           `json:"endMinute"`
}

// Overlaps reports whether a [startMin, endMin) range on the given weekday
// intersects the window.
func (w HourWindow) Overlaps(day time.Weekday, startMin, endMin int) bool {
	if w.Day != nil && *w.Day != day {
		return false
	}
	return startMin < w.EndMinute && endMin > w.StartMinute
}
