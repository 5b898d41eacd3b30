package scheduling

import (
	"time"

	"convosched/models"
)

const (
	baselineScore    = 1.0
	preferBoostScore = 2.0

	minutesPerDay = 24 * 60
)

// GenerateCandidates slides an exact-duration window across each free slot at
// the given step, producing every legal start time. Candidates intersecting
// an avoid window, or falling outside work hours when WorkHoursOnly is set,
// are discarded; prefer-window hits get a score boost over the baseline.
// mergedBusy is used to compute each candidate's buffer from adjacent busy time.
func GenerateCandidates(
	slots []models.FreeSlot,
	mergedBusy []models.BusyInterval,
	durationMinutes, stepMinutes int,
	prefs models.Preferences,
) []models.Candidate {
	if durationMinutes <= 0 {
		return nil
	}
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	duration := time.Duration(durationMinutes) * time.Minute
	step := time.Duration(stepMinutes) * time.Minute

	var candidates []models.Candidate
	for _, slot := range slots {
		for start := slot.Start; !start.Add(duration).After(slot.End); start = start.Add(step) {
			end := start.Add(duration)
			if !admissible(start, durationMinutes, prefs) {
				continue
			}
			score := baselineScore
			if hitsWindow(prefs.Prefer, start, durationMinutes) {
				score += preferBoostScore
			}
			candidates = append(candidates, models.Candidate{
				Slot:          models.FreeSlot{Start: start, End: end},
				Score:         score,
				BufferMinutes: bufferMinutes(start, end, mergedBusy),
			})
		}
	}
	return candidates
}

// admissible applies avoid windows and the work-hours constraint.
func admissible(start time.Time, durationMinutes int, prefs models.Preferences) bool {
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + durationMinutes

	if prefs.WorkHoursOnly {
		if day := start.Weekday(); day == time.Saturday || day == time.Sunday {
			return false
		}
		earliest := prefs.EarliestMinute
		latest := prefs.LatestMinute
		if latest <= 0 {
			latest = minutesPerDay
		}
		if startMin < earliest || endMin > latest {
			return false
		}
	}

	return !hitsWindow(prefs.Avoid, start, durationMinutes)
}

// hitsWindow reports whether [start, start+duration) intersects any of the
// given hour windows, including the spill-over into the next day when the
// range crosses midnight.
func hitsWindow(windows []models.HourWindow, start time.Time, durationMinutes int) bool {
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + durationMinutes
	day := start.Weekday()

	for _, w := range windows {
		if w.Overlaps(day, startMin, min(endMin, minutesPerDay)) {
			return true
		}
		if endMin > minutesPerDay && w.Overlaps((day+1)%7, 0, endMin-minutesPerDay) {
			return true
		}
	}
	return false
}

// bufferMinutes is the smaller gap between the candidate and its adjacent
// merged busy intervals, capped at 240. Candidates bordering no busy time at
// all get the cap.
func bufferMinutes(start, end time.Time, mergedBusy []models.BusyInterval) int {
	const maxBuffer = 240
	buffer := maxBuffer
	for _, b := range mergedBusy {
		if !b.End.After(start) { // busy interval before the candidate
			if gap := int(start.Sub(b.End).Minutes()); gap < buffer {
				buffer = gap
			}
		}
		if !b.Start.Before(end) { // busy interval after the candidate
			if gap := int(b.Start.Sub(end).Minutes()); gap < buffer {
				buffer = gap
			}
		}
	}
	return buffer
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
