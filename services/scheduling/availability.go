package scheduling

import (
	"sort"
	"time"

	"convosched/models"
)

// MergeBusyIntervals sorts the input by start and sweep-merges any intervals
// whose gap is at most minGap, so the minimum buffer is treated as busy time.
// Overlapping and duplicate input intervals collapse without double-counting.
// The operation is idempotent: merging an already-merged set is a no-op.
func MergeBusyIntervals(busy []models.BusyInterval, minGap time.Duration) []models.BusyInterval {
	if len(busy) == 0 {
		return nil
	}

	sorted := make([]models.BusyInterval, 0, len(busy))
	for _, b := range busy {
		if !b.End.After(b.Start) {
			continue // zero or negative length, calendar noise
		}
		sorted = append(sorted, b)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []models.BusyInterval{sorted[0]}
	for _, next := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if !next.Start.After(cur.End.Add(minGap)) {
			if next.End.After(cur.End) {
				cur.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// FreeSlots complements the merged busy set within [windowStart, windowEnd),
// truncates slots to the window boundaries, and drops any slot shorter than
// the requested duration. An empty busy set yields the whole window; a fully
// booked window yields an empty result, not an error.
func FreeSlots(busy []models.BusyInterval, windowStart, windowEnd time.Time, requested, minGap time.Duration) []models.FreeSlot {
	if !windowEnd.After(windowStart) {
		return nil
	}

	merged := MergeBusyIntervals(busy, minGap)

	var free []models.FreeSlot
	cursor := windowStart
	for _, b := range merged {
		if !b.End.After(windowStart) || !b.Start.Before(windowEnd) {
			continue // entirely outside the window
		}
		start := b.Start
		if start.Before(windowStart) {
			start = windowStart
		}
		if start.After(cursor) {
			free = append(free, models.FreeSlot{Start: cursor, End: start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(windowEnd) {
		free = append(free, models.FreeSlot{Start: cursor, End: windowEnd})
	}

	result := free[:0]
	for _, f := range free {
		if f.Duration() >= requested {
			result = append(result, f)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
