package scheduling

import (
	"testing"
	"time"

	"convosched/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCandidatesSlidesAtStep(t *testing.T) {
	slots := []models.FreeSlot{{Start: mon(10, 0), End: mon(12, 0)}}

	candidates := GenerateCandidates(slots, nil, 60, 30, models.Preferences{})

	// 10:00, 10:30, 11:00 all fit a one-hour meeting before noon.
	require.Len(t, candidates, 3)
	assert.Equal(t, mon(10, 0), candidates[0].Slot.Start)
	assert.Equal(t, mon(10, 30), candidates[1].Slot.Start)
	assert.Equal(t, mon(11, 0), candidates[2].Slot.Start)
	for _, c := range candidates {
		assert.Equal(t, time.Hour, c.Slot.Duration())
	}
}

func TestGenerateCandidatesRespectsWorkHours(t *testing.T) {
	slots := []models.FreeSlot{{Start: mon(7, 0), End: mon(19, 0)}}
	prefs := models.Preferences{
		WorkHoursOnly:  true,
		EarliestMinute: 9 * 60,
		LatestMinute:   17 * 60,
	}

	candidates := GenerateCandidates(slots, nil, 60, 60, prefs)

	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		startMin := c.Slot.Start.Hour()*60 + c.Slot.Start.Minute()
		endMin := c.Slot.End.Hour()*60 + c.Slot.End.Minute()
		assert.GreaterOrEqual(t, startMin, prefs.EarliestMinute)
		assert.LessOrEqual(t, endMin, prefs.LatestMinute)
	}
}

func TestGenerateCandidatesRejectsWeekendsWhenWorkHoursOnly(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	slots := []models.FreeSlot{{Start: saturday, End: saturday.Add(4 * time.Hour)}}

	candidates := GenerateCandidates(slots, nil, 60, 60, models.Preferences{WorkHoursOnly: true})

	assert.Empty(t, candidates)
}

func TestGenerateCandidatesFiltersAvoidWindows(t *testing.T) {
	slots := []models.FreeSlot{{Start: mon(8, 0), End: mon(12, 0)}}
	prefs := models.Preferences{
		// Avoid everything before 10:00.
		Avoid: []models.HourWindow{{StartMinute: 0, EndMinute: 10 * 60}},
	}

	candidates := GenerateCandidates(slots, nil, 60, 60, prefs)

	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		startMin := c.Slot.Start.Hour()*60 + c.Slot.Start.Minute()
		assert.GreaterOrEqual(t, startMin, 10*60)
	}
}

func TestGenerateCandidatesBoostsPreferWindows(t *testing.T) {
	slots := []models.FreeSlot{{Start: mon(9, 0), End: mon(16, 0)}}
	prefs := models.Preferences{
		// Prefer the early afternoon.
		Prefer: []models.HourWindow{{StartMinute: 13 * 60, EndMinute: 15 * 60}},
	}

	candidates := GenerateCandidates(slots, nil, 60, 60, prefs)

	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		startMin := c.Slot.Start.Hour()*60 + c.Slot.Start.Minute()
		if startMin >= 13*60 && startMin < 15*60 {
			assert.Greater(t, c.Score, baselineScore, "preferred slot at %s", c.Slot.Label())
		} else {
			assert.Equal(t, baselineScore, c.Score, "unboosted slot at %s", c.Slot.Label())
		}
	}
}

func TestBufferMinutesMeasuresAdjacentGaps(t *testing.T) {
	mergedBusy := []models.BusyInterval{
		{Start: mon(9, 0), End: mon(10, 0)},
		{Start: mon(11, 30), End: mon(12, 0)},
	}

	// Candidate 10:15-11:00 sits 15 min after one meeting, 30 min before the next.
	assert.Equal(t, 15, bufferMinutes(mon(10, 15), mon(11, 0), mergedBusy))

	// No adjacent busy time at all gets the cap.
	assert.Equal(t, 240, bufferMinutes(mon(10, 0), mon(11, 0), nil))
}
