package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"convosched/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCalendar struct {
	busy []models.BusyInterval
	err  error
}

func (s *stubCalendar) FetchBusyIntervals(ctx context.Context, windowStart, windowEnd time.Time) ([]models.BusyInterval, error) {
	return s.busy, s.err
}

type stubOracle struct {
	rank func(candidates []models.Candidate) ([]models.Candidate, error)
}

func (s *stubOracle) Rank(ctx context.Context, candidates []models.Candidate, cs models.ConstraintSet) ([]models.Candidate, error) {
	return s.rank(candidates)
}

func TestRankCandidatesRuleOrder(t *testing.T) {
	now := mon(8, 0)
	candidates := []models.Candidate{
		{Slot: models.FreeSlot{Start: mon(15, 0), End: mon(16, 0)}, Score: 1, BufferMinutes: 30},
		{Slot: models.FreeSlot{Start: mon(10, 0), End: mon(11, 0)}, Score: 3, BufferMinutes: 10},
		{Slot: models.FreeSlot{Start: mon(9, 0), End: mon(10, 0)}, Score: 1, BufferMinutes: 60},
		{Slot: models.FreeSlot{Start: mon(9, 0), End: mon(10, 0)}, Score: 1, BufferMinutes: 120},
	}

	ranked := RankCandidates(candidates, now)

	// Highest score first, then closest to now, then largest buffer.
	assert.Equal(t, mon(10, 0), ranked[0].Slot.Start)
	assert.Equal(t, 120, ranked[1].BufferMinutes)
	assert.Equal(t, 60, ranked[2].BufferMinutes)
	assert.Equal(t, mon(15, 0), ranked[3].Slot.Start)
}

func TestRankedCandidatesCalendarFailure(t *testing.T) {
	engine := &DefaultSchedulingEngine{
		Calendar: &stubCalendar{err: errors.New("provider timeout")},
		Now:      func() time.Time { return mon(8, 0) },
	}

	candidates, err := engine.RankedCandidates(context.Background(),
		models.ConstraintSet{DurationMinutes: 60}, mon(9, 0), mon(17, 0))

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeCalendarUnavailable))
	assert.Nil(t, candidates)
}

func TestRankedCandidatesTopCandidatesWithReasons(t *testing.T) {
	engine := &DefaultSchedulingEngine{
		Calendar: &stubCalendar{busy: []models.BusyInterval{
			{Start: mon(9, 0), End: mon(10, 0)},
			{Start: mon(11, 0), End: mon(12, 0)},
		}},
		StepMinutes: 30,
		TopN:        3,
		Now:         func() time.Time { return mon(8, 0) },
	}

	candidates, err := engine.RankedCandidates(context.Background(),
		models.ConstraintSet{DurationMinutes: 60}, mon(9, 0), mon(13, 0))

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// Only 10:00 and 12:00 fit a full hour between the meetings.
	assert.Equal(t, mon(10, 0), candidates[0].Slot.Start)
	assert.Equal(t, mon(12, 0), candidates[1].Slot.Start)
	for _, c := range candidates {
		assert.NotEmpty(t, c.Reason)
	}
}

func TestRankedCandidatesOracleFailureKeepsRuleOrder(t *testing.T) {
	engine := &DefaultSchedulingEngine{
		Calendar: &stubCalendar{},
		Oracle: &stubOracle{rank: func([]models.Candidate) ([]models.Candidate, error) {
			return nil, errors.New("model overloaded")
		}},
		StepMinutes: 60,
		TopN:        3,
		Now:         func() time.Time { return mon(8, 0) },
	}

	candidates, err := engine.RankedCandidates(context.Background(),
		models.ConstraintSet{DurationMinutes: 60}, mon(9, 0), mon(13, 0))

	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, mon(9, 0), candidates[0].Slot.Start)
	assert.Equal(t, mon(10, 0), candidates[1].Slot.Start)
	assert.Equal(t, mon(11, 0), candidates[2].Slot.Start)
	for _, c := range candidates {
		assert.Equal(t, fallbackReason, c.Reason)
	}
}

func TestRankedCandidatesOracleTimeoutKeepsRuleOrder(t *testing.T) {
	engine := &DefaultSchedulingEngine{
		Calendar: &stubCalendar{},
		Oracle: &stubOracle{rank: func(in []models.Candidate) ([]models.Candidate, error) {
			time.Sleep(50 * time.Millisecond)
			return nil, context.DeadlineExceeded
		}},
		OracleTimeout: 10 * time.Millisecond,
		StepMinutes:   60,
		TopN:          2,
		Now:           func() time.Time { return mon(8, 0) },
	}

	candidates, err := engine.RankedCandidates(context.Background(),
		models.ConstraintSet{DurationMinutes: 60}, mon(9, 0), mon(12, 0))

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, mon(9, 0), candidates[0].Slot.Start)
	assert.Equal(t, mon(10, 0), candidates[1].Slot.Start)
}

func TestRankedCandidatesOracleReordersTopK(t *testing.T) {
	engine := &DefaultSchedulingEngine{
		Calendar: &stubCalendar{},
		Oracle: &stubOracle{rank: func(in []models.Candidate) ([]models.Candidate, error) {
			// Reverse the rule order and explain each pick.
			out := make([]models.Candidate, 0, len(in))
			for i := len(in) - 1; i >= 0; i-- {
				c := in[i]
				c.Reason = "Leaves the morning free for deep work."
				out = append(out, c)
			}
			return out, nil
		}},
		StepMinutes: 60,
		TopN:        3,
		OracleTopK:  3,
		Now:         func() time.Time { return mon(8, 0) },
	}

	candidates, err := engine.RankedCandidates(context.Background(),
		models.ConstraintSet{DurationMinutes: 60}, mon(9, 0), mon(13, 0))

	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, mon(11, 0), candidates[0].Slot.Start)
	assert.Equal(t, mon(10, 0), candidates[1].Slot.Start)
	assert.Equal(t, mon(9, 0), candidates[2].Slot.Start)
	assert.Equal(t, "Leaves the morning free for deep work.", candidates[0].Reason)
}

func TestRankedCandidatesOracleBadCountRejected(t *testing.T) {
	engine := &DefaultSchedulingEngine{
		Calendar: &stubCalendar{},
		Oracle: &stubOracle{rank: func(in []models.Candidate) ([]models.Candidate, error) {
			return in[:1], nil // dropped candidates
		}},
		StepMinutes: 60,
		TopN:        2,
		Now:         func() time.Time { return mon(8, 0) },
	}

	candidates, err := engine.RankedCandidates(context.Background(),
		models.ConstraintSet{DurationMinutes: 60}, mon(9, 0), mon(12, 0))

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, mon(9, 0), candidates[0].Slot.Start)
}
