package scheduling

import (
	"context"
	"sort"
	"time"

	"convosched/models"
	"convosched/utils"

	"go.uber.org/zap"
)

const fallbackReason = "This time fits your availability and preferences."

// RankCandidates applies the deterministic rule order: preference score
// descending, distance from now ascending, buffer from adjacent busy time
// descending. It always succeeds and never consults the oracle.
func RankCandidates(candidates []models.Candidate, now time.Time) []models.Candidate {
	ranked := make([]models.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		di := ranked[i].Slot.Start.Sub(now)
		dj := ranked[j].Slot.Start.Sub(now)
		if di != dj {
			return di < dj
		}
		return ranked[i].BufferMinutes > ranked[j].BufferMinutes
	})
	return ranked
}

// RankedCandidates fetches busy intervals, derives free slots, generates and
// ranks candidates, and returns the top N with reasons attached. The oracle,
// when configured, may reorder only the top K; its failure or timeout leaves
// the rule-based order unchanged and is never surfaced to the caller.
func (se *DefaultSchedulingEngine) RankedCandidates(ctx context.Context, cs models.ConstraintSet, windowStart, windowEnd time.Time) ([]models.Candidate, error) {
	logger := utils.GetLogger()

	fetchCtx, cancel := context.WithTimeout(ctx, se.calendarTimeout())
	defer cancel()
	busy, err := se.Calendar.FetchBusyIntervals(fetchCtx, windowStart, windowEnd)
	if err != nil {
		// A failed or timed-out fetch is never "no busy time".
		logger.Warn("calendar fetch failed", zap.Error(err))
		return nil, NewCalendarUnavailableError(err.Error())
	}

	minGap := time.Duration(cs.Preferences.MinGapMinutes) * time.Minute
	requested := time.Duration(cs.DurationMinutes) * time.Minute
	merged := MergeBusyIntervals(busy, minGap)
	slots := FreeSlots(merged, windowStart, windowEnd, requested, minGap)

	candidates := GenerateCandidates(slots, merged, cs.DurationMinutes, se.StepMinutes, cs.Preferences)
	ranked := RankCandidates(candidates, se.now())

	ranked = se.refineWithOracle(ctx, ranked, cs)

	topN := se.TopN
	if topN <= 0 {
		topN = 3
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		if ranked[i].Reason == "" {
			ranked[i].Reason = fallbackReason
		}
	}
	return ranked, nil
}

// refineWithOracle lets the ranking oracle reorder the top K candidates and
// attach reasons. The call is bounded by OracleTimeout; on any failure the
// rule-based order is returned untouched.
func (se *DefaultSchedulingEngine) refineWithOracle(ctx context.Context, ranked []models.Candidate, cs models.ConstraintSet) []models.Candidate {
	if se.Oracle == nil || len(ranked) == 0 {
		return ranked
	}
	logger := utils.GetLogger()

	topK := se.OracleTopK
	if topK <= 0 || topK > 10 {
		topK = 10
	}
	if topK > len(ranked) {
		topK = len(ranked)
	}

	oracleCtx, cancel := context.WithTimeout(ctx, se.oracleTimeout())
	defer cancel()

	head := make([]models.Candidate, topK)
	copy(head, ranked[:topK])
	refined, err := se.Oracle.Rank(oracleCtx, head, cs)
	if err != nil {
		logger.Warn("ranking oracle unavailable, keeping rule-based order", zap.Error(err))
		return ranked
	}
	if len(refined) != topK {
		logger.Warn("ranking oracle returned unexpected candidate count, keeping rule-based order",
			zap.Int("want", topK), zap.Int("got", len(refined)))
		return ranked
	}

	out := make([]models.Candidate, 0, len(ranked))
	out = append(out, refined...)
	out = append(out, ranked[topK:]...)
	return out
}

func (se *DefaultSchedulingEngine) calendarTimeout() time.Duration {
	if se.CalendarTimeout > 0 {
		return se.CalendarTimeout
	}
	return 5 * time.Second
}

func (se *DefaultSchedulingEngine) oracleTimeout() time.Duration {
	if se.OracleTimeout > 0 {
		return se.OracleTimeout
	}
	return 5 * time.Second
}
