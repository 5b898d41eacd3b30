package scheduling

import (
	"context"
	"time"

	"convosched/models"
)

// CalendarSnapshotProvider supplies busy intervals for a search window.
// Failures (including timeouts) surface as calendarUnavailable errors and are
// never treated as an empty calendar.
type CalendarSnapshotProvider interface {
	FetchBusyIntervals(ctx context.Context, windowStart, windowEnd time.Time) ([]models.BusyInterval, error)
}

// RankingOracle optionally reorders top candidates and attaches reasons.
// It is best-effort: any error leaves the rule-based order in force.
type RankingOracle interface {
	Rank(ctx context.Context, candidates []models.Candidate, cs models.ConstraintSet) ([]models.Candidate, error)
}

// BookingSink commits a confirmed candidate and returns a booking ID.
type BookingSink interface {
	Commit(ctx context.Context, candidate models.Candidate, cs models.ConstraintSet, sessionID string) (string, error)
}

// SchedulingEngine turns a complete constraint set into ranked bookable
// candidates within a search window.
type SchedulingEngine interface {
	RankedCandidates(ctx context.Context, cs models.ConstraintSet, windowStart, windowEnd time.Time) ([]models.Candidate, error)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	Calendar CalendarSnapshotProvider
	Oracle   RankingOracle // optional; nil disables refinement

	CalendarTimeout time.Duration
	OracleTimeout   time.Duration
	StepMinutes     int
	TopN            int
	OracleTopK      int

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (se *DefaultSchedulingEngine) now() time.Time {
	if se.Now != nil {
		return se.Now()
	}
	return time.Now()
}
