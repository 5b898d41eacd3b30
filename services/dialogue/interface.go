package dialogue

import (
	"context"
	"time"

	"convosched/models"
	"convosched/services/scheduling"
)

// DialogueService is the engine's surface to voice/text front ends.
type DialogueService interface {
	StartSession(ctx context.Context, initialText string) (*models.TurnResponse, error)
	SubmitTurn(ctx context.Context, sessionID, text string) (*models.TurnResponse, error)
	GetSessionSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error)
}

// AuditRecorder persists turns and terminal status beyond the session
// store's TTL, so transcripts survive idle eviction. RecordTurn carries the
// session state with every turn, so the transcript's state is always current.
type AuditRecorder interface {
	RecordTurn(ctx context.Context, sessionID string, state models.DialogueState, turn models.DialogueTurn) error
	GetTranscript(ctx context.Context, sessionID string) (*models.SessionSummary, error)
}

// ExpiryScheduler arms the idle-timeout sweep for a session after each turn.
type ExpiryScheduler interface {
	ScheduleExpiry(sessionID string, turnCount int, after time.Duration) error
}

// DefaultDialogueService implements the state machine over an injected
// session store, extractor, correction detector, scheduling engine, and
// booking sink. Audit and Expiry are optional collaborators.
type DefaultDialogueService struct {
	Store       SessionStore
	Extractor   Extractor
	Corrections CorrectionDetector
	Engine      scheduling.SchedulingEngine
	Sink        scheduling.BookingSink
	Audit       AuditRecorder
	Expiry      ExpiryScheduler

	// RequiredFields defaults to duration and window when empty.
	RequiredFields []string
	DefaultPrefs   models.Preferences
	SessionTTL     time.Duration

	locks sessionLocks

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultDialogueService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultDialogueService) requiredFields() []string {
	if len(s.RequiredFields) > 0 {
		return s.RequiredFields
	}
	return []string{models.FieldDuration, models.FieldWindow}
}

func (s *DefaultDialogueService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 15 * time.Minute
}
