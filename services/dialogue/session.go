package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"convosched/models"
	"convosched/services/scheduling"
	"convosched/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const calendarUnavailableText = "I can't reach your calendar right now, so scheduling info is temporarily unavailable. Let's try again in a moment."

// StartSession creates a new session and, when initial text is supplied,
// processes it as the first turn.
func (s *DefaultDialogueService) StartSession(ctx context.Context, initialText string) (*models.TurnResponse, error) {
	session := &models.DialogueSession{
		SessionID:      uuid.New().String(),
		State:          models.StateCollecting,
		RequiredFields: s.requiredFields(),
		Collected:      models.ConstraintSet{Preferences: s.DefaultPrefs},
		RetryCounts:    make(map[string]int),
		UpdatedAt:      s.now(),
	}

	var resp *models.TurnResponse
	if strings.TrimSpace(initialText) != "" {
		resp = s.processTurn(ctx, session, initialText)
	} else {
		resp = s.askNext(session, "Hi! I can find and book a time for you. ")
		s.recordAssistantTurn(session, resp.SpeakText)
	}

	if err := s.persist(ctx, session, 0); err != nil {
		return nil, err
	}
	resp.SessionID = session.SessionID
	return resp, nil
}

// SubmitTurn processes one user utterance for an existing session. Turns for
// the same session are strictly serialised; concurrent turns queue FIFO.
func (s *DefaultDialogueService) SubmitTurn(ctx context.Context, sessionID, text string) (*models.TurnResponse, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.Store.Get(ctx, sessionID)
	if err == ErrSessionNotFound {
		// Partial data is intentionally discarded; the caller must start fresh.
		return nil, scheduling.NewSessionExpiredError(fmt.Sprintf("session %s has expired", sessionID))
	}
	if err != nil {
		return nil, err
	}

	auditFrom := len(session.Turns)
	resp := s.processTurn(ctx, session, text)
	if err := s.persist(ctx, session, auditFrom); err != nil {
		return nil, err
	}
	resp.SessionID = session.SessionID
	return resp, nil
}

// GetSessionSummary returns the live session when present, falling back to
// the audit transcript for evicted or finished sessions.
func (s *DefaultDialogueService) GetSessionSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err == nil {
		return &models.SessionSummary{
			SessionID: session.SessionID,
			State:     session.State,
			Collected: session.Collected,
			Turns:     session.Turns,
		}, nil
	}
	if err == ErrSessionNotFound && s.Audit != nil {
		summary, auditErr := s.Audit.GetTranscript(ctx, sessionID)
		if auditErr == nil && summary != nil {
			return summary, nil
		}
	}
	if err == ErrSessionNotFound {
		return nil, scheduling.NewSessionExpiredError(fmt.Sprintf("session %s has expired", sessionID))
	}
	return nil, err
}

// processTurn runs the per-utterance transition algorithm. It mutates the
// session in place and returns the front-end response; persistence is the
// caller's job.
func (s *DefaultDialogueService) processTurn(ctx context.Context, session *models.DialogueSession, text string) *models.TurnResponse {
	now := s.now()

	// Terminal sessions answer with an "already finished" indicator; the
	// utterance is still recorded under the same id for audit.
	if session.State.Terminal() {
		s.appendTurn(session, "user", text, nil)
		resp := &models.TurnResponse{
			State:    session.State,
			Finished: true,
		}
		if session.State == models.StateCommitted {
			resp.SpeakText = fmt.Sprintf("This request is already booked (booking %s). Start a new session to schedule something else.", session.BookingID)
		} else {
			resp.SpeakText = "This request was cancelled. Start a new session to schedule something else."
		}
		s.recordAssistantTurn(session, resp.SpeakText)
		return resp
	}

	delta := s.Extractor.Extract(text, now)
	correction := s.Corrections.IsCorrection(text) && s.touchesCollected(session, delta)
	s.appendTurn(session, "user", text, delta.Fields())

	var resp *models.TurnResponse
	switch {
	case correction:
		resp = s.handleCorrection(ctx, session, delta)
	case session.State == models.StateCollecting:
		resp = s.handleCollecting(ctx, session, delta)
	default:
		resp = s.handleReviewing(ctx, session, text, delta)
	}

	s.recordAssistantTurn(session, resp.SpeakText)
	return resp
}

// handleCorrection overwrites only the fields the utterance newly supplies;
// fields it does not mention are never cleared. The state does not advance.
func (s *DefaultDialogueService) handleCorrection(ctx context.Context, session *models.DialogueSession, delta models.ConstraintDelta) *models.TurnResponse {
	delta.Apply(&session.Collected)

	resp := &models.TurnResponse{State: session.State, IsCorrection: true}
	if session.State == models.StateReviewing {
		if err := s.refreshCandidates(ctx, session); err != nil {
			resp.SpeakText = calendarUnavailableText
			return resp
		}
		resp.Candidates = session.LastCandidates
		resp.SpeakText = "Got it. " + s.reviewPrompt(session)
		return resp
	}

	if missing := session.MissingFields(); len(missing) > 0 {
		next := s.askNext(session, "Got it. ")
		resp.SpeakText = next.SpeakText
		resp.MissingField = next.MissingField
		return resp
	}
	resp.SpeakText = "Got it, I've updated that. Shall I look for times now?"
	return resp
}

// handleCollecting merges the delta and either asks for the next missing
// field or transitions to review.
func (s *DefaultDialogueService) handleCollecting(ctx context.Context, session *models.DialogueSession, delta models.ConstraintDelta) *models.TurnResponse {
	delta.Apply(&session.Collected)

	if missing := session.MissingFields(); len(missing) > 0 {
		return s.askNext(session, "")
	}
	return s.enterReview(ctx, session)
}

// handleReviewing classifies the utterance as confirm, cancel, or an
// implicit correction.
func (s *DefaultDialogueService) handleReviewing(ctx context.Context, session *models.DialogueSession, text string, delta models.ConstraintDelta) *models.TurnResponse {
	if delta.Empty() {
		if isConfirmation(text) {
			return s.commit(ctx, session)
		}
		if isCancellation(text) {
			session.State = models.StateCancelled
			session.PendingField = ""
			return &models.TurnResponse{
				State:     models.StateCancelled,
				SpeakText: "Okay, I've cancelled this scheduling request. Nothing was booked.",
			}
		}
		// No usable delta and no decision: re-ask rather than propagate.
		return &models.TurnResponse{
			State:     models.StateReviewing,
			SpeakText: "Sorry, I didn't catch that. " + s.reviewPrompt(session),
		}
	}

	// Constraint-changing utterance: implicit correction, re-entering
	// REVIEWING with updated candidates (or COLLECTING if a required field
	// is now missing, a deliberately narrow path).
	isCorrection := s.touchesCollected(session, delta)
	delta.Apply(&session.Collected)

	if missing := session.MissingFields(); len(missing) > 0 {
		session.State = models.StateCollecting
		session.LastCandidates = nil
		next := s.askNext(session, "")
		next.IsCorrection = isCorrection
		return next
	}

	resp := &models.TurnResponse{State: models.StateReviewing, IsCorrection: isCorrection}
	if err := s.refreshCandidates(ctx, session); err != nil {
		resp.SpeakText = calendarUnavailableText
		return resp
	}
	resp.Candidates = session.LastCandidates
	resp.SpeakText = "Updated. " + s.reviewPrompt(session)
	return resp
}

// commit books the current top candidate. Conflicts return the session to
// review with fresh candidates; an existing booking is never overwritten.
func (s *DefaultDialogueService) commit(ctx context.Context, session *models.DialogueSession) *models.TurnResponse {
	logger := utils.GetLogger()

	if len(session.LastCandidates) == 0 {
		if err := s.refreshCandidates(ctx, session); err != nil {
			return &models.TurnResponse{State: session.State, SpeakText: calendarUnavailableText}
		}
		if len(session.LastCandidates) == 0 {
			return &models.TurnResponse{
				State:     session.State,
				SpeakText: "I couldn't find any open time matching your constraints. Try widening the window or shortening the duration.",
			}
		}
	}

	top := session.LastCandidates[0]
	bookingID, err := s.Sink.Commit(ctx, top, session.Collected, session.SessionID)
	if err != nil {
		if scheduling.HasCode(err, scheduling.CodeBookingConflict) {
			logger.Warn("booking conflict on commit, refreshing candidates",
				zap.String("sessionID", session.SessionID), zap.Error(err))
			if refreshErr := s.refreshCandidates(ctx, session); refreshErr != nil {
				return &models.TurnResponse{State: models.StateReviewing, SpeakText: calendarUnavailableText}
			}
			resp := &models.TurnResponse{State: models.StateReviewing, Candidates: session.LastCandidates}
			if len(session.LastCandidates) > 0 {
				resp.SpeakText = fmt.Sprintf("That time was just taken. %s", s.reviewPrompt(session))
			} else {
				resp.SpeakText = "That time was just taken and I couldn't find another opening. Try different constraints."
			}
			return resp
		}
		logger.Error("booking sink failed", zap.String("sessionID", session.SessionID), zap.Error(err))
		return &models.TurnResponse{
			State:     models.StateReviewing,
			SpeakText: "Something went wrong while booking. The time has not been reserved; shall I try again?",
		}
	}

	session.BookingID = bookingID
	session.State = models.StateCommitted
	session.PendingField = ""
	return &models.TurnResponse{
		State:     models.StateCommitted,
		SpeakText: fmt.Sprintf("Done! Booked %s (booking %s).", top.Slot.Label(), bookingID),
	}
}

// enterReview computes ranked candidates and, when at least one exists,
// transitions to REVIEWING with a confirmation prompt naming the top one.
// A calendar failure leaves the session as it was.
func (s *DefaultDialogueService) enterReview(ctx context.Context, session *models.DialogueSession) *models.TurnResponse {
	if err := s.refreshCandidates(ctx, session); err != nil {
		return &models.TurnResponse{State: session.State, SpeakText: calendarUnavailableText}
	}
	if len(session.LastCandidates) == 0 {
		return &models.TurnResponse{
			State:     session.State,
			SpeakText: "I couldn't find any open time matching your constraints. Try widening the window or shortening the duration.",
		}
	}
	session.State = models.StateReviewing
	session.PendingField = ""
	return &models.TurnResponse{
		State:      models.StateReviewing,
		Candidates: session.LastCandidates,
		SpeakText:  s.reviewPrompt(session),
	}
}

// refreshCandidates recomputes the candidate list for the current
// constraints. Candidates are request-scoped and never persisted beyond the
// session; they are recomputed on every entry into review.
func (s *DefaultDialogueService) refreshCandidates(ctx context.Context, session *models.DialogueSession) error {
	cs := session.Collected
	cs.Preferences = s.effectivePrefs(session)

	windowStart, windowEnd := s.searchWindow(cs)
	candidates, err := s.Engine.RankedCandidates(ctx, cs, windowStart, windowEnd)
	if err != nil {
		utils.GetLogger().Warn("candidate computation failed",
			zap.String("sessionID", session.SessionID), zap.Error(err))
		return err
	}
	session.LastCandidates = candidates
	return nil
}

// searchWindow derives the concrete search window from the constraints: an
// explicit date pins a single day, otherwise the window spans N days from now.
func (s *DefaultDialogueService) searchWindow(cs models.ConstraintSet) (time.Time, time.Time) {
	now := s.now()
	if cs.Date != "" {
		if day, err := time.ParseInLocation("2006-01-02", cs.Date, now.Location()); err == nil {
			start := day
			if start.Before(now) && day.AddDate(0, 0, 1).After(now) {
				start = now
			}
			return start, day.AddDate(0, 0, 1)
		}
	}
	days := cs.SearchWindowDays
	if days <= 0 && cs.Recurrence != nil && cs.Recurrence.HorizonDays > 0 {
		days = cs.Recurrence.HorizonDays
	}
	if days <= 0 {
		days = 7
	}
	return now, now.AddDate(0, 0, days)
}

// effectivePrefs fills defaults and turns a requested clock time into a
// prefer window so "at 2pm" pulls candidates toward that hour.
func (s *DefaultDialogueService) effectivePrefs(session *models.DialogueSession) models.Preferences {
	prefs := session.Collected.Preferences
	if prefs.EarliestMinute == 0 && s.DefaultPrefs.EarliestMinute != 0 {
		prefs.EarliestMinute = s.DefaultPrefs.EarliestMinute
	}
	if prefs.LatestMinute == 0 && s.DefaultPrefs.LatestMinute != 0 {
		prefs.LatestMinute = s.DefaultPrefs.LatestMinute
	}
	if prefs.MinGapMinutes == 0 {
		prefs.MinGapMinutes = s.DefaultPrefs.MinGapMinutes
	}
	if t := session.Collected.TimeOfDayMinute; t != nil {
		span := session.Collected.DurationMinutes
		if span < 60 {
			span = 60
		}
		prefs.Prefer = append(prefs.Prefer, models.HourWindow{StartMinute: *t, EndMinute: *t + span})
	}
	return prefs
}

// askNext picks the highest-priority missing field, counts the retry, and
// emits a clarifying question. After three failed retries for the same field
// the user is asked to restate the whole request instead.
func (s *DefaultDialogueService) askNext(session *models.DialogueSession, prefix string) *models.TurnResponse {
	missing := session.MissingFields()
	if len(missing) == 0 {
		return &models.TurnResponse{State: session.State, SpeakText: prefix + "I have everything I need."}
	}
	field := missing[0]
	session.PendingField = field
	if session.RetryCounts == nil {
		session.RetryCounts = make(map[string]int)
	}
	session.RetryCounts[field]++

	if session.RetryCounts[field] > 3 {
		return &models.TurnResponse{
			State:        session.State,
			MissingField: field,
			SpeakText:    "I'm still not getting it. Could you restate the whole request in one sentence, including what, when, and for how long?",
		}
	}
	return &models.TurnResponse{
		State:        session.State,
		MissingField: field,
		SpeakText:    prefix + questionFor(field),
	}
}

func (s *DefaultDialogueService) reviewPrompt(session *models.DialogueSession) string {
	if len(session.LastCandidates) == 0 {
		return "I have no candidate times at the moment."
	}
	top := session.LastCandidates[0]
	prompt := fmt.Sprintf("The best option is %s", top.Slot.Label())
	if top.Reason != "" {
		prompt += ". " + top.Reason
	}
	if len(session.LastCandidates) > 1 {
		prompt += fmt.Sprintf(" I have %d more if that doesn't work.", len(session.LastCandidates)-1)
	}
	return prompt + " Shall I book it?"
}

// touchesCollected reports whether the delta overwrites at least one field
// that already holds a value. A "correction" with no prior value to correct
// is just new information.
func (s *DefaultDialogueService) touchesCollected(session *models.DialogueSession, delta models.ConstraintDelta) bool {
	for _, f := range delta.Fields() {
		if session.Collected.Has(f) {
			return true
		}
	}
	return false
}

func (s *DefaultDialogueService) appendTurn(session *models.DialogueSession, speaker, text string, fields []string) {
	session.Turns = append(session.Turns, models.DialogueTurn{
		TurnNumber: len(session.Turns) + 1,
		Speaker:    speaker,
		Text:       text,
		Timestamp:  s.now(),
		Fields:     fields,
	})
	session.UpdatedAt = s.now()
}

func (s *DefaultDialogueService) recordAssistantTurn(session *models.DialogueSession, text string) {
	s.appendTurn(session, "assistant", text, nil)
}

// persist saves the session, records new turns in the audit transcript, and
// re-arms the idle-expiry sweep. Audit and expiry failures are logged, never
// surfaced: the session store remains the source of truth for liveness.
func (s *DefaultDialogueService) persist(ctx context.Context, session *models.DialogueSession, auditFrom int) error {
	logger := utils.GetLogger()

	if err := s.Store.Put(ctx, session); err != nil {
		return fmt.Errorf("failed to store dialogue session: %w", err)
	}
	if s.Audit != nil {
		for _, turn := range session.Turns[auditFrom:] {
			if err := s.Audit.RecordTurn(ctx, session.SessionID, session.State, turn); err != nil {
				logger.Warn("audit turn record failed", zap.String("sessionID", session.SessionID), zap.Error(err))
				break
			}
		}
	}
	if s.Expiry != nil {
		if err := s.Expiry.ScheduleExpiry(session.SessionID, len(session.Turns), s.sessionTTL()+30*time.Second); err != nil {
			logger.Warn("expiry scheduling failed", zap.String("sessionID", session.SessionID), zap.Error(err))
		}
	}
	return nil
}

func questionFor(field string) string {
	switch field {
	case models.FieldDuration:
		return "How long should it be?"
	case models.FieldWindow:
		return "When should I look? Today, this week, or next week?"
	case models.FieldDate:
		return "What day works for you?"
	case models.FieldTime:
		return "What time of day suits you?"
	case models.FieldTitle:
		return "What should I call this booking?"
	}
	return fmt.Sprintf("Could you tell me the %s?", field)
}

var confirmPhrases = []string{"yes", "yeah", "yep", "confirm", "sounds good", "that works", "book it", "go ahead", "perfect"}

var cancelPhrases = []string{"no", "nope", "cancel", "never mind", "nevermind", "forget it", "stop"}

func isConfirmation(text string) bool {
	return matchesPhrase(text, confirmPhrases)
}

func isCancellation(text string) bool {
	return matchesPhrase(text, cancelPhrases)
}

// matchesPhrase does whole-word matching so "no" does not fire inside "now".
func matchesPhrase(text string, phrases []string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.Trim(cleaned, ".!?,")
	words := strings.Fields(cleaned)
	for _, phrase := range phrases {
		if strings.Contains(phrase, " ") {
			if strings.Contains(cleaned, phrase) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.Trim(w, ".!?,") == phrase {
				return true
			}
		}
	}
	return false
}
