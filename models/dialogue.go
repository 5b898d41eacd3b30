package models

import "time"

// DialogueState is the lifecycle state of a scheduling conversation.
type DialogueState string

const (
	StateCollecting DialogueState = "COLLECTING"
	StateReviewing  DialogueState = "REVIEWING"
	StateCommitted  DialogueState = "COMMITTED"
	StateCancelled  DialogueState = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s DialogueState) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// DialogueTurn is one utterance in a session. Turns are append-only: once
// recorded they are never mutated or deleted.
type DialogueTurn struct {
	TurnNumber int       `bson:"turnNumber" json:"turnNumber"`
	Speaker    string    `bson:"speaker" json:"speaker"` // "user" or "assistant"
	Text       string    `bson:"text" json:"text"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Fields     []string  `bson:"fields,omitempty" json:"extractedFields,omitempty"`
}

// DialogueSession holds the full conversational state for one scheduling
// request. It lives in the session store until COMMITTED, CANCELLED, or
// idle-timeout eviction.
type DialogueSession struct {
	SessionID      string         `json:"sessionId"`
	State          DialogueState  `json:"state"`
	RequiredFields []string       `json:"requiredFields"`
	Collected      ConstraintSet  `json:"collectedFields"`
	PendingField   string         `json:"pendingField,omitempty"`
	Turns          []DialogueTurn `json:"turns"`
	LastCandidates []Candidate    `json:"lastCandidates,omitempty"`
	RetryCounts    map[string]int `json:"retryCounts,omitempty"`
	BookingID      string         `json:"bookingId,omitempty"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// MissingFields returns the required fields not yet collected, in
// clarification priority order.
func (s *DialogueSession) MissingFields() []string {
	required := make(map[string]bool, len(s.RequiredFields))
	for _, f := range s.RequiredFields {
		required[f] = true
	}
	var missing []string
	for _, f := range FieldPriority {
		if required[f] && !s.Collected.Has(f) {
			missing = append(missing, f)
		}
	}
	// Required fields outside the priority list keep their declared order.
	for _, f := range s.RequiredFields {
		if !contains(FieldPriority, f) && !s.Collected.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// TurnResponse is what the engine returns to a voice/text front end for a
// single processed turn.
type TurnResponse struct {
	SessionID    string        `json:"sessionId"`
	State        DialogueState `json:"state"`
	SpeakText    string        `json:"speakText"`
	MissingField string        `json:"missingField,omitempty"`
	Candidates   []Candidate   `json:"candidates,omitempty"`
	IsCorrection bool          `json:"isCorrection"`
	Finished     bool          `json:"finished,omitempty"` // set when the session had already ended
}

// SessionSummary is the audit view of a session.
type SessionSummary struct {
	SessionID string         `json:"sessionId"`
	State     DialogueState  `json:"state"`
	Collected ConstraintSet  `json:"collectedFields"`
	Turns     []DialogueTurn `json:"turns"`
}
