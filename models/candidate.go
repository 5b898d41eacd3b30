package models

// Candidate is a free sub-interval exactly matching the requested duration,
// carrying a preference score and an optional human-readable reason.
type Candidate struct {
	Slot          FreeSlot `json:"slot"`
	Score         float64  `json:"score"`
	Reason        string   `json:"reason,omitempty"`
	BufferMinutes int      `json:"bufferMinutes"` // gap to the nearest merged busy interval
}
