package models

import "time"

// Booking is the committed record produced by the booking sink once a
// reviewed candidate is confirmed.
type Booking struct {
	ID        string    `bson:"id" json:"id"`
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Title     string    `bson:"title,omitempty" json:"title,omitempty"`
	Start     time.Time `bson:"start" json:"start"`
	End       time.Time `bson:"end" json:"end"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
