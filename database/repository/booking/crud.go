package bookingRepo

import (
	"context"
	"time"

	"convosched/models"
	"convosched/services/scheduling"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Commit reserves the candidate's time range. A slot taken between review
// and commit is reported as a bookingConflict; an existing booking is never
// overwritten.
func (r *mongoBookingRepo) Commit(ctx context.Context, candidate models.Candidate, cs models.ConstraintSet, sessionID string) (string, error) {
	overlap := bson.M{
		"start": bson.M{"$lt": candidate.Slot.End},
		"end":   bson.M{"$gt": candidate.Slot.Start},
	}
	count, err := r.coll.CountDocuments(ctx, overlap)
	if err != nil {
		return "", scheduling.NewBookingFailedError(err.Error())
	}
	if count > 0 {
		return "", scheduling.NewBookingConflictError("the selected time range is already booked")
	}

	booking := models.Booking{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Title:     cs.Title,
		Start:     candidate.Slot.Start,
		End:       candidate.Slot.End,
		CreatedAt: time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return "", scheduling.NewBookingFailedError(err.Error())
	}
	return booking.ID, nil
}
