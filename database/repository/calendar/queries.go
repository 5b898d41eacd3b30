package calendarRepo

import (
	"context"
	"time"

	"convosched/models"

	"go.mongodb.org/mongo-driver/bson"
)

// FetchBusyIntervals returns every stored busy interval overlapping the
// search window. Errors (including a deadline hit) propagate to the caller,
// which converts them to calendarUnavailable; they are never read as an
// empty calendar.
func (r *mongoCalendarRepo) FetchBusyIntervals(ctx context.Context, windowStart, windowEnd time.Time) ([]models.BusyInterval, error) {
	filter := bson.M{
		"start": bson.M{"$lt": windowEnd},
		"end":   bson.M{"$gt": windowStart},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var intervals []models.BusyInterval
	if err := cursor.All(ctx, &intervals); err != nil {
		return nil, err
	}
	return intervals, nil
}
