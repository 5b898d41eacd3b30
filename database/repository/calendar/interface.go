package calendarRepo

import (
	"convosched/database"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCalendarRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarRepo returns a CalendarSnapshotProvider backed by the
// busy_intervals collection. It satisfies scheduling.CalendarSnapshotProvider.
func NewMongoCalendarRepo() *mongoCalendarRepo {
	db := database.MongoClient.Database("convosched")
	return &mongoCalendarRepo{
		coll: db.Collection("busy_intervals"),
	}
}
