package bookingRepo

import (
	"convosched/database"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingSink backed by the bookings
// collection. It satisfies scheduling.BookingSink.
func NewMongoBookingRepo() *mongoBookingRepo {
	db := database.MongoClient.Database("convosched")
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
