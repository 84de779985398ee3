package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Location is a pickup or dropoff point referenced by bookings.
type Location struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Address string             `bson:"address" json:"address"`
	City    string             `bson:"city" json:"city"`
}
