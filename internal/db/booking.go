package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingCollection implements BookingCollection for MongoDB.
type MongoBookingCollection struct {
	Collection *mongo.Collection
}

// InsertBooking inserts a booking record.
func (c *MongoBookingCollection) InsertBooking(ctx context.Context, booking models.Booking) (primitive.ObjectID, error) {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}

	res, err := c.Collection.InsertOne(ctx, booking)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// FindBookingByID finds a booking by its ID.
func (c *MongoBookingCollection) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID: %w", err)
	}

	var booking models.Booking
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// FindBookingsByUser lists a user's bookings, newest first.
func (c *MongoBookingCollection) FindBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindAllBookings lists every booking, newest first.
func (c *MongoBookingCollection) FindAllBookings(ctx context.Context) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindConflicting returns the non-cancelled bookings for a car whose closed
// date intervals overlap [start, end]. Two intervals [s,e] and [s',e']
// overlap iff s' <= e AND e' >= s.
func (c *MongoBookingCollection) FindConflicting(ctx context.Context, carID string, start, end time.Time) ([]models.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return nil, fmt.Errorf("invalid car ID: %w", err)
	}

	filter := bson.M{
		"car_id":     objectID,
		"status":     bson.M{"$ne": models.StatusCancelled},
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountNonCancelledByCar counts bookings still referencing a car.
func (c *MongoBookingCollection) CountNonCancelledByCar(ctx context.Context, carID string) (int64, error) {
	objectID, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return 0, fmt.Errorf("invalid car ID: %w", err)
	}

	return c.Collection.CountDocuments(ctx, bson.M{
		"car_id": objectID,
		"status": bson.M{"$ne": models.StatusCancelled},
	})
}

// UpdateBookingStatus sets the lifecycle status of a booking.
func (c *MongoBookingCollection) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid booking ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaid marks a booking paid and stores the redacted receipt in one write.
func (c *MongoBookingCollection) SetPaid(ctx context.Context, id string, receipt models.PaymentReceipt) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid booking ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"status":     models.StatusPaid,
			"receipt":    receipt,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindExpiredActive lists active bookings whose end date is before cutoff.
func (c *MongoBookingCollection) FindExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":   models.StatusActive,
		"end_date": bson.M{"$lt": cutoff},
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
