package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when an identifier does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// CarCollection defines the interface for catalog data operations.
type CarCollection interface {
	InsertCar(ctx context.Context, car models.Car) (primitive.ObjectID, error)
	FindCars(ctx context.Context, filter bson.M) ([]models.Car, error)
	FindCarByID(ctx context.Context, id string) (*models.Car, error)
	UpdateCar(ctx context.Context, id string, car models.Car) error
	SetAvailability(ctx context.Context, id string, available bool) error
	DeleteCar(ctx context.Context, id string) error
}

// UserCollection defines the interface for identity data operations.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) (primitive.ObjectID, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// BookingCollection defines the interface for booking record operations.
type BookingCollection interface {
	InsertBooking(ctx context.Context, booking models.Booking) (primitive.ObjectID, error)
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	FindBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	FindAllBookings(ctx context.Context) ([]models.Booking, error)
	// FindConflicting returns the non-cancelled bookings for a car whose
	// closed date intervals overlap [start, end].
	FindConflicting(ctx context.Context, carID string, start, end time.Time) ([]models.Booking, error)
	CountNonCancelledByCar(ctx context.Context, carID string) (int64, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	// SetPaid updates status and receipt in a single write.
	SetPaid(ctx context.Context, id string, receipt models.PaymentReceipt) error
	FindExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// LocationCollection defines the interface for pickup/dropoff locations.
type LocationCollection interface {
	InsertLocation(ctx context.Context, loc models.Location) (primitive.ObjectID, error)
	FindLocations(ctx context.Context) ([]models.Location, error)
}
