package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusPaid      BookingStatus = "paid"
	StatusCompleted BookingStatus = "completed"
)

// statusTransitions lists the reachable targets per state. Terminal states
// (rejected, cancelled, paid, completed) have no entry.
var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusActive, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled, StatusPaid},
	StatusActive:    {StatusCancelled, StatusPaid, StatusCompleted},
}

// IsValidStatus checks if a status is one of the known lifecycle states.
func IsValidStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusRejected,
		StatusCancelled, StatusPaid, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine allows moving from s to
// target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this state.
func (s BookingStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Booking represents a time-bounded reservation of a car by a user.
type Booking struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"user_id" json:"user_id"`
	CarID               primitive.ObjectID `bson:"car_id" json:"car_id"`
	StartDate           time.Time          `bson:"start_date" json:"start_date"`
	EndDate             time.Time          `bson:"end_date" json:"end_date"`
	Status              BookingStatus      `bson:"status" json:"status"`
	TotalAmount         float64            `bson:"total_amount" json:"total_amount"`
	PickupLocationID    string             `bson:"pickup_location_id,omitempty" json:"pickup_location_id,omitempty"`
	DropoffLocationID   string             `bson:"dropoff_location_id,omitempty" json:"dropoff_location_id,omitempty"`
	DriverLicenseNumber string             `bson:"driver_license_number,omitempty" json:"driver_license_number,omitempty"`
	Receipt             *PaymentReceipt    `bson:"receipt,omitempty" json:"receipt,omitempty"`
	Car                 *CarSummary        `bson:"-" json:"car,omitempty"`
	User                *UserSummary       `bson:"-" json:"user,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the booking's closed date interval intersects
// [start, end]. Touching boundaries count as overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !start.After(b.EndDate) && !end.Before(b.StartDate)
}

// CreateBookingRequest is the input schema for booking creation.
type CreateBookingRequest struct {
	UserID              string `json:"user_id"`
	CarID               string `json:"car_id"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	PickupLocationID    string `json:"pickup_location_id,omitempty"`
	DropoffLocationID   string `json:"dropoff_location_id,omitempty"`
	DriverLicenseNumber string `json:"driver_license_number,omitempty"`
}

// UpdateStatusRequest is the input schema for admin status changes.
type UpdateStatusRequest struct {
	Status BookingStatus `json:"status"`
}

// DashboardData is the per-user summary computed on read.
type DashboardData struct {
	TotalBookings  int             `json:"totalBookings"`
	ActiveBookings int             `json:"activeBookings"`
	CurrentBooking *Booking        `json:"currentBooking"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
}

// ActivityEntry is one line of recent dashboard activity.
type ActivityEntry struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ActivityDescription renders the short dashboard line for a booking, e.g.
// "Pending booking for Toyota Camry".
func (b *Booking) ActivityDescription() string {
	status := string(b.Status)
	if status != "" {
		status = string(status[0]-'a'+'A') + status[1:]
	}
	carName := "a car"
	if b.Car != nil {
		carName = fmt.Sprintf("%s %s", b.Car.Brand, b.Car.Model)
	}
	return fmt.Sprintf("%s booking for %s", status, carName)
}
