package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/car-rental/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCarNotFound          = errors.New("car not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAlreadyPaid          = errors.New("booking already paid")
	ErrInvalidCardFormat    = errors.New("invalid card details")
	ErrInvalidUpiFormat     = errors.New("invalid UPI id")
	ErrInvalidPaymentMethod = errors.New("payment method must be card or upi")
	ErrCarHasBookings       = errors.New("car has non-cancelled bookings")
)

// MissingFieldsError lists every required field absent from a request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidIdentifierError reports a field that does not parse to a valid
// identifier.
type InvalidIdentifierError struct {
	Field string
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// InvalidDateError reports a field that does not parse to a calendar date.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid %s: %q, expected YYYY-MM-DD", e.Field, e.Value)
}

// PastStartDateError rejects bookings starting before today.
type PastStartDateError struct {
	Start time.Time
	Today time.Time
}

func (e *PastStartDateError) Error() string {
	return fmt.Sprintf("start date %s cannot be in the past (today is %s)",
		e.Start.Format("2006-01-02"), e.Today.Format("2006-01-02"))
}

// InvalidRangeError rejects ranges whose end is not after the start.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("end date %s must be after start date %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

// ConflictError carries the bookings colliding with a requested interval so
// callers can suggest alternatives.
type ConflictError struct {
	Conflicts []models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("car is not available for the selected dates (%d conflicting bookings)", len(e.Conflicts))
}

// TransitionError reports an illegal lifecycle state change.
type TransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

// MissingPaymentFieldsError lists the payment fields absent from a request.
type MissingPaymentFieldsError struct {
	Fields []string
}

func (e *MissingPaymentFieldsError) Error() string {
	return "missing payment fields: " + strings.Join(e.Fields, ", ")
}

// StorageError wraps an underlying persistence failure. The engine never
// retries; callers own retry policy.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
