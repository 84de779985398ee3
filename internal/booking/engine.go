package booking

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
	"github.com/ukydev/car-rental/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

var (
	cardNumberRx = regexp.MustCompile(`^\d{13,19}$`)
	cardExpiryRx = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cardCVCRx    = regexp.MustCompile(`^\d{3,4}$`)
	upiRx        = regexp.MustCompile(`^[A-Za-z0-9._-]{2,}@[A-Za-z]{2,}$`)
)

// Config tunes engine behavior.
type Config struct {
	// RestoreAvailabilityOnCancel flips the car back to available when an
	// accepted booking is cancelled or completed.
	RestoreAvailabilityOnCancel bool
	// Notifier receives booking lifecycle events; nil disables publishing.
	Notifier notify.Publisher
	// Now overrides the clock, used by tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine owns the booking lifecycle: creation with conflict detection,
// status transitions, pricing and payment marking.
type Engine struct {
	cars     db.CarCollection
	users    db.UserCollection
	bookings db.BookingCollection

	notifier            notify.Publisher
	restoreAvailability bool
	now                 func() time.Time
	locks               *carLocks
}

// NewEngine creates a booking engine over the given stores.
func NewEngine(cars db.CarCollection, users db.UserCollection, bookings db.BookingCollection, cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cars:                cars,
		users:               users,
		bookings:            bookings,
		notifier:            cfg.Notifier,
		restoreAvailability: cfg.RestoreAvailabilityOnCancel,
		now:                 now,
		locks:               newCarLocks(),
	}
}

// truncateToDay drops the time component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// chargeableDays is the number of billed days for a range: ceil of the span
// in days, at least 1.
func chargeableDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// CreateBooking validates the request, checks date conflicts for the car and
// persists a pending booking. Preconditions are checked in a fixed order so
// error responses are reproducible. The conflict check and the insert run
// under a per-car lock.
func (e *Engine) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	var missing []string
	if req.UserID == "" {
		missing = append(missing, "user_id")
	}
	if req.CarID == "" {
		missing = append(missing, "car_id")
	}
	if req.StartDate == "" {
		missing = append(missing, "start_date")
	}
	if req.EndDate == "" {
		missing = append(missing, "end_date")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return nil, &InvalidIdentifierError{Field: "user_id", Value: req.UserID}
	}
	carID, err := primitive.ObjectIDFromHex(req.CarID)
	if err != nil {
		return nil, &InvalidIdentifierError{Field: "car_id", Value: req.CarID}
	}

	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, &InvalidDateError{Field: "start_date", Value: req.StartDate}
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, &InvalidDateError{Field: "end_date", Value: req.EndDate}
	}

	today := truncateToDay(e.now().UTC())
	if start.Before(today) {
		return nil, &PastStartDateError{Start: start, Today: today}
	}
	if !end.After(start) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	if _, err := e.users.FindUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &StorageError{Op: "find user", Err: err}
	}

	car, err := e.cars.FindCarByID(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, &StorageError{Op: "find car", Err: err}
	}

	unlock := e.locks.lock(req.CarID)
	defer unlock()

	conflicts, err := e.bookings.FindConflicting(ctx, req.CarID, start, end)
	if err != nil {
		return nil, &StorageError{Op: "conflict check", Err: err}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	total := car.Price * float64(chargeableDays(start, end))

	booking := models.Booking{
		UserID:              userID,
		CarID:               carID,
		StartDate:           start,
		EndDate:             end,
		Status:              models.StatusPending,
		TotalAmount:         total,
		PickupLocationID:    req.PickupLocationID,
		DropoffLocationID:   req.DropoffLocationID,
		DriverLicenseNumber: strings.TrimSpace(req.DriverLicenseNumber),
		CreatedAt:           e.now(),
		UpdatedAt:           e.now(),
	}
	id, err := e.bookings.InsertBooking(ctx, booking)
	if err != nil {
		return nil, &StorageError{Op: "insert booking", Err: err}
	}
	booking.ID = id
	booking.Car = car.Summary()

	log.WithFields(log.Fields{
		"booking_id":   id.Hex(),
		"car_id":       req.CarID,
		"user_id":      req.UserID,
		"total_amount": total,
	}).Info("Booking created")
	e.publish("booking.created", &booking)

	return &booking, nil
}

// GetBooking returns a booking with its car summary attached.
func (e *Engine) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := e.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	e.attachCar(ctx, booking)
	return booking, nil
}

// ListByUser returns a user's bookings, newest first, with car summaries.
func (e *Engine) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		return nil, &InvalidIdentifierError{Field: "user_id", Value: userID}
	}

	bookings, err := e.bookings.FindBookingsByUser(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list bookings", Err: err}
	}
	e.attachSummaries(ctx, bookings, false)
	return bookings, nil
}

// ListAll returns every booking with user and car summaries, newest first.
func (e *Engine) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings, err := e.bookings.FindAllBookings(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list bookings", Err: err}
	}
	e.attachSummaries(ctx, bookings, true)
	return bookings, nil
}

// UpdateStatus moves a booking through the lifecycle state machine. Accepting
// marks the car unavailable; cancelling or completing an accepted booking
// restores availability when the engine is configured to do so.
func (e *Engine) UpdateStatus(ctx context.Context, id string, target models.BookingStatus) (*models.Booking, error) {
	booking, err := e.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.IsValidStatus(target) || !booking.Status.CanTransitionTo(target) {
		return nil, &TransitionError{From: booking.Status, To: target}
	}

	if err := e.bookings.UpdateBookingStatus(ctx, id, target); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, &StorageError{Op: "update status", Err: err}
	}

	carID := booking.CarID.Hex()
	switch {
	case target == models.StatusActive:
		if err := e.cars.SetAvailability(ctx, carID, false); err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, &StorageError{Op: "set car availability", Err: err}
		}
	case target == models.StatusCancelled || target == models.StatusCompleted:
		wasAccepted := booking.Status == models.StatusActive || booking.Status == models.StatusConfirmed
		if e.restoreAvailability && wasAccepted {
			if err := e.cars.SetAvailability(ctx, carID, true); err != nil && !errors.Is(err, db.ErrNotFound) {
				return nil, &StorageError{Op: "set car availability", Err: err}
			}
		}
	}

	log.WithFields(log.Fields{
		"booking_id": id,
		"from":       booking.Status,
		"to":         target,
	}).Info("Booking status updated")

	booking.Status = target
	booking.UpdatedAt = e.now()
	e.attachCar(ctx, booking)
	e.publish("booking."+string(target), booking)
	return booking, nil
}

// AcceptBooking is the admin approval: pending booking becomes active and the
// car is marked unavailable.
func (e *Engine) AcceptBooking(ctx context.Context, id string) (*models.Booking, error) {
	return e.UpdateStatus(ctx, id, models.StatusActive)
}

// RejectBooking is the admin rejection of a pending booking.
func (e *Engine) RejectBooking(ctx context.Context, id string) (*models.Booking, error) {
	return e.UpdateStatus(ctx, id, models.StatusRejected)
}

// CancelBooking cancels a pending or accepted booking.
func (e *Engine) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	return e.UpdateStatus(ctx, id, models.StatusCancelled)
}

// PayBooking validates the payment request, marks the booking paid and stores
// a redacted receipt. The full card number and CVC are never persisted.
func (e *Engine) PayBooking(ctx context.Context, id string, req models.PaymentRequest) (*models.Booking, error) {
	booking, err := e.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.StatusPaid {
		return nil, ErrAlreadyPaid
	}
	if !booking.Status.CanTransitionTo(models.StatusPaid) {
		return nil, &TransitionError{From: booking.Status, To: models.StatusPaid}
	}

	var missing []string
	if req.Method == "" {
		missing = append(missing, "method")
	}
	if req.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if req.Method != "" && !models.IsValidPaymentMethod(req.Method) {
		return nil, ErrInvalidPaymentMethod
	}
	switch req.Method {
	case models.PaymentCard:
		if strings.TrimSpace(req.CardNumber) == "" {
			missing = append(missing, "cardNumber")
		}
		if req.Expiry == "" {
			missing = append(missing, "expiry")
		}
		if req.CVC == "" {
			missing = append(missing, "cvc")
		}
	case models.PaymentUPI:
		if req.UpiID == "" {
			missing = append(missing, "upiId")
		}
	}
	if len(missing) > 0 {
		return nil, &MissingPaymentFieldsError{Fields: missing}
	}

	receipt := models.PaymentReceipt{
		ReceiptID: uuid.NewString(),
		Method:    req.Method,
		Amount:    req.Amount,
		PaidAt:    e.now(),
	}
	switch req.Method {
	case models.PaymentCard:
		digits := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
		if !cardNumberRx.MatchString(digits) || !cardExpiryRx.MatchString(req.Expiry) || !cardCVCRx.MatchString(req.CVC) {
			return nil, ErrInvalidCardFormat
		}
		receipt.CardNumber = models.MaskCardNumber(digits)
		receipt.Expiry = req.Expiry
	case models.PaymentUPI:
		if !upiRx.MatchString(req.UpiID) {
			return nil, ErrInvalidUpiFormat
		}
		receipt.UpiID = req.UpiID
	}

	if err := e.bookings.SetPaid(ctx, id, receipt); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, &StorageError{Op: "mark paid", Err: err}
	}

	log.WithFields(log.Fields{
		"booking_id": id,
		"method":     req.Method,
		"amount":     req.Amount,
		"receipt_id": receipt.ReceiptID,
	}).Info("Booking paid")

	booking.Status = models.StatusPaid
	booking.Receipt = &receipt
	booking.UpdatedAt = e.now()
	e.attachCar(ctx, booking)
	e.publish("booking.paid", booking)
	return booking, nil
}

// Dashboard computes the per-user summary on read: totals, the current
// accepted booking and the five most recent activity lines.
func (e *Engine) Dashboard(ctx context.Context, userID string) (*models.DashboardData, error) {
	bookings, err := e.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	data := &models.DashboardData{
		TotalBookings:  len(bookings),
		RecentActivity: []models.ActivityEntry{},
	}

	for i := range bookings {
		b := &bookings[i]
		ongoing := (b.Status == models.StatusActive || b.Status == models.StatusConfirmed) &&
			!b.EndDate.Before(now)
		if ongoing {
			data.ActiveBookings++
			// bookings arrive newest first, so the first match wins ties
			if data.CurrentBooking == nil {
				data.CurrentBooking = b
			}
		}
		if len(data.RecentActivity) < 5 {
			data.RecentActivity = append(data.RecentActivity, models.ActivityEntry{
				Type:        "booking",
				Description: b.ActivityDescription(),
				Timestamp:   b.CreatedAt,
			})
		}
	}
	return data, nil
}

// DeleteCar removes a car from the catalog, rejecting the delete while
// non-cancelled bookings still reference it.
func (e *Engine) DeleteCar(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return &InvalidIdentifierError{Field: "car_id", Value: id}
	}
	if _, err := e.cars.FindCarByID(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrCarNotFound
		}
		return &StorageError{Op: "find car", Err: err}
	}

	count, err := e.bookings.CountNonCancelledByCar(ctx, id)
	if err != nil {
		return &StorageError{Op: "count bookings", Err: err}
	}
	if count > 0 {
		return ErrCarHasBookings
	}

	if err := e.cars.DeleteCar(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrCarNotFound
		}
		return &StorageError{Op: "delete car", Err: err}
	}
	return nil
}

// SweepCompleted transitions active bookings whose end date has passed to
// completed. Returns the number of bookings swept.
func (e *Engine) SweepCompleted(ctx context.Context) (int, error) {
	cutoff := truncateToDay(e.now().UTC())
	expired, err := e.bookings.FindExpiredActive(ctx, cutoff)
	if err != nil {
		return 0, &StorageError{Op: "find expired bookings", Err: err}
	}

	swept := 0
	for i := range expired {
		b := &expired[i]
		if _, err := e.UpdateStatus(ctx, b.ID.Hex(), models.StatusCompleted); err != nil {
			log.WithError(err).WithField("booking_id", b.ID.Hex()).Warn("Failed to complete expired booking")
			continue
		}
		swept++
	}
	return swept, nil
}

func (e *Engine) findBooking(ctx context.Context, id string) (*models.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, &InvalidIdentifierError{Field: "booking_id", Value: id}
	}
	booking, err := e.bookings.FindBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, &StorageError{Op: "find booking", Err: err}
	}
	return booking, nil
}

// attachCar joins the car summary onto a booking. A missing car is logged
// and left nil rather than failing the read.
func (e *Engine) attachCar(ctx context.Context, booking *models.Booking) {
	car, err := e.cars.FindCarByID(ctx, booking.CarID.Hex())
	if err != nil {
		log.WithError(err).WithField("car_id", booking.CarID.Hex()).Warn("Failed to join car onto booking")
		return
	}
	booking.Car = car.Summary()
}

func (e *Engine) attachSummaries(ctx context.Context, bookings []models.Booking, withUser bool) {
	carCache := make(map[string]*models.CarSummary)
	userCache := make(map[string]*models.UserSummary)

	for i := range bookings {
		b := &bookings[i]

		carID := b.CarID.Hex()
		summary, ok := carCache[carID]
		if !ok {
			if car, err := e.cars.FindCarByID(ctx, carID); err == nil {
				summary = car.Summary()
			}
			carCache[carID] = summary
		}
		b.Car = summary

		if !withUser {
			continue
		}
		uid := b.UserID.Hex()
		us, ok := userCache[uid]
		if !ok {
			if user, err := e.users.FindUserByID(ctx, uid); err == nil {
				us = user.Summary()
			}
			userCache[uid] = us
		}
		b.User = us
	}
}

func (e *Engine) publish(eventType string, b *models.Booking) {
	if e.notifier == nil {
		return
	}
	e.notifier.PublishBookingEvent(notify.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		BookingID: b.ID.Hex(),
		UserID:    b.UserID.Hex(),
		CarID:     b.CarID.Hex(),
		Status:    b.Status,
		Timestamp: e.now(),
	})
}
