package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/booking"
	"github.com/ukydev/car-rental/internal/middleware"
	"github.com/ukydev/car-rental/internal/models"
)

// BookingHandler exposes the booking engine over HTTP.
type BookingHandler struct {
	engine *booking.Engine
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(engine *booking.Engine) *BookingHandler {
	return &BookingHandler{engine: engine}
}

// writeEngineError maps engine error kinds onto structured HTTP responses.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		missingErr    *booking.MissingFieldsError
		idErr         *booking.InvalidIdentifierError
		dateErr       *booking.InvalidDateError
		pastErr       *booking.PastStartDateError
		rangeErr      *booking.InvalidRangeError
		conflictErr   *booking.ConflictError
		transitionErr *booking.TransitionError
		payMissingErr *booking.MissingPaymentFieldsError
		storageErr    *booking.StorageError
	)

	switch {
	case errors.As(err, &missingErr):
		writeErrors(w, http.StatusBadRequest, "Missing required fields", missingErr.Fields)
	case errors.As(err, &idErr), errors.As(err, &dateErr),
		errors.As(err, &pastErr), errors.As(err, &rangeErr):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"message":   "Car is not available for the selected dates",
			"conflicts": conflictErr.Conflicts,
		})
	case errors.As(err, &transitionErr):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.As(err, &payMissingErr):
		writeErrors(w, http.StatusBadRequest, "Missing payment fields", payMissingErr.Fields)
	case errors.Is(err, booking.ErrUserNotFound),
		errors.Is(err, booking.ErrCarNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrAlreadyPaid):
		writeMessage(w, http.StatusConflict, "Booking already paid")
	case errors.Is(err, booking.ErrCarHasBookings):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrInvalidCardFormat),
		errors.Is(err, booking.ErrInvalidUpiFormat),
		errors.Is(err, booking.ErrInvalidPaymentMethod):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &storageErr):
		log.WithError(err).Error("Storage failure")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	default:
		log.WithError(err).Error("Unexpected booking error")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Create creates a pending booking.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := decodeStrict(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b, err := h.engine.CreateBooking(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Booking created successfully",
		"booking": b,
	})
}

// Get returns a booking by id.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.engine.GetBooking(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListByUser returns a user's bookings, newest first.
func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.engine.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ListAll returns every booking with joined user and car summaries.
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.engine.ListAll(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// UpdateStatus applies an admin status change.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := decodeStrict(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Status == "" {
		writeMessage(w, http.StatusBadRequest, "Status is required")
		return
	}

	b, err := h.engine.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Cancel cancels a booking.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	b, err := h.engine.CancelBooking(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Accept approves a pending booking and marks the car unavailable.
func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	b, err := h.engine.AcceptBooking(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking accepted and car marked as unavailable",
		"booking": b,
	})
}

// Reject rejects a pending booking.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	b, err := h.engine.RejectBooking(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Pay marks a booking paid and returns the redacted receipt.
func (h *BookingHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentRequest
	if err := decodeStrict(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b, err := h.engine.PayBooking(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Payment successful",
		"booking": b,
		"receipt": b.Receipt,
	})
}

// Dashboard returns the per-user summary for the authenticated user.
func (h *BookingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "User context not found")
		return
	}

	data, err := h.engine.Dashboard(r.Context(), claims.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
