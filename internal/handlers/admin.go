package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler exposes user management and platform metrics.
type AdminHandler struct {
	users    db.UserCollection
	cars     db.CarCollection
	bookings db.BookingCollection
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(users db.UserCollection, cars db.CarCollection, bookings db.BookingCollection) *AdminHandler {
	return &AdminHandler{users: users, cars: cars, bookings: bookings}
}

// ListUsers returns every registered user.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindUsers(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		writeMessage(w, http.StatusInternalServerError, "Error retrieving users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteUser removes a user account.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		log.WithError(err).Error("Failed to delete user")
		writeMessage(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

// Metrics returns record counts across the platform.
func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindUsers(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error computing metrics")
		return
	}
	cars, err := h.cars.FindCars(r.Context(), nil)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error computing metrics")
		return
	}
	bookings, err := h.bookings.FindAllBookings(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error computing metrics")
		return
	}

	byStatus := make(map[models.BookingStatus]int)
	for _, b := range bookings {
		byStatus[b.Status]++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":            len(users),
		"cars":             len(cars),
		"bookings":         len(bookings),
		"bookingsByStatus": byStatus,
	})
}
