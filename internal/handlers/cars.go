package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/booking"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarHandler exposes the catalog: public listing plus admin mutations.
type CarHandler struct {
	cars   db.CarCollection
	engine *booking.Engine
}

// NewCarHandler creates a new catalog handler.
func NewCarHandler(cars db.CarCollection, engine *booking.Engine) *CarHandler {
	return &CarHandler{cars: cars, engine: engine}
}

// List returns every car in the catalog.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	cars, err := h.cars.FindCars(r.Context(), nil)
	if err != nil {
		log.WithError(err).Error("Failed to list cars")
		writeMessage(w, http.StatusInternalServerError, "Error fetching cars")
		return
	}
	if cars == nil {
		cars = []models.Car{}
	}
	writeJSON(w, http.StatusOK, cars)
}

// Get returns a single car by id.
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid car ID")
		return
	}

	car, err := h.cars.FindCarByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Car not found")
			return
		}
		log.WithError(err).Error("Failed to fetch car")
		writeMessage(w, http.StatusInternalServerError, "Error fetching car")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// Create adds a car to the catalog. Field validation is batched: the
// response lists every violation, not just the first.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.CarInput
	if err := decodeStrict(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if verr := in.Validate(); verr != nil {
		writeErrors(w, http.StatusBadRequest, "Validation failed", verr.Errors)
		return
	}

	car := in.ToCar()
	id, err := h.cars.InsertCar(r.Context(), car)
	if err != nil {
		log.WithError(err).Error("Failed to create car")
		writeMessage(w, http.StatusInternalServerError, "Error creating car")
		return
	}
	car.ID = id

	log.WithFields(log.Fields{"car_id": id.Hex(), "brand": car.Brand, "model": car.Model}).Info("Car added to catalog")
	writeJSON(w, http.StatusCreated, car)
}

// Update replaces the mutable fields of a car.
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid car ID")
		return
	}

	var in models.CarInput
	if err := decodeStrict(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if verr := in.Validate(); verr != nil {
		writeErrors(w, http.StatusBadRequest, "Validation failed", verr.Errors)
		return
	}

	existing, err := h.cars.FindCarByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Car not found")
			return
		}
		log.WithError(err).Error("Failed to fetch car")
		writeMessage(w, http.StatusInternalServerError, "Error updating car")
		return
	}

	car := in.ToCar()
	car.CreatedAt = existing.CreatedAt
	if err := h.cars.UpdateCar(r.Context(), id, car); err != nil {
		log.WithError(err).Error("Failed to update car")
		writeMessage(w, http.StatusInternalServerError, "Error updating car")
		return
	}
	car.ID = existing.ID
	writeJSON(w, http.StatusOK, car)
}

// SetAvailability flips the availability flag of a car.
func (h *CarHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid car ID")
		return
	}

	var req struct {
		Availability *bool `json:"availability"`
	}
	if err := decodeStrict(r, &req); err != nil || req.Availability == nil {
		writeMessage(w, http.StatusBadRequest, "availability is required")
		return
	}

	if err := h.cars.SetAvailability(r.Context(), id, *req.Availability); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Car not found")
			return
		}
		log.WithError(err).Error("Failed to update availability")
		writeMessage(w, http.StatusInternalServerError, "Error updating availability")
		return
	}
	writeMessage(w, http.StatusOK, "Availability updated")
}

// Delete removes a car; the delete is rejected while bookings still
// reference it.
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.engine.DeleteCar(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Car deleted successfully")
}
