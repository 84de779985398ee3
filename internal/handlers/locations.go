package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
)

// LocationHandler serves the pickup/dropoff location catalog.
type LocationHandler struct {
	locations db.LocationCollection
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(locations db.LocationCollection) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// List returns all locations.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locs, err := h.locations.FindLocations(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list locations")
		writeMessage(w, http.StatusInternalServerError, "Error retrieving locations")
		return
	}
	if locs == nil {
		locs = []models.Location{}
	}
	writeJSON(w, http.StatusOK, locs)
}
