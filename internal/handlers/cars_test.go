package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/ukydev/car-rental/internal/booking"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCarInput() models.CarInput {
	return models.CarInput{
		Brand:        "Toyota",
		Model:        "Camry",
		Year:         2022,
		Price:        500,
		Category:     models.CategoryEconomy,
		Transmission: "automatic",
		FuelType:     "petrol",
		Seats:        5,
	}
}

func newCarTestHandler(cars *MockCarCollection, bookings *MockBookingCollection) *CarHandler {
	users := new(MockUserCollection)
	engine := booking.NewEngine(cars, users, bookings, booking.Config{})
	return NewCarHandler(db.CarCollection(cars), engine)
}

func TestCarHandler_List(t *testing.T) {
	mockCars := new(MockCarCollection)
	handler := newCarTestHandler(mockCars, new(MockBookingCollection))

	fleet := []models.Car{
		{ID: primitive.NewObjectID(), Brand: "Toyota", Model: "Camry"},
		{ID: primitive.NewObjectID(), Brand: "Honda", Model: "Civic"},
	}
	mockCars.On("FindCars", mock.Anything, mock.Anything).Return(fleet, nil)

	req := httptest.NewRequest("GET", "/api/cars", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var cars []models.Car
	err := json.Unmarshal(w.Body.Bytes(), &cars)
	assert.NoError(t, err)
	assert.Len(t, cars, 2)
}

func TestCarHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		car := &models.Car{ID: primitive.NewObjectID(), Brand: "Toyota", Model: "Camry"}
		mockCars.On("FindCarByID", mock.Anything, car.ID.Hex()).Return(car, nil)

		req := httptest.NewRequest("GET", "/api/cars/"+car.ID.Hex(), nil)
		req.SetPathValue("id", car.ID.Hex())
		w := httptest.NewRecorder()

		handler.Get(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		req := httptest.NewRequest("GET", "/api/cars/oops", nil)
		req.SetPathValue("id", "oops")
		w := httptest.NewRecorder()

		handler.Get(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockCars.AssertNotCalled(t, "FindCarByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		id := primitive.NewObjectID().Hex()
		mockCars.On("FindCarByID", mock.Anything, id).Return(nil, db.ErrNotFound)

		req := httptest.NewRequest("GET", "/api/cars/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.Get(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCarHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		mockCars.On("InsertCar", mock.Anything, mock.AnythingOfType("models.Car")).Return(primitive.NewObjectID(), nil)

		body, _ := json.Marshal(testCarInput())
		req := httptest.NewRequest("POST", "/api/cars", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var car models.Car
		err := json.Unmarshal(w.Body.Bytes(), &car)
		assert.NoError(t, err)
		assert.Equal(t, "Toyota", car.Brand)
		assert.True(t, car.Availability)
		assert.False(t, car.ID.IsZero())

		mockCars.AssertExpectations(t)
	})

	t.Run("validation errors are batched", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		in := testCarInput()
		in.Year = 1980
		in.Seats = 1
		body, _ := json.Marshal(in)
		req := httptest.NewRequest("POST", "/api/cars", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Message)
		assert.Len(t, response.Errors, 2)

		mockCars.AssertNotCalled(t, "InsertCar", mock.Anything, mock.Anything)
	})
}

func TestCarHandler_SetAvailability(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		id := primitive.NewObjectID().Hex()
		mockCars.On("SetAvailability", mock.Anything, id, false).Return(nil)

		req := httptest.NewRequest("PATCH", "/api/cars/"+id+"/availability",
			bytes.NewBufferString(`{"availability":false}`))
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.SetAvailability(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockCars.AssertExpectations(t)
	})

	t.Run("missing flag", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		handler := newCarTestHandler(mockCars, new(MockBookingCollection))

		id := primitive.NewObjectID().Hex()
		req := httptest.NewRequest("PATCH", "/api/cars/"+id+"/availability", bytes.NewBufferString(`{}`))
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.SetAvailability(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCarHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		mockBookings := new(MockBookingCollection)
		handler := newCarTestHandler(mockCars, mockBookings)

		car := &models.Car{ID: primitive.NewObjectID()}
		id := car.ID.Hex()
		mockCars.On("FindCarByID", mock.Anything, id).Return(car, nil)
		mockBookings.On("CountNonCancelledByCar", mock.Anything, id).Return(int64(0), nil)
		mockCars.On("DeleteCar", mock.Anything, id).Return(nil)

		req := httptest.NewRequest("DELETE", "/api/cars/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockCars.AssertExpectations(t)
	})

	t.Run("blocked by live bookings", func(t *testing.T) {
		mockCars := new(MockCarCollection)
		mockBookings := new(MockBookingCollection)
		handler := newCarTestHandler(mockCars, mockBookings)

		car := &models.Car{ID: primitive.NewObjectID()}
		id := car.ID.Hex()
		mockCars.On("FindCarByID", mock.Anything, id).Return(car, nil)
		mockBookings.On("CountNonCancelledByCar", mock.Anything, id).Return(int64(2), nil)

		req := httptest.NewRequest("DELETE", "/api/cars/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockCars.AssertNotCalled(t, "DeleteCar", mock.Anything, mock.Anything)
	})
}
