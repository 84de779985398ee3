package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo("mongodb://bad:uri")
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func testCarCollection(t *testing.T) (*MongoCarCollection, func()) {
	t.Helper()
	client, err := ConnectMongo(os.Getenv("MONGO_URI"))
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}

	collection := client.Database("test_car_rental").Collection("cars")
	collection.Drop(context.Background())

	return &MongoCarCollection{Collection: collection}, func() {
		collection.Drop(context.Background())
		client.Disconnect(context.Background())
	}
}

func TestMongoCarCollection_InsertAndFind(t *testing.T) {
	cars, cleanup := testCarCollection(t)
	defer cleanup()

	car := models.Car{
		Brand:        "Toyota",
		Model:        "Camry",
		Year:         2022,
		Price:        500,
		Category:     models.CategoryEconomy,
		Transmission: "automatic",
		FuelType:     "petrol",
		Seats:        5,
		Availability: true,
	}

	id, err := cars.InsertCar(context.Background(), car)
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	found, err := cars.FindCarByID(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Toyota", found.Brand)
	assert.Equal(t, models.CategoryEconomy, found.Category)
	assert.NotZero(t, found.CreatedAt)

	all, err := cars.FindCars(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = cars.FindCarByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoCarCollection_SetAvailability(t *testing.T) {
	cars, cleanup := testCarCollection(t)
	defer cleanup()

	id, err := cars.InsertCar(context.Background(), models.Car{
		Brand: "Tesla", Model: "Model 3", Year: 2024, Price: 1500,
		Category: models.CategoryElectric, Seats: 5, Availability: true,
	})
	require.NoError(t, err)

	err = cars.SetAvailability(context.Background(), id.Hex(), false)
	require.NoError(t, err)

	found, err := cars.FindCarByID(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.False(t, found.Availability)

	err = cars.SetAvailability(context.Background(), primitive.NewObjectID().Hex(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoCarCollection_Delete(t *testing.T) {
	cars, cleanup := testCarCollection(t)
	defer cleanup()

	id, err := cars.InsertCar(context.Background(), models.Car{
		Brand: "Honda", Model: "Civic", Year: 2023, Price: 450,
		Category: models.CategoryEconomy, Seats: 5,
	})
	require.NoError(t, err)

	err = cars.DeleteCar(context.Background(), id.Hex())
	require.NoError(t, err)

	_, err = cars.FindCarByID(context.Background(), id.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	err = cars.DeleteCar(context.Background(), id.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
