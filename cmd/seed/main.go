package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/auth"
	"github.com/ukydev/car-rental/internal/config"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
)

// Demo fleet inserted by the seeder.
var demoCars = []models.CarInput{
	{Brand: "Toyota", Model: "Camry", Year: 2022, Category: "economy", Price: 500, Seats: 5, Transmission: "automatic", FuelType: "petrol", Mileage: 32000, ImageURL: "https://images.example.com/cars/toyota-camry.jpg"},
	{Brand: "Honda", Model: "Civic", Year: 2023, Category: "economy", Price: 450, Seats: 5, Transmission: "manual", FuelType: "petrol", Mileage: 18000, ImageURL: "https://images.example.com/cars/honda-civic.jpg"},
	{Brand: "BMW", Model: "5 Series", Year: 2023, Category: "luxury", Price: 1800, Seats: 5, Transmission: "automatic", FuelType: "diesel", Mileage: 9000, ImageURL: "https://images.example.com/cars/bmw-5.jpg"},
	{Brand: "Mercedes-Benz", Model: "E-Class", Year: 2024, Category: "luxury", Price: 2000, Seats: 5, Transmission: "automatic", FuelType: "petrol", Mileage: 4000, ImageURL: "https://images.example.com/cars/merc-e.jpg"},
	{Brand: "Hyundai", Model: "Creta", Year: 2022, Category: "suv", Price: 800, Seats: 7, Transmission: "manual", FuelType: "diesel", Mileage: 41000, ImageURL: "https://images.example.com/cars/hyundai-creta.jpg"},
	{Brand: "Tesla", Model: "Model 3", Year: 2024, Category: "electric", Price: 1500, Seats: 5, Transmission: "automatic", FuelType: "electric", Mileage: 6000, ImageURL: "https://images.example.com/cars/tesla-3.jpg"},
	{Brand: "Toyota", Model: "Prius", Year: 2021, Category: "hybrid", Price: 650, Seats: 5, Transmission: "automatic", FuelType: "hybrid", Mileage: 55000, ImageURL: "https://images.example.com/cars/toyota-prius.jpg"},
}

var demoLocations = []models.Location{
	{Name: "Downtown Branch", Address: "12 Main Street", City: "Nicosia"},
	{Name: "Airport Desk", Address: "Larnaca International Airport", City: "Larnaca"},
	{Name: "Marina Kiosk", Address: "28 Harbour Road", City: "Limassol"},
}

func main() {
	cfg := config.Load()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	database := client.Database(cfg.MongoDatabase)
	cars := &db.MongoCarCollection{Collection: database.Collection("cars")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	locations := &db.MongoLocationCollection{Collection: database.Collection("locations")}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	seedAdmin(ctx, users, authService)
	seedCars(ctx, cars)
	seedLocations(ctx, locations)

	log.Info("Seeding complete")
}

func seedAdmin(ctx context.Context, users db.UserCollection, authService *auth.Service) {
	const adminEmail = "admin@carrental.local"

	if _, err := users.FindUserByEmail(ctx, adminEmail); err == nil {
		log.Info("Admin user already exists, skipping")
		return
	}

	hash, err := authService.HashPassword("admin12345")
	if err != nil {
		log.WithError(err).Fatal("Failed to hash admin password")
	}

	id, err := users.InsertUser(ctx, models.User{
		Name:         "Admin",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to insert admin user")
	}
	log.WithField("id", id.Hex()).Info("Created admin user")
}

func seedCars(ctx context.Context, cars db.CarCollection) {
	existing, err := cars.FindCars(ctx, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to query cars")
	}
	if len(existing) > 0 {
		log.WithField("count", len(existing)).Info("Cars already present, skipping")
		return
	}

	for _, in := range demoCars {
		if verr := in.Validate(); verr != nil {
			log.WithField("car", in.Brand+" "+in.Model).WithError(verr).Fatal("Invalid seed car")
		}
		id, err := cars.InsertCar(ctx, in.ToCar())
		if err != nil {
			log.WithError(err).Fatal("Failed to insert car")
		}
		log.WithFields(log.Fields{"id": id.Hex(), "car": in.Brand + " " + in.Model}).Info("Created car")
	}
}

func seedLocations(ctx context.Context, locations db.LocationCollection) {
	existing, err := locations.FindLocations(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to query locations")
	}
	if len(existing) > 0 {
		log.WithField("count", len(existing)).Info("Locations already present, skipping")
		return
	}

	for _, loc := range demoLocations {
		id, err := locations.InsertLocation(ctx, loc)
		if err != nil {
			log.WithError(err).Fatal("Failed to insert location")
		}
		log.WithFields(log.Fields{"id": id.Hex(), "name": loc.Name}).Info("Created location")
	}
}
