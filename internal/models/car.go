package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies a rental car.
type Category string

const (
	CategoryEconomy  Category = "economy"
	CategoryLuxury   Category = "luxury"
	CategorySUV      Category = "suv"
	CategoryElectric Category = "electric"
	CategoryHybrid   Category = "hybrid"
)

// Validation bounds for car fields.
const (
	MinCarYear = 2000
	MaxCarYear = 2025
	MinSeats   = 2
	MaxSeats   = 9
)

// IsValidCategory checks if a category is one of the allowed values.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryEconomy, CategoryLuxury, CategorySUV, CategoryElectric, CategoryHybrid:
		return true
	default:
		return false
	}
}

// Car represents a rental car in the catalog.
type Car struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Brand        string             `bson:"brand" json:"brand"`
	Model        string             `bson:"model" json:"model"`
	Year         int                `bson:"year" json:"year"`
	Price        float64            `bson:"price" json:"price"` // per day
	Category     Category           `bson:"category" json:"category"`
	Transmission string             `bson:"transmission" json:"transmission"`
	FuelType     string             `bson:"fuel_type" json:"fuel_type"`
	Seats        int                `bson:"seats" json:"seats"`
	Mileage      int                `bson:"mileage" json:"mileage"`
	LicensePlate string             `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	VIN          string             `bson:"vin,omitempty" json:"vin,omitempty"`
	ImageURL     string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Availability bool               `bson:"availability" json:"availability"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Summary returns the car fields embedded in hydrated booking responses.
func (c *Car) Summary() *CarSummary {
	return &CarSummary{
		ID:       c.ID,
		Brand:    c.Brand,
		Model:    c.Model,
		Price:    c.Price,
		ImageURL: c.ImageURL,
	}
}

// CarSummary is the joined car view attached to bookings.
type CarSummary struct {
	ID       primitive.ObjectID `bson:"id" json:"id"`
	Brand    string             `bson:"brand" json:"brand"`
	Model    string             `bson:"model" json:"model"`
	Price    float64            `bson:"price" json:"price"`
	ImageURL string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// CarInput carries the mutable car fields for create and update requests.
type CarInput struct {
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Price        float64  `json:"price"`
	Category     Category `json:"category"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuel_type"`
	Seats        int      `json:"seats"`
	Mileage      int      `json:"mileage"`
	LicensePlate string   `json:"license_plate"`
	VIN          string   `json:"vin"`
	ImageURL     string   `json:"image_url"`
	Availability *bool    `json:"availability"`
}

// Validate checks every field and reports all violations at once, so callers
// get the full list rather than the first failure.
func (in *CarInput) Validate() *ValidationError {
	var errs []string

	var missing []string
	if strings.TrimSpace(in.Brand) == "" {
		missing = append(missing, "brand")
	}
	if strings.TrimSpace(in.Model) == "" {
		missing = append(missing, "model")
	}
	if in.Year == 0 {
		missing = append(missing, "year")
	}
	if in.Price == 0 {
		missing = append(missing, "price")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Transmission) == "" {
		missing = append(missing, "transmission")
	}
	if strings.TrimSpace(in.FuelType) == "" {
		missing = append(missing, "fuel_type")
	}
	if in.Seats == 0 {
		missing = append(missing, "seats")
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	}

	if in.Year != 0 && (in.Year < MinCarYear || in.Year > MaxCarYear) {
		errs = append(errs, fmt.Sprintf("Year must be between %d and %d", MinCarYear, MaxCarYear))
	}
	if in.Price < 0 {
		errs = append(errs, "Price must be a positive number")
	}
	if in.Seats != 0 && (in.Seats < MinSeats || in.Seats > MaxSeats) {
		errs = append(errs, fmt.Sprintf("Number of seats must be between %d and %d", MinSeats, MaxSeats))
	}
	if in.Category != "" && !IsValidCategory(Category(strings.ToLower(string(in.Category)))) {
		errs = append(errs, "Category must be one of: economy, luxury, suv, electric, hybrid")
	}
	if in.Mileage < 0 {
		errs = append(errs, "Mileage cannot be negative")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ToCar builds a Car from validated input. Availability defaults to true.
func (in *CarInput) ToCar() Car {
	available := true
	if in.Availability != nil {
		available = *in.Availability
	}
	return Car{
		Brand:        strings.TrimSpace(in.Brand),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Price:        in.Price,
		Category:     Category(strings.ToLower(string(in.Category))),
		Transmission: strings.TrimSpace(in.Transmission),
		FuelType:     strings.TrimSpace(in.FuelType),
		Seats:        in.Seats,
		Mileage:      in.Mileage,
		LicensePlate: strings.TrimSpace(in.LicensePlate),
		VIN:          strings.TrimSpace(in.VIN),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Availability: available,
	}
}
