// README: Rentable car definition, filter criteria and fleet errors.
package fleet

import (
	"errors"
	"time"

	"carrental/internal/types"
)

var (
	ErrNotFound     = errors.New("car not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidRange = errors.New("invalid filter range")
)

// All disables a selector in FilterCriteria.
const All = "All"

type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
)

func (f FuelType) Valid() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

type Transmission string

const (
	TransmissionManual    Transmission = "Manual"
	TransmissionAutomatic Transmission = "Automatic"
)

func (t Transmission) Valid() bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// Vehicle is a car in the rental fleet. Category is free text so the set of
// categories follows whatever the inventory holds. FuelType and Transmission
// are empty when unknown; SeatingCapacity is nil when unknown.
type Vehicle struct {
	ID              types.ID     `json:"id"`
	Name            string       `json:"name"`
	Brand           string       `json:"brand"`
	Model           string       `json:"model"`
	Year            int          `json:"year"`
	Category        string       `json:"category"`
	PricePerDay     float64      `json:"price_per_day"`
	Features        []string     `json:"features"`
	ImageURL        string       `json:"image_url"`
	Images          []string     `json:"images,omitempty"`
	Available       bool         `json:"available"`
	FuelType        FuelType     `json:"fuel_type,omitempty"`
	Transmission    Transmission `json:"transmission,omitempty"`
	SeatingCapacity *int         `json:"seating_capacity,omitempty"`
	Rating          float64      `json:"rating"`
	TotalReviews    int          `json:"total_reviews"`
	Location        string       `json:"location,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// FilterCriteria is rebuilt from the request on every search. Empty selectors
// behave like All. Seating is "All", an exact count, or "7" for seven and up.
type FilterCriteria struct {
	Query        string  `json:"query"`
	Category     string  `json:"category"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
	Seating      string  `json:"seating"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

type SearchResult struct {
	Cars        []Vehicle `json:"cars"`
	Suggestions []Vehicle `json:"suggestions,omitempty"`
	Categories  []string  `json:"categories"`
}
