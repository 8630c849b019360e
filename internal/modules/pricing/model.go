// README: Quote options, add-on catalog and price breakdown for car rentals.
package pricing

import "errors"

var (
	ErrInvalidDuration  = errors.New("duration must be a positive number of days, weeks or months")
	ErrInvalidDistance  = errors.New("distance must not be negative")
	ErrInvalidBasePrice = errors.New("base price per day must be positive")
	ErrAmountTooLarge   = errors.New("quote amount is out of range")
)

type DurationUnit string

const (
	UnitDays   DurationUnit = "days"
	UnitWeeks  DurationUnit = "weeks"
	UnitMonths DurationUnit = "months"
)

// Days returns how many rental days one unit covers, or 0 for an unknown unit.
func (u DurationUnit) Days() int {
	switch u {
	case UnitDays:
		return 1
	case UnitWeeks:
		return 7
	case UnitMonths:
		return 30
	}
	return 0
}

type DiscountTier string

const (
	TierNone    DiscountTier = "none"
	TierWeekly  DiscountTier = "weekly"
	TierMonthly DiscountTier = "monthly"
)

// Fraction is the share of the base subtotal the tier takes off.
func (t DiscountTier) Fraction() float64 {
	switch t {
	case TierMonthly:
		return 0.2
	case TierWeekly:
		return 0.1
	}
	return 0
}

// Label is the line shown next to the discount in a quote.
func (t DiscountTier) Label() string {
	switch t {
	case TierMonthly:
		return "20% Monthly Discount Applied!"
	case TierWeekly:
		return "10% Weekly Discount Applied!"
	}
	return ""
}

const (
	FreeKmPerDay     = 100
	ExcessKmRate     = 10
	DriverRatePerDay = 800
)

type AddOn struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// catalog is closed: identifiers outside it are ignored when pricing.
var catalog = []AddOn{
	{ID: "insurance", Name: "Full Insurance", Price: 200},
	{ID: "gps", Name: "GPS Navigation", Price: 50},
	{ID: "fuel", Name: "Full Tank", Price: 2000},
	{ID: "cleaning", Name: "Deep Cleaning", Price: 500},
	{ID: "pickup", Name: "Home Pickup/Drop", Price: 300},
}

// Catalog returns a copy of the add-on catalog in display order.
func Catalog() []AddOn {
	out := make([]AddOn, len(catalog))
	copy(out, catalog)
	return out
}

func lookupAddOn(id string) (AddOn, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

type QuoteOptions struct {
	Duration      int          `json:"duration"`
	Unit          DurationUnit `json:"duration_unit"`
	DistanceKm    float64      `json:"distance_km"`
	IncludeDriver bool         `json:"include_driver"`
	AddOns        []string     `json:"add_ons"`
}

// Breakdown holds each pricing step separately. All amounts are whole rupees.
type Breakdown struct {
	TotalDays         int          `json:"total_days"`
	BasePricePerDay   float64      `json:"base_price_per_day"`
	BaseSubtotal      int64        `json:"base_subtotal"`
	Tier              DiscountTier `json:"discount_tier"`
	DiscountLabel     string       `json:"discount_label,omitempty"`
	DiscountAmount    int64        `json:"discount_amount"`
	FreeDistanceKm    float64      `json:"free_distance_km"`
	ExcessDistanceKm  float64      `json:"excess_distance_km"`
	DistanceSurcharge int64        `json:"distance_surcharge"`
	DriverSurcharge   int64        `json:"driver_surcharge"`
	AddOns            []AddOn      `json:"add_ons"`
	AddOnsSubtotal    int64        `json:"add_ons_subtotal"`
	GrandTotal        int64        `json:"grand_total"`
	Currency          string       `json:"currency"`
}
