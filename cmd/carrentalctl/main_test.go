// README: Tests for quote and filter output.
package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/modules/fleet"
	"carrental/internal/modules/pricing"
)

func TestRupeesGroupsDigits(t *testing.T) {
	assert.Equal(t, "₹19,050", rupees(19050))
	assert.Equal(t, "₹500", rupees(500))
}

func TestRunQuote_FractionalRate(t *testing.T) {
	assert.Equal(t, "₹1,200", rupeeRate(1200))
	assert.Equal(t, "₹1,333.50", rupeeRate(1333.5))

	var out bytes.Buffer
	require.NoError(t, runQuote(&out, quoteFlags{price: 1333.5, duration: 2, unit: "days"}))
	assert.Contains(t, out.String(), "Base (2 days x ₹1,333.50)\t₹2,667")
}

func TestRunQuote(t *testing.T) {
	var out bytes.Buffer
	err := runQuote(&out, quoteFlags{price: 1000, duration: 10, unit: "days", distance: 1200, driver: true, addOns: []string{"gps"}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Total\t₹19,050")
	assert.Contains(t, out.String(), "Extra distance (200 km)")

	err = runQuote(&out, quoteFlags{price: 1000, duration: 0, unit: "days"})
	assert.ErrorIs(t, err, pricing.ErrInvalidDuration)
}

func TestRunFilter(t *testing.T) {
	cars := []fleet.Vehicle{
		{Name: "Maruti Swift", Brand: "Maruti", Model: "Swift", Category: "Hatchback", PricePerDay: 1200, Available: true},
		{Name: "Mahindra Thar", Brand: "Mahindra", Model: "Thar", Category: "SUV", PricePerDay: 3500, Available: true},
	}
	base := fleet.FilterCriteria{Category: fleet.All, FuelType: fleet.All, Transmission: fleet.All, Seating: fleet.All, MinPrice: 500, MaxPrice: 10000}

	var out bytes.Buffer
	c := base
	c.Query = "swift"
	require.NoError(t, runFilter(&out, cars, c))
	assert.Equal(t, "Maruti Swift\tHatchback\t₹1,200/day\n", out.String())

	out.Reset()
	c.Query = "creta"
	require.NoError(t, runFilter(&out, cars, c))
	assert.Contains(t, out.String(), "No cars match.")
	assert.Contains(t, out.String(), "You might like these SUV cars:")
	assert.Contains(t, out.String(), "Mahindra Thar")

	c = base
	c.MinPrice, c.MaxPrice = 5000, 100
	assert.ErrorIs(t, runFilter(&out, cars, c), fleet.ErrInvalidRange)
}
