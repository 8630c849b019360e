// README: Pure quote computation; tiered discount, distance and driver surcharges, add-ons.
package pricing

import (
	"math"

	"carrental/internal/types"
)

// ComputeQuote prices a rental of a car costing basePricePerDay. It has no side
// effects and returns identical breakdowns for identical inputs.
//
// The running price is kept in float64 and rounded once at the end with
// math.Round (half away from zero). The reported discount is recomputed from
// the undiscounted base subtotal, so it mirrors what the running price lost.
func ComputeQuote(basePricePerDay float64, opts QuoteOptions) (Breakdown, error) {
	if basePricePerDay <= 0 || math.IsNaN(basePricePerDay) || math.IsInf(basePricePerDay, 0) {
		return Breakdown{}, ErrInvalidBasePrice
	}
	factor := opts.Unit.Days()
	if opts.Duration <= 0 || factor == 0 || opts.Duration > math.MaxInt/factor {
		return Breakdown{}, ErrInvalidDuration
	}
	if opts.DistanceKm < 0 || math.IsNaN(opts.DistanceKm) || math.IsInf(opts.DistanceKm, 0) {
		return Breakdown{}, ErrInvalidDistance
	}

	totalDays := opts.Duration * factor
	base := basePricePerDay * float64(totalDays)
	price := base

	tier := tierFor(totalDays)
	switch tier {
	case TierMonthly:
		price *= 0.8
	case TierWeekly:
		price *= 0.9
	}

	freeKm := float64(FreeKmPerDay) * float64(totalDays)
	var excessKm, distanceCharge float64
	if opts.DistanceKm > freeKm {
		excessKm = opts.DistanceKm - freeKm
		distanceCharge = excessKm * ExcessKmRate
		price += distanceCharge
	}

	var driverCharge float64
	if opts.IncludeDriver {
		driverCharge = float64(DriverRatePerDay) * float64(totalDays)
		price += driverCharge
	}

	lines, addOnsTotal := selectedAddOns(opts.AddOns)
	price += float64(addOnsTotal)

	// Every amount below is converted to int64; 2^63 itself does not fit.
	for _, amount := range []float64{base, distanceCharge, driverCharge, price} {
		if math.Round(amount) >= maxAmount {
			return Breakdown{}, ErrAmountTooLarge
		}
	}

	return Breakdown{
		TotalDays:         totalDays,
		BasePricePerDay:   basePricePerDay,
		BaseSubtotal:      int64(math.Round(base)),
		Tier:              tier,
		DiscountLabel:     tier.Label(),
		DiscountAmount:    int64(math.Round(base * tier.Fraction())),
		FreeDistanceKm:    freeKm,
		ExcessDistanceKm:  excessKm,
		DistanceSurcharge: int64(math.Round(distanceCharge)),
		DriverSurcharge:   int64(driverCharge),
		AddOns:            lines,
		AddOnsSubtotal:    addOnsTotal,
		GrandTotal:        int64(math.Round(price)),
		Currency:          types.DefaultCurrency,
	}, nil
}

const maxAmount = float64(1 << 63)

func tierFor(totalDays int) DiscountTier {
	if totalDays >= 30 {
		return TierMonthly
	}
	if totalDays >= 7 {
		return TierWeekly
	}
	return TierNone
}

// selectedAddOns resolves ids against the catalog. Unknown ids are dropped and a
// repeated id is charged once, since the selection is a set.
func selectedAddOns(ids []string) ([]AddOn, int64) {
	lines := make([]AddOn, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	var total int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, ok := lookupAddOn(id)
		if !ok {
			continue
		}
		lines = append(lines, a)
		total += a.Price
	}
	return lines, total
}
