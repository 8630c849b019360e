package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/types"
)

func TestComputeQuote(t *testing.T) {
	tests := []struct {
		name      string
		base      float64
		opts      QuoteOptions
		wantDays  int
		wantTier  DiscountTier
		wantDisc  int64
		wantDist  int64
		wantDrv   int64
		wantAdds  int64
		wantTotal int64
	}{
		{
			name:      "single day, nothing extra",
			base:      1000,
			opts:      QuoteOptions{Duration: 1, Unit: UnitDays},
			wantDays:  1,
			wantTier:  TierNone,
			wantTotal: 1000,
		},
		{
			name: "ten days with driver, excess distance and gps",
			base: 1000,
			opts: QuoteOptions{Duration: 10, Unit: UnitDays, DistanceKm: 1200, IncludeDriver: true, AddOns: []string{"gps"}},
			// 10000*0.9 + 200km*10 + 10*800 + 50
			wantDays:  10,
			wantTier:  TierWeekly,
			wantDisc:  1000,
			wantDist:  2000,
			wantDrv:   8000,
			wantAdds:  50,
			wantTotal: 19050,
		},
		{
			name:      "one month, zero distance",
			base:      1000,
			opts:      QuoteOptions{Duration: 1, Unit: UnitMonths},
			wantDays:  30,
			wantTier:  TierMonthly,
			wantDisc:  6000,
			wantTotal: 24000,
		},
		{
			name:      "two weeks hits weekly tier",
			base:      2500,
			opts:      QuoteOptions{Duration: 2, Unit: UnitWeeks, DistanceKm: 1400},
			wantDays:  14,
			wantTier:  TierWeekly,
			wantDisc:  3500,
			wantTotal: 31500,
		},
		{
			name:      "29 days stays weekly",
			base:      100,
			opts:      QuoteOptions{Duration: 29, Unit: UnitDays},
			wantDays:  29,
			wantTier:  TierWeekly,
			wantDisc:  290,
			wantTotal: 2610,
		},
		{
			name:      "fractional rate rounds half up",
			base:      1333.5,
			opts:      QuoteOptions{Duration: 1, Unit: UnitDays},
			wantDays:  1,
			wantTier:  TierNone,
			wantTotal: 1334,
		},
		{
			name:      "every add-on plus an unknown one",
			base:      500,
			opts:      QuoteOptions{Duration: 2, Unit: UnitDays, AddOns: []string{"insurance", "gps", "fuel", "cleaning", "pickup", "sunroof"}},
			wantDays:  2,
			wantTier:  TierNone,
			wantAdds:  3050,
			wantTotal: 4050,
		},
		{
			name:      "distance exactly at allowance is free",
			base:      800,
			opts:      QuoteOptions{Duration: 3, Unit: UnitDays, DistanceKm: 300},
			wantDays:  3,
			wantTier:  TierNone,
			wantTotal: 2400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeQuote(tt.base, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, got.TotalDays)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantDisc, got.DiscountAmount)
			assert.Equal(t, tt.wantDist, got.DistanceSurcharge)
			assert.Equal(t, tt.wantDrv, got.DriverSurcharge)
			assert.Equal(t, tt.wantAdds, got.AddOnsSubtotal)
			assert.Equal(t, tt.wantTotal, got.GrandTotal)
			assert.Equal(t, types.DefaultCurrency, got.Currency)
		})
	}
}

func TestComputeQuote_DiscountTiers(t *testing.T) {
	for days := 1; days <= 45; days++ {
		got, err := ComputeQuote(1000, QuoteOptions{Duration: days, Unit: UnitDays})
		require.NoError(t, err)

		base := int64(days * 1000)
		assert.Equal(t, base, got.BaseSubtotal)
		switch {
		case days >= 30:
			assert.Equal(t, TierMonthly, got.Tier, "days=%d", days)
			assert.Equal(t, base/5, got.DiscountAmount, "days=%d", days)
		case days >= 7:
			assert.Equal(t, TierWeekly, got.Tier, "days=%d", days)
			assert.Equal(t, base/10, got.DiscountAmount, "days=%d", days)
		default:
			assert.Equal(t, TierNone, got.Tier, "days=%d", days)
			assert.Zero(t, got.DiscountAmount, "days=%d", days)
			assert.Empty(t, got.DiscountLabel)
		}
		assert.Equal(t, got.BaseSubtotal-got.DiscountAmount, got.GrandTotal, "days=%d", days)
	}
}

func TestComputeQuote_DistanceSurcharge(t *testing.T) {
	for _, km := range []float64{0, 150, 299.5, 300, 300.5, 450, 1000} {
		got, err := ComputeQuote(1000, QuoteOptions{Duration: 3, Unit: UnitDays, DistanceKm: km})
		require.NoError(t, err)
		if km <= 300 {
			assert.Zero(t, got.DistanceSurcharge, "km=%v", km)
			continue
		}
		assert.Equal(t, int64((km-300)*10+0.5), got.DistanceSurcharge, "km=%v", km)
	}
}

func TestComputeQuote_DuplicateAddOnChargedOnce(t *testing.T) {
	got, err := ComputeQuote(1000, QuoteOptions{Duration: 1, Unit: UnitDays, AddOns: []string{"gps", "gps"}})
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.AddOnsSubtotal)
	assert.Len(t, got.AddOns, 1)
}

func TestComputeQuote_Idempotent(t *testing.T) {
	opts := QuoteOptions{Duration: 3, Unit: UnitWeeks, DistanceKm: 2345.6, IncludeDriver: true, AddOns: []string{"fuel", "pickup"}}
	first, err := ComputeQuote(1799.99, opts)
	require.NoError(t, err)
	second, err := ComputeQuote(1799.99, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeQuote_Rejects(t *testing.T) {
	tests := []struct {
		name string
		base float64
		opts QuoteOptions
		want error
	}{
		{"zero duration", 1000, QuoteOptions{Duration: 0, Unit: UnitDays}, ErrInvalidDuration},
		{"negative duration", 1000, QuoteOptions{Duration: -2, Unit: UnitWeeks}, ErrInvalidDuration},
		{"unknown unit", 1000, QuoteOptions{Duration: 1, Unit: "years"}, ErrInvalidDuration},
		{"negative distance", 1000, QuoteOptions{Duration: 1, Unit: UnitDays, DistanceKm: -1}, ErrInvalidDistance},
		{"zero base price", 0, QuoteOptions{Duration: 1, Unit: UnitDays}, ErrInvalidBasePrice},
		{"infinite distance", 1000, QuoteOptions{Duration: 1, Unit: UnitDays, DistanceKm: math.Inf(1)}, ErrInvalidDistance},
		{"days overflow int", 1000, QuoteOptions{Duration: math.MaxInt64 / 20, Unit: UnitMonths}, ErrInvalidDuration},
		{"max weeks", 1000, QuoteOptions{Duration: math.MaxInt64, Unit: UnitWeeks}, ErrInvalidDuration},
		{"huge distance", 1000, QuoteOptions{Duration: 1, Unit: UnitDays, DistanceKm: 1e300}, ErrAmountTooLarge},
		{"huge base total", 1000, QuoteOptions{Duration: math.MaxInt64 / 30, Unit: UnitMonths}, ErrAmountTooLarge},
		{"huge base price", 1e300, QuoteOptions{Duration: 1, Unit: UnitDays}, ErrAmountTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ComputeQuote(tt.base, tt.opts)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, b.GrandTotal)
		})
	}
}

type stubLookup struct {
	price float64
	err   error
}

func (s stubLookup) PricePerDay(_ context.Context, _ types.ID) (float64, error) {
	return s.price, s.err
}

type countingRecorder struct {
	tiers []string
}

func (r *countingRecorder) QuoteComputed(tier string) {
	r.tiers = append(r.tiers, tier)
}

func TestService_Quote(t *testing.T) {
	rec := &countingRecorder{}
	s := NewService(stubLookup{price: 1000}, rec)

	got, err := s.Quote(context.Background(), types.NewID(), QuoteOptions{Duration: 1, Unit: UnitMonths})
	require.NoError(t, err)
	assert.Equal(t, int64(24000), got.GrandTotal)
	assert.Equal(t, []string{"monthly"}, rec.tiers)
}

func TestService_QuoteLookupError(t *testing.T) {
	lookupErr := errors.New("no such car")
	s := NewService(stubLookup{err: lookupErr}, nil)

	_, err := s.Quote(context.Background(), types.NewID(), QuoteOptions{Duration: 1, Unit: UnitDays})
	assert.ErrorIs(t, err, lookupErr)
}

func TestCatalogIsCopy(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 5)
	c[0].Price = 1
	assert.Equal(t, int64(200), Catalog()[0].Price)
}
