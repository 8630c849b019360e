// README: Pricing service; resolves a car's daily rate and computes a quote.
package pricing

import (
	"context"
	"fmt"

	"carrental/internal/types"
)

// VehicleLookup returns the current daily rate for a car. The fleet service
// implements it.
type VehicleLookup interface {
	PricePerDay(ctx context.Context, id types.ID) (float64, error)
}

// Recorder observes computed quotes, typically for metrics.
type Recorder interface {
	QuoteComputed(tier string)
}

type Service struct {
	vehicles VehicleLookup
	recorder Recorder
}

func NewService(vehicles VehicleLookup, recorder Recorder) *Service {
	return &Service{vehicles: vehicles, recorder: recorder}
}

// Quote prices opts for the car identified by carID using its stored rate.
func (s *Service) Quote(ctx context.Context, carID types.ID, opts QuoteOptions) (Breakdown, error) {
	price, err := s.vehicles.PricePerDay(ctx, carID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("lookup rate for %s: %w", carID, err)
	}
	return s.Estimate(price, opts)
}

// Estimate prices opts against an explicit daily rate.
func (s *Service) Estimate(basePricePerDay float64, opts QuoteOptions) (Breakdown, error) {
	b, err := ComputeQuote(basePricePerDay, opts)
	if err != nil {
		return Breakdown{}, err
	}
	if s.recorder != nil {
		s.recorder.QuoteComputed(string(b.Tier))
	}
	return b, nil
}

func (s *Service) Catalog() []AddOn {
	return Catalog()
}
