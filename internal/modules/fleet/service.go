// README: Fleet service; snapshot of rentable cars, search with suggestions, admin inventory writes.
package fleet

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"carrental/internal/modules/realtime"
	"carrental/internal/types"
)

type Repository interface {
	ListAvailable(ctx context.Context) ([]Vehicle, error)
	ListAll(ctx context.Context) ([]Vehicle, error)
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id types.ID) error
	Count(ctx context.Context) (int, error)
}

type SnapshotCache interface {
	Load(ctx context.Context) ([]Vehicle, bool, error)
	Store(ctx context.Context, vehicles []Vehicle) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	store  Repository
	cache  SnapshotCache
	events realtime.Publisher
	log    logrus.FieldLogger
	now    func() time.Time

	// generation counts invalidations seen by this instance.
	generation atomic.Uint64
}

// NewService wires the fleet. cache and events may be nil, in which case every
// read goes to the store and writes are not announced.
func NewService(store Repository, cache SnapshotCache, events realtime.Publisher, log logrus.FieldLogger) *Service {
	return &Service{store: store, cache: cache, events: events, log: log, now: time.Now}
}

// VehicleInput carries the admin-editable fields of a car.
type VehicleInput struct {
	Name            string       `json:"name"`
	Brand           string       `json:"brand"`
	Model           string       `json:"model"`
	Year            int          `json:"year"`
	Category        string       `json:"category"`
	PricePerDay     float64      `json:"price_per_day"`
	Features        []string     `json:"features"`
	ImageURL        string       `json:"image_url"`
	Images          []string     `json:"images"`
	Available       *bool        `json:"available"`
	FuelType        FuelType     `json:"fuel_type"`
	Transmission    Transmission `json:"transmission"`
	SeatingCapacity *int         `json:"seating_capacity"`
	Location        string       `json:"location"`
}

// Snapshot returns the current available cars, from cache when possible.
func (s *Service) Snapshot(ctx context.Context) ([]Vehicle, error) {
	if s.cache != nil {
		vehicles, ok, err := s.cache.Load(ctx)
		if err != nil {
			s.log.WithError(err).Warn("fleet cache read failed, using store")
		} else if ok {
			return vehicles, nil
		}
	}

	gen := s.generation.Load()
	vehicles, err := s.store.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available cars: %w", err)
	}
	if s.cache != nil {
		s.storeSnapshot(ctx, gen, vehicles)
	}
	return vehicles, nil
}

// storeSnapshot caches vehicles read at generation gen. A snapshot that an
// invalidation overtook is never left behind in the cache.
func (s *Service) storeSnapshot(ctx context.Context, gen uint64, vehicles []Vehicle) {
	if s.generation.Load() != gen {
		return
	}
	if err := s.cache.Store(ctx, vehicles); err != nil {
		s.log.WithError(err).Warn("fleet cache write failed")
		return
	}
	if s.generation.Load() != gen {
		s.dropCache(ctx)
	}
}

// Search filters the latest snapshot. When a text query finds nothing,
// alternatives from the category the query implies are suggested.
func (s *Service) Search(ctx context.Context, c FilterCriteria) (SearchResult, error) {
	vehicles, err := s.Snapshot(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	cars, err := FilterFleet(vehicles, c)
	if err != nil {
		return SearchResult{}, err
	}
	res := SearchResult{Cars: cars, Categories: Categories(vehicles)}
	if len(cars) == 0 && strings.TrimSpace(c.Query) != "" {
		res.Suggestions = SuggestAlternatives(vehicles, c.Query)
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.Get(ctx, id)
}

// PricePerDay serves the pricing module's rate lookup.
func (s *Service) PricePerDay(ctx context.Context, id types.ID) (float64, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return v.PricePerDay, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Vehicle, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *Service) Create(ctx context.Context, in VehicleInput) (*Vehicle, error) {
	now := s.now().UTC()
	v := &Vehicle{ID: types.NewID(), Available: true, CreatedAt: now}
	in.apply(v)
	v.UpdatedAt = now
	if err := validate(v, now); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.ActionInsert, v.ID)
	return v, nil
}

func (s *Service) Update(ctx context.Context, id types.ID, in VehicleInput) (*Vehicle, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(v)
	v.UpdatedAt = s.now().UTC()
	if err := validate(v, v.UpdatedAt); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.ActionUpdate, v.ID)
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, realtime.ActionDelete, id)
	return nil
}

// HandleEvent drops the snapshot whenever any instance reports a car change.
func (s *Service) HandleEvent(ctx context.Context, e realtime.Event) {
	if e.Table != realtime.TableCars {
		return
	}
	s.invalidate(ctx)
}

func (s *Service) changed(ctx context.Context, action realtime.Action, id types.ID) {
	s.invalidate(ctx)
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, realtime.NewEvent(realtime.TableCars, action, id, "")); err != nil {
		s.log.WithError(err).WithField("car_id", id).Warn("publish car change")
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.generation.Add(1)
	s.dropCache(ctx)
}

func (s *Service) dropCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("fleet cache invalidate failed")
	}
}

func (in VehicleInput) apply(v *Vehicle) {
	v.Name = strings.TrimSpace(in.Name)
	v.Brand = strings.TrimSpace(in.Brand)
	v.Model = strings.TrimSpace(in.Model)
	v.Year = in.Year
	v.Category = strings.TrimSpace(in.Category)
	v.PricePerDay = in.PricePerDay
	v.Features = normalizeList(in.Features)
	v.ImageURL = strings.TrimSpace(in.ImageURL)
	v.Images = normalizeList(in.Images)
	if in.Available != nil {
		v.Available = *in.Available
	}
	v.FuelType = in.FuelType
	v.Transmission = in.Transmission
	v.SeatingCapacity = in.SeatingCapacity
	v.Location = strings.TrimSpace(in.Location)
}

// ParseFeatures splits the comma separated form the admin screen submits.
func ParseFeatures(s string) []string {
	return normalizeList(strings.Split(s, ","))
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validate(v *Vehicle, now time.Time) error {
	switch {
	case v.Name == "" || v.Brand == "" || v.Model == "" || v.Category == "":
		return fmt.Errorf("%w: name, brand, model and category are required", ErrBadRequest)
	case v.PricePerDay <= 0:
		return fmt.Errorf("%w: price_per_day must be positive", ErrBadRequest)
	case v.Year < 1900 || v.Year > now.Year()+1:
		return fmt.Errorf("%w: year %d out of range", ErrBadRequest, v.Year)
	case v.SeatingCapacity != nil && *v.SeatingCapacity <= 0:
		return fmt.Errorf("%w: seating_capacity must be positive", ErrBadRequest)
	case v.FuelType != "" && !v.FuelType.Valid():
		return fmt.Errorf("%w: unknown fuel_type %q", ErrBadRequest, v.FuelType)
	case v.Transmission != "" && !v.Transmission.Valid():
		return fmt.Errorf("%w: unknown transmission %q", ErrBadRequest, v.Transmission)
	}
	return nil
}
