// README: Booking service implements checkout, status transitions and dashboard stats.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"carrental/internal/modules/pricing"
	"carrental/internal/modules/realtime"
	"carrental/internal/types"
)

type Repository interface {
	Create(ctx context.Context, b *Booking, e *Event) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	Totals(ctx context.Context, monthStart time.Time) (Totals, error)
}

// Quoter prices a rental for a stored car.
type Quoter interface {
	Quote(ctx context.Context, carID types.ID, opts pricing.QuoteOptions) (pricing.Breakdown, error)
}

// Notifier delivers a booking notification to a user's inbox.
type Notifier interface {
	NotifyBooking(ctx context.Context, userID, title, message string) error
}

type CarCounter interface {
	Count(ctx context.Context) (int, error)
}

// Recorder observes completed checkouts, typically for metrics.
type Recorder interface {
	BookingCreated(paymentMethod string)
}

type Service struct {
	store    Repository
	pricing  Quoter
	cars     CarCounter
	notifier Notifier
	events   realtime.Publisher
	recorder Recorder
	currency string
	log      logrus.FieldLogger
	now      func() time.Time
}

type Deps struct {
	Pricing  Quoter
	Cars     CarCounter
	Notifier Notifier
	Events   realtime.Publisher
	Recorder Recorder
	Currency string
	Log      logrus.FieldLogger
}

func NewService(store Repository, deps Deps) *Service {
	currency := deps.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	return &Service{
		store:    store,
		pricing:  deps.Pricing,
		cars:     deps.Cars,
		notifier: deps.Notifier,
		events:   deps.Events,
		recorder: deps.Recorder,
		currency: currency,
		log:      deps.Log,
		now:      time.Now,
	}
}

type CreateCommand struct {
	UserID        string
	CarID         types.ID
	StartDate     Date
	EndDate       Date
	DistanceKm    float64
	IncludeDriver bool
	AddOns        []string
	Payment       PaymentMethod
	Details       PaymentDetails
}

type UpdateStatusCommand struct {
	BookingID types.ID
	Status    Status
	ActorID   string
}

// Create checks out a booking. The stored total is the quote's grand total
// for the inclusive day count between the two dates.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if strings.TrimSpace(cmd.UserID) == "" || cmd.CarID == "" {
		return nil, fmt.Errorf("%w: user and car are required", ErrBadRequest)
	}
	if err := cmd.Payment.Validate(cmd.Details); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	now := s.now()
	if cmd.StartDate.IsZero() || cmd.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrBadRequest)
	}
	if cmd.StartDate.Before(DateOf(now).Time) {
		return nil, fmt.Errorf("%w: start date %s is in the past", ErrBadRequest, cmd.StartDate)
	}
	if !cmd.EndDate.After(cmd.StartDate.Time) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrBadRequest)
	}
	days := DaysBetween(cmd.StartDate, cmd.EndDate)

	quote, err := s.pricing.Quote(ctx, cmd.CarID, pricing.QuoteOptions{
		Duration:      days,
		Unit:          pricing.UnitDays,
		DistanceKm:    cmd.DistanceKm,
		IncludeDriver: cmd.IncludeDriver,
		AddOns:        cmd.AddOns,
	})
	if err != nil {
		return nil, err
	}
	addOns := make([]string, 0, len(quote.AddOns))
	for _, a := range quote.AddOns {
		addOns = append(addOns, a.ID)
	}
	currency := quote.Currency
	if currency == "" {
		currency = s.currency
	}

	created := now.UTC()
	b := &Booking{
		ID:            types.NewID(),
		UserID:        cmd.UserID,
		CarID:         cmd.CarID,
		StartDate:     cmd.StartDate,
		EndDate:       cmd.EndDate,
		Days:          days,
		DistanceKm:    cmd.DistanceKm,
		IncludeDriver: cmd.IncludeDriver,
		AddOns:        addOns,
		TotalAmount:   types.Money{Amount: quote.GrandTotal, Currency: currency},
		PaymentMethod: cmd.Payment.Label(),
		Status:        cmd.Payment.InitialStatus(),
		DeliveryTime:  cmd.Payment.DeliveryTime(),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	err = s.store.Create(ctx, b, &Event{
		BookingID:  b.ID,
		FromStatus: StatusNone,
		ToStatus:   b.Status,
		ActorID:    cmd.UserID,
		CreatedAt:  created,
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.BookingCreated(string(cmd.Payment))
	}
	title, msg := "Booking Confirmed", fmt.Sprintf("Your booking for %d days is confirmed. Delivery in %s.", days, b.DeliveryTime)
	if b.Status == StatusPending {
		title, msg = "Booking Received", fmt.Sprintf("Your booking for %d days is pending cash payment. Delivery %s.", days, strings.ToLower(b.DeliveryTime))
	}
	s.notify(ctx, b.UserID, title, msg)
	s.publish(ctx, realtime.ActionInsert, b)
	return b, nil
}

// Get returns a booking visible to the caller: its owner, or any admin.
func (s *Service) Get(ctx context.Context, id types.ID, callerID string, admin bool) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && b.UserID != callerID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Booking{}
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Booking, error) {
	out, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Booking{}
	}
	return out, nil
}

// UpdateStatus applies an admin status change along AllowedTransitions.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*Booking, error) {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, cmd.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidState, b.Status, cmd.Status)
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, cmd.Status, b.StatusVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	from := b.Status
	b.Status = cmd.Status
	b.StatusVersion++
	b.UpdatedAt = s.now().UTC()

	if err := s.store.AppendEvent(ctx, &Event{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   b.Status,
		ActorID:    cmd.ActorID,
		CreatedAt:  b.UpdatedAt,
	}); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("append booking status event")
	}

	s.notify(ctx, b.UserID, "Booking "+statusTitle(b.Status), fmt.Sprintf("Your booking %s is now %s.", shortID(b.ID), b.Status))
	s.publish(ctx, realtime.ActionUpdate, b)
	return b, nil
}

// Stats aggregates the admin dashboard figures. Revenue only counts completed
// bookings; monthly revenue is limited to bookings created this calendar month.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	t, err := s.store.Totals(ctx, monthStart)
	if err != nil {
		return Stats{}, err
	}
	cars := 0
	if s.cars != nil {
		if cars, err = s.cars.Count(ctx); err != nil {
			return Stats{}, err
		}
	}
	return Stats{
		TotalBookings:  t.Bookings,
		TotalRevenue:   types.Money{Amount: t.Revenue, Currency: s.currency},
		MonthlyRevenue: types.Money{Amount: t.MonthlyRevenue, Currency: s.currency},
		TotalCars:      cars,
	}, nil
}

func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBooking(ctx, userID, title, message); err != nil {
		s.log.WithError(err).WithField("uid", userID).Warn("booking notification failed")
	}
}

func (s *Service) publish(ctx context.Context, action realtime.Action, b *Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, realtime.NewEvent(realtime.TableBookings, action, b.ID, b.UserID)); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("publish booking change")
	}
}

func statusTitle(s Status) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func shortID(id types.ID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}
