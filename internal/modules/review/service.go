// README: Review service; one rating per completed booking.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"carrental/internal/modules/booking"
	"carrental/internal/modules/realtime"
	"carrental/internal/types"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByCar(ctx context.Context, carID types.ID) ([]Review, error)
}

// BookingReader loads the booking a review refers to.
type BookingReader interface {
	Get(ctx context.Context, id types.ID) (*booking.Booking, error)
}

type Service struct {
	store    Repository
	bookings BookingReader
	events   realtime.Publisher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(store Repository, bookings BookingReader, events realtime.Publisher, log logrus.FieldLogger) *Service {
	return &Service{store: store, bookings: bookings, events: events, log: log, now: time.Now}
}

type SubmitCommand struct {
	UserID    string
	BookingID types.ID
	Rating    int
	Comment   string
}

func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*Review, error) {
	if cmd.Rating < MinRating || cmd.Rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrBadRequest, MinRating, MaxRating)
	}
	b, err := s.bookings.Get(ctx, cmd.BookingID)
	if errors.Is(err, booking.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Someone else's booking is reported as missing.
	if b.UserID != cmd.UserID {
		return nil, ErrNotFound
	}
	if b.Status != booking.StatusCompleted {
		return nil, ErrNotCompleted
	}

	r := &Review{
		ID:        types.NewID(),
		UserID:    cmd.UserID,
		CarID:     b.CarID,
		BookingID: b.ID,
		Rating:    cmd.Rating,
		Comment:   strings.TrimSpace(cmd.Comment),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, realtime.NewEvent(realtime.TableCars, realtime.ActionUpdate, r.CarID, "")); err != nil {
			s.log.WithError(err).WithField("car_id", r.CarID).Warn("publish rating change")
		}
	}
	return r, nil
}

func (s *Service) ListByCar(ctx context.Context, carID types.ID) ([]Review, error) {
	out, err := s.store.ListByCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Review{}
	}
	return out, nil
}
