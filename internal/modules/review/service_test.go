package review

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/modules/booking"
	"carrental/internal/modules/realtime"
	"carrental/internal/types"
)

type memBookings map[types.ID]booking.Booking

func (m memBookings) Get(_ context.Context, id types.ID) (*booking.Booking, error) {
	b, ok := m[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &b, nil
}

type memStore struct {
	reviews []Review
}

func (m *memStore) Create(_ context.Context, r *Review) error {
	for _, existing := range m.reviews {
		if existing.BookingID == r.BookingID {
			return ErrAlreadyReviewed
		}
	}
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memStore) ListByCar(_ context.Context, carID types.ID) ([]Review, error) {
	var out []Review
	for _, r := range m.reviews {
		if r.CarID == carID {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e realtime.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newTestService() (*Service, *memStore, *recordingPublisher) {
	bookings := memBookings{
		"done":    {ID: "done", UserID: "u1", CarID: "car1", Status: booking.StatusCompleted},
		"ongoing": {ID: "ongoing", UserID: "u1", CarID: "car1", Status: booking.StatusConfirmed},
		"theirs":  {ID: "theirs", UserID: "u2", CarID: "car1", Status: booking.StatusCompleted},
	}
	store := &memStore{}
	pub := &recordingPublisher{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(store, bookings, pub, log), store, pub
}

func TestSubmit(t *testing.T) {
	svc, store, pub := newTestService()

	r, err := svc.Submit(context.Background(), SubmitCommand{UserID: "u1", BookingID: "done", Rating: 5, Comment: "  Spotless car  "})
	require.NoError(t, err)
	assert.Equal(t, types.ID("car1"), r.CarID)
	assert.Equal(t, "Spotless car", r.Comment)
	assert.Len(t, store.reviews, 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.TableCars, pub.events[0].Table)
	assert.Equal(t, types.ID("car1"), pub.events[0].RecordID)
}

func TestSubmit_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  SubmitCommand
		want error
	}{
		{"rating too low", SubmitCommand{UserID: "u1", BookingID: "done", Rating: 0}, ErrBadRequest},
		{"rating too high", SubmitCommand{UserID: "u1", BookingID: "done", Rating: 6}, ErrBadRequest},
		{"unknown booking", SubmitCommand{UserID: "u1", BookingID: "nope", Rating: 4}, ErrNotFound},
		{"someone else's booking", SubmitCommand{UserID: "u1", BookingID: "theirs", Rating: 4}, ErrNotFound},
		{"not completed", SubmitCommand{UserID: "u1", BookingID: "ongoing", Rating: 4}, ErrNotCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := newTestService()
			_, err := svc.Submit(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.reviews)
			assert.Empty(t, pub.events)
		})
	}
}

func TestSubmit_OncePerBooking(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitCommand{UserID: "u1", BookingID: "done", Rating: 4})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitCommand{UserID: "u1", BookingID: "done", Rating: 2})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestListByCar(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	empty, err := svc.ListByCar(ctx, "car1")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = svc.Submit(ctx, SubmitCommand{UserID: "u1", BookingID: "done", Rating: 4})
	require.NoError(t, err)
	got, err := svc.ListByCar(ctx, "car1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
