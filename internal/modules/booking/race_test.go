// README: Concurrency tests for booking checkout and status changes against PostgreSQL (run with -race).
package booking

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"carrental/internal/infra"
	"carrental/internal/types"
)

func TestConcurrentCheckoutSameDates(t *testing.T) {
	ctx := context.Background()
	store, db := setupTestStore(t)
	carID := insertCar(t, db)
	svc := newDBService(store, carID)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateCommand{
				UserID:    "renter",
				CarID:     carID,
				StartDate: DateOf(time.Now().AddDate(0, 0, 3)),
				EndDate:   DateOf(time.Now().AddDate(0, 0, 5)),
				Payment:   PaymentCash,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrCarUnavailable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 success, got %d", success)
	}
}

func TestConcurrentCompleteVsCancel(t *testing.T) {
	ctx := context.Background()
	store, db := setupTestStore(t)
	carID := insertCar(t, db)
	svc := newDBService(store, carID)

	b, err := svc.Create(ctx, CreateCommand{
		UserID:    "renter",
		CarID:     carID,
		StartDate: DateOf(time.Now().AddDate(0, 0, 1)),
		EndDate:   DateOf(time.Now().AddDate(0, 0, 2)),
		Payment:   PaymentUPI,
		Details:   PaymentDetails{UPIID: "renter@bank"},
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, st := range []Status{StatusCompleted, StatusCancelled} {
		wg.Add(1)
		go func(st Status) {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, UpdateStatusCommand{BookingID: b.ID, Status: st, ActorID: "admin"})
			errs <- err
		}(st)
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 success, got %d", success)
	}

	got, err := store.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != StatusCompleted && got.Status != StatusCancelled {
		t.Fatalf("unexpected final status: %s", got.Status)
	}
	if got.StatusVersion != 1 {
		t.Fatalf("expected status_version 1, got %d", got.StatusVersion)
	}
}

func newDBService(store *Store, carID types.ID) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(store, Deps{Pricing: rateQuoter{carID: 1500}, Log: log})
}

func insertCar(t *testing.T, db *pgxpool.Pool) types.ID {
	t.Helper()
	id := types.NewID()
	_, err := db.Exec(context.Background(), `
		INSERT INTO cars (id, name, brand, model, year, category, price_per_day)
		VALUES ($1, 'Race Car', 'Maruti', 'Swift', 2024, 'Hatchback', 1500)`, string(id))
	if err != nil {
		t.Fatalf("insert car: %v", err)
	}
	return id
}

func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("CARRENTAL_TEST_DSN")
	if dsn == "" {
		t.Skip("CARRENTAL_TEST_DSN not set; skipping DB-backed race tests")
	}

	ctx := context.Background()
	db, err := infra.NewDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := infra.RunMigrations(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE booking_status_events, reviews, bookings, cars CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewStore(db), db
}
