// README: Booking store backed by PostgreSQL; availability check and insert share one transaction.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carrental/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	b.id::text, b.user_id, b.car_id::text, b.start_date, b.end_date, b.days,
	b.distance_km, b.include_driver, b.add_ons, b.total_amount, b.currency,
	b.payment_method, b.status, b.status_version, b.delivery_time,
	b.created_at, b.updated_at, c.name`

// Create inserts b unless the car is missing, unavailable, or already held for
// an overlapping range. The car row is locked so concurrent requests for the
// same car serialize.
func (s *Store) Create(ctx context.Context, b *Booking, e *Event) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var available bool
		err := tx.QueryRow(ctx, `SELECT available FROM cars WHERE id = $1 FOR UPDATE`, string(b.CarID)).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCarUnavailable
		}
		if err != nil {
			return err
		}
		if !available {
			return ErrCarUnavailable
		}

		var taken bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE car_id = $1
				  AND status IN ('pending','confirmed')
				  AND start_date <= $3
				  AND end_date >= $2
			)`, string(b.CarID), b.StartDate.Time, b.EndDate.Time,
		).Scan(&taken)
		if err != nil {
			return err
		}
		if taken {
			return ErrCarUnavailable
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (
				id, user_id, car_id, start_date, end_date, days,
				distance_km, include_driver, add_ons, total_amount, currency,
				payment_method, status, status_version, delivery_time,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6,
				$7, $8, $9, $10, $11,
				$12, $13, $14, $15,
				$16, $17
			)`,
			string(b.ID), b.UserID, string(b.CarID), b.StartDate.Time, b.EndDate.Time, b.Days,
			b.DistanceKm, b.IncludeDriver, b.AddOns, b.TotalAmount.Amount, b.TotalAmount.Currency,
			b.PaymentMethod, string(b.Status), b.StatusVersion, b.DeliveryTime,
			b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return appendEvent(ctx, tx, e)
	})
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	if !id.Valid() {
		return nil, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`, COALESCE(p.full_name, '')
		FROM bookings b
		JOIN cars c ON c.id = b.car_id
		LEFT JOIN profiles p ON p.user_id = b.user_id
		WHERE b.id = $1`, string(id),
	)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns the user's bookings, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.list(ctx, `
		SELECT `+bookingColumns+`, COALESCE(p.full_name, '')
		FROM bookings b
		JOIN cars c ON c.id = b.car_id
		LEFT JOIN profiles p ON p.user_id = b.user_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`, userID)
}

// ListAll returns every booking with car and renter names, newest first.
func (s *Store) ListAll(ctx context.Context) ([]Booking, error) {
	return s.list(ctx, `
		SELECT `+bookingColumns+`, COALESCE(p.full_name, '')
		FROM bookings b
		JOIN cars c ON c.id = b.car_id
		LEFT JOIN profiles p ON p.user_id = b.user_id
		ORDER BY b.created_at DESC`)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus moves the booking from one status to another if nobody changed
// it since version was read. It reports false on a lost race.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    updated_at = NOW()
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	return appendEvent(ctx, s.db, e)
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func appendEvent(ctx context.Context, db rowQuerier, e *Event) error {
	return db.QueryRow(ctx, `
		INSERT INTO booking_status_events (booking_id, from_status, to_status, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		string(e.BookingID), string(e.FromStatus), string(e.ToStatus), e.ActorID, e.CreatedAt,
	).Scan(&e.ID)
}

// Totals counts bookings and sums completed revenue overall and since monthStart.
func (s *Store) Totals(ctx context.Context, monthStart time.Time) (Totals, error) {
	var t Totals
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'completed'), 0)::bigint,
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'completed' AND created_at >= $1), 0)::bigint
		FROM bookings`, monthStart,
	).Scan(&t.Bookings, &t.Revenue, &t.MonthlyRevenue)
	return t, err
}

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.CarID, &b.StartDate.Time, &b.EndDate.Time, &b.Days,
		&b.DistanceKm, &b.IncludeDriver, &b.AddOns, &b.TotalAmount.Amount, &b.TotalAmount.Currency,
		&b.PaymentMethod, &b.Status, &b.StatusVersion, &b.DeliveryTime,
		&b.CreatedAt, &b.UpdatedAt, &b.CarName, &b.RenterName,
	)
	if err != nil {
		return Booking{}, err
	}
	if b.AddOns == nil {
		b.AddOns = []string{}
	}
	return b, nil
}
