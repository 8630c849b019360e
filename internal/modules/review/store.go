// README: Review store backed by PostgreSQL; keeps the car's rating aggregate in step.
package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"carrental/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts r and recomputes the car's rating and review count in the
// same transaction.
func (s *Store) Create(ctx context.Context, r *Review) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reviews (id, user_id, car_id, booking_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(r.ID), r.UserID, string(r.CarID), string(r.BookingID), r.Rating, r.Comment, r.CreatedAt,
		)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyReviewed
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE cars SET
				rating = agg.avg_rating,
				total_reviews = agg.n,
				updated_at = NOW()
			FROM (
				SELECT ROUND(AVG(rating)::numeric, 2) AS avg_rating, COUNT(*) AS n
				FROM reviews WHERE car_id = $1
			) agg
			WHERE cars.id = $1`, string(r.CarID),
		)
		return err
	})
}

// ListByCar returns a car's reviews, newest first.
func (s *Store) ListByCar(ctx context.Context, carID types.ID) ([]Review, error) {
	if !carID.Valid() {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id::text, user_id, car_id::text, booking_id::text, rating, comment, created_at
		FROM reviews
		WHERE car_id = $1
		ORDER BY created_at DESC`, string(carID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.CarID, &r.BookingID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
