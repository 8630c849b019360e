// README: Car store backed by PostgreSQL.
package fleet

import (
	"context"
	"database/sql"
	"errors"

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

const carColumns = `
	id::text, name, brand, model, year, category, price_per_day::float8, features,
	image_url, images, available, fuel_type, transmission, seating_capacity,
	rating::float8, total_reviews, location, created_at, updated_at`

// ListAvailable returns rentable cars, best rated first.
func (s *Store) ListAvailable(ctx context.Context) ([]Vehicle, error) {
	return s.list(ctx, `SELECT `+carColumns+` FROM cars WHERE available = TRUE ORDER BY rating DESC, name`)
}

// ListAll returns every car including unavailable ones, by name.
func (s *Store) ListAll(ctx context.Context) ([]Vehicle, error) {
	return s.list(ctx, `SELECT `+carColumns+` FROM cars ORDER BY name`)
}

func (s *Store) list(ctx context.Context, query string) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	if !id.Valid() {
		return nil, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id = $1`, string(id))
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) Create(ctx context.Context, v *Vehicle) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO cars (
			id, name, brand, model, year, category, price_per_day, features,
			image_url, images, available, fuel_type, transmission, seating_capacity,
			location, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17
		)`,
		string(v.ID), v.Name, v.Brand, v.Model, v.Year, v.Category, v.PricePerDay, v.Features,
		v.ImageURL, v.Images, v.Available, nullString(string(v.FuelType)), nullString(string(v.Transmission)), v.SeatingCapacity,
		v.Location, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// Update overwrites the editable columns. Rating and review count are owned by
// the review flow and left alone.
func (s *Store) Update(ctx context.Context, v *Vehicle) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE cars SET
			name = $2, brand = $3, model = $4, year = $5, category = $6,
			price_per_day = $7, features = $8, image_url = $9, images = $10,
			available = $11, fuel_type = $12, transmission = $13,
			seating_capacity = $14, location = $15, updated_at = $16
		WHERE id = $1`,
		string(v.ID), v.Name, v.Brand, v.Model, v.Year, v.Category,
		v.PricePerDay, v.Features, v.ImageURL, v.Images,
		v.Available, nullString(string(v.FuelType)), nullString(string(v.Transmission)),
		v.SeatingCapacity, v.Location, v.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	if !id.Valid() {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM cars WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&n)
	return n, err
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	var fuel, transmission sql.NullString
	var seats sql.NullInt32
	err := row.Scan(
		&v.ID, &v.Name, &v.Brand, &v.Model, &v.Year, &v.Category, &v.PricePerDay, &v.Features,
		&v.ImageURL, &v.Images, &v.Available, &fuel, &transmission, &seats,
		&v.Rating, &v.TotalReviews, &v.Location, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return Vehicle{}, err
	}
	v.FuelType = FuelType(fuel.String)
	v.Transmission = Transmission(transmission.String)
	if seats.Valid {
		n := int(seats.Int32)
		v.SeatingCapacity = &n
	}
	return v, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
