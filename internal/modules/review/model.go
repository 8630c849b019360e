// README: Car review model and errors.
package review

import (
	"errors"
	"time"

	"carrental/internal/types"
)

var (
	ErrNotFound        = errors.New("booking not found")
	ErrBadRequest      = errors.New("bad request")
	ErrNotCompleted    = errors.New("only completed bookings can be reviewed")
	ErrAlreadyReviewed = errors.New("booking already reviewed")
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        types.ID  `json:"id"`
	UserID    string    `json:"user_id"`
	CarID     types.ID  `json:"car_id"`
	BookingID types.ID  `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
