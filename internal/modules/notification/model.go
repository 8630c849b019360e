// README: In-app notification model.
package notification

import (
	"errors"
	"time"

	"carrental/internal/types"
)

var (
	ErrNotFound   = errors.New("notification not found")
	ErrBadRequest = errors.New("bad request")
)

// PageSize is how many notifications List returns.
const PageSize = 20

type Kind string

const (
	KindBooking Kind = "booking"
	KindReview  Kind = "review"
	KindSystem  Kind = "system"
)

type Notification struct {
	ID        types.ID  `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Inbox is the newest page of a user's notifications. Unread counts every
// unread notification, not only those in the page.
type Inbox struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread_count"`
}
