// README: Change events emitted after writes to cars, bookings and notifications.
package realtime

import (
	"context"
	"time"

	"carrental/internal/types"
)

type Table string

const (
	TableCars          Table = "cars"
	TableBookings      Table = "bookings"
	TableNotifications Table = "notifications"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event says that a row changed. It carries no row data; consumers refetch.
// UserID is the owning user for bookings and notifications.
type Event struct {
	Table    Table     `json:"table"`
	Action   Action    `json:"action"`
	RecordID types.ID  `json:"record_id"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

func NewEvent(table Table, action Action, id types.ID, userID string) Event {
	return Event{Table: table, Action: action, RecordID: id, UserID: userID, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler is notified of every event the broker receives, including events
// published by other instances.
type Handler interface {
	HandleEvent(ctx context.Context, e Event)
}

type HandlerFunc func(ctx context.Context, e Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, e Event) {
	f(ctx, e)
}
