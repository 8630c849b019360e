// README: Identifier type shared by cars, bookings, reviews and notifications.
package types

import "github.com/google/uuid"

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

// Valid reports whether v parses as a UUID, the format every table uses.
func (id ID) Valid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}
