package rooms

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/roomcode/internal/models"
)

// Store is the persistence contract for rooms. Lookups must report a
// missing room as ErrNotFound, never as a nil room with a nil error.
type Store interface {
	// Save inserts the room or updates it if the id already exists.
	// On insert the store assigns the id.
	Save(ctx context.Context, room *models.Room) error

	// FindByCode looks a room up by its join code.
	FindByCode(ctx context.Context, code string) (*models.Room, error)

	// FindByID looks a room up by its id.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Room, error)

	// FindAll returns every stored room, in store order.
	FindAll(ctx context.Context) ([]models.Room, error)

	// DeleteByID removes the room and its membership rows.
	// Returns ErrNotFound when no room has that id.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// AddMember records that memberID joined the room. Adding a member
	// that already joined is a no-op, and concurrent adds for the same
	// room must not lose each other's writes.
	AddMember(ctx context.Context, roomID uuid.UUID, memberID string) error
}
