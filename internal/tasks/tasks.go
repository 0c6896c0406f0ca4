package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TypeRoomCreatorLeft is enqueued when a room's creator disconnects
	// or signals departure. The worker deletes the room.
	TypeRoomCreatorLeft = "room:creator_left"
)

type CreatorLeftPayload struct {
	RoomID uuid.UUID `json:"room_id"`
}

// NewCreatorLeftTask builds the task carrying the id of the room whose
// creator left.
func NewCreatorLeftTask(roomID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(CreatorLeftPayload{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("tasks: marshal creator-left payload: %w", err)
	}
	return asynq.NewTask(TypeRoomCreatorLeft, payload), nil
}

// ParseCreatorLeftPayload decodes a creator-left task payload.
func ParseCreatorLeftPayload(t *asynq.Task) (CreatorLeftPayload, error) {
	var p CreatorLeftPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("tasks: unmarshal creator-left payload: %w", err)
	}
	if p.RoomID == uuid.Nil {
		return p, fmt.Errorf("tasks: creator-left payload without room id")
	}
	return p, nil
}
