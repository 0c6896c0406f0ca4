package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/roomcode/internal/rooms"
	"github.com/thereayou/roomcode/internal/tasks"
)

// CreatorLeftHandler consumes creator-left tasks and deletes the room.
type CreatorLeftHandler struct {
	svc *rooms.Service
}

func NewCreatorLeftHandler(svc *rooms.Service) *CreatorLeftHandler {
	if svc == nil {
		panic("worker: room service cannot be nil")
	}
	return &CreatorLeftHandler{svc: svc}
}

// ProcessTask implements asynq.Handler.
func (h *CreatorLeftHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseCreatorLeftPayload(t)
	if err != nil {
		// A malformed payload will never succeed on retry.
		logrus.WithError(err).Error("Dropping malformed creator-left task")
		return nil
	}

	logrus.WithField("room_id", payload.RoomID).Info("Processing creator-left signal")
	return h.svc.HandleCreatorLeft(ctx, payload.RoomID)
}
