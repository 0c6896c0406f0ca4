package rooms

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/roomcode/internal/models"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength      = 4
	maxCodeAttempts = 10
)

// Service owns the room lifecycle: creation with a unique join code,
// joining by code, the creator permission check and deletion. All state
// lives in the Store; the service keeps nothing between calls.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	if store == nil {
		panic("rooms: store cannot be nil")
	}
	return &Service{store: store}
}

// CreateRoom generates a fresh join code, persists a room owned by
// creatorID and returns it with the store-assigned id.
func (s *Service) CreateRoom(ctx context.Context, creatorID string) (*models.Room, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("%w: empty creator id", ErrInvalidInput)
	}
	logCtx := logrus.WithField("creator_id", creatorID)

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate room code")
		return nil, err
	}

	room := &models.Room{
		Code:      code,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
	if err := s.store.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to save new room")
		return nil, err
	}

	logCtx.WithFields(logrus.Fields{"room_id": room.ID, "code": room.Code}).Info("Room created")
	return room, nil
}

// JoinRoom adds memberID to the room with the given code. Joining twice
// with the same member leaves the membership unchanged.
func (s *Service) JoinRoom(ctx context.Context, code, memberID string) (*models.Room, error) {
	if code == "" || memberID == "" {
		return nil, fmt.Errorf("%w: empty code or member id", ErrInvalidInput)
	}
	logCtx := logrus.WithFields(logrus.Fields{"code": code, "member_id": memberID})

	room, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.Warn("Join rejected: no room with that code")
			return nil, err
		}
		logCtx.WithError(err).Error("Failed to look up room by code")
		return nil, err
	}

	if err := s.store.AddMember(ctx, room.ID, memberID); err != nil {
		logCtx.WithError(err).Error("Failed to add member")
		return nil, err
	}

	// Reload so the returned membership reflects the write.
	room, err = s.store.FindByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	logCtx.WithField("room_id", room.ID).Info("Member joined room")
	return room, nil
}

// CheckPermissions reports whether userID is the creator of the room
// with the given code. The creator is the only privileged user.
func (s *Service) CheckPermissions(ctx context.Context, code, userID string) (bool, error) {
	if code == "" || userID == "" {
		return false, fmt.Errorf("%w: empty code or user id", ErrInvalidInput)
	}
	room, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return room.CreatorID == userID, nil
}

// DeleteRoom removes the room by id. Deleting an unknown id reports
// ErrNotFound so callers can tell a stale id from success.
func (s *Service) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	if roomID == uuid.Nil {
		return fmt.Errorf("%w: empty room id", ErrInvalidInput)
	}
	if err := s.store.DeleteByID(ctx, roomID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			logrus.WithError(err).WithField("room_id", roomID).Error("Failed to delete room")
		}
		return err
	}
	logrus.WithField("room_id", roomID).Info("Room deleted")
	return nil
}

// HandleCreatorLeft deletes the room named by a creator-left signal,
// regardless of how many members remain. The signal is fire-and-forget:
// a room that is already gone counts as handled.
func (s *Service) HandleCreatorLeft(ctx context.Context, roomID uuid.UUID) error {
	logCtx := logrus.WithField("room_id", roomID)
	if err := s.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.Debug("Creator left an already deleted room")
			return nil
		}
		return err
	}
	logCtx.Info("Room deleted after creator left")
	return nil
}

// GetRoomByCode looks a room up by its join code.
func (s *Service) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrInvalidInput)
	}
	return s.store.FindByCode(ctx, code)
}

// GetRoom looks a room up by id.
func (s *Service) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	if roomID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty room id", ErrInvalidInput)
	}
	return s.store.FindByID(ctx, roomID)
}

// ListRooms returns every room in the store.
func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.store.FindAll(ctx)
}

// generateUniqueCode draws random codes until one is unused or the
// attempt limit is hit.
func (s *Service) generateUniqueCode(ctx context.Context) (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("rooms: read random bytes: %w", err)
		}
		for i := range buf {
			buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(buf)

		_, err := s.store.FindByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("rooms: check code uniqueness: %w", err)
		}
		logrus.WithField("code", code).Warnf("Generated code already taken, retrying (attempt %d)", attempt+1)
	}
	return "", ErrCodeSpaceExhausted
}
