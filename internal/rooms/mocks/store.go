package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/thereayou/roomcode/internal/models"
)

// Store is a testify mock of rooms.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Save(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *Store) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	args := m.Called(ctx, code)
	if room := args.Get(0); room != nil {
		return room.(*models.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) FindByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, id)
	if room := args.Get(0); room != nil {
		return room.(*models.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) FindAll(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	if list := args.Get(0); list != nil {
		return list.([]models.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Store) AddMember(ctx context.Context, roomID uuid.UUID, memberID string) error {
	args := m.Called(ctx, roomID, memberID)
	return args.Error(0)
}
