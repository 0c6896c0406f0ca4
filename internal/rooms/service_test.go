package rooms_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/roomcode/internal/models"
	"github.com/thereayou/roomcode/internal/rooms"
	"github.com/thereayou/roomcode/internal/rooms/mocks"
)

var codePattern = regexp.MustCompile(`^[A-Z]{4}$`)

func TestCreateRoom(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	ctx := context.Background()

	store.On("FindByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, rooms.ErrNotFound).Once()

	assignedID := uuid.New()
	store.On("Save", mock.Anything, mock.MatchedBy(func(room *models.Room) bool {
		return codePattern.MatchString(room.Code) && room.CreatorID == "u1" && len(room.Members) == 0
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Room).ID = assignedID
		}).
		Return(nil).Once()

	room, err := svc.CreateRoom(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, assignedID, room.ID)
	assert.Regexp(t, codePattern, room.Code)
	assert.Equal(t, "u1", room.CreatorID)
	assert.Empty(t, room.MemberIDs())
	store.AssertExpectations(t)
}

func TestCreateRoomEmptyCreator(t *testing.T) {
	svc := rooms.NewService(new(mocks.Store))

	_, err := svc.CreateRoom(context.Background(), "")
	assert.ErrorIs(t, err, rooms.ErrInvalidInput)
}

func TestCreateRoomRetriesTakenCode(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)

	// First draw collides, second is free.
	store.On("FindByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(&models.Room{ID: uuid.New()}, nil).Once()
	store.On("FindByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, rooms.ErrNotFound).Once()
	store.On("Save", mock.Anything, mock.AnythingOfType("*models.Room")).Return(nil).Once()

	_, err := svc.CreateRoom(context.Background(), "u1")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCreateRoomCodeSpaceExhausted(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)

	// Every draw collides.
	store.On("FindByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(&models.Room{ID: uuid.New()}, nil)

	_, err := svc.CreateRoom(context.Background(), "u1")
	assert.ErrorIs(t, err, rooms.ErrCodeSpaceExhausted)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestJoinRoom(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	roomID := uuid.New()

	stored := &models.Room{ID: roomID, Code: "ABCD", CreatorID: "u1"}
	joined := &models.Room{
		ID: roomID, Code: "ABCD", CreatorID: "u1",
		Members: []models.RoomMember{{RoomID: roomID, MemberID: "u2", JoinedAt: time.Now()}},
	}

	store.On("FindByCode", mock.Anything, "ABCD").Return(stored, nil).Once()
	store.On("AddMember", mock.Anything, roomID, "u2").Return(nil).Once()
	store.On("FindByID", mock.Anything, roomID).Return(joined, nil).Once()

	room, err := svc.JoinRoom(context.Background(), "ABCD", "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, room.MemberIDs())
	store.AssertExpectations(t)
}

func TestJoinRoomIdempotent(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	roomID := uuid.New()

	stored := &models.Room{ID: roomID, Code: "ABCD", CreatorID: "u1"}
	joined := &models.Room{
		ID: roomID, Code: "ABCD", CreatorID: "u1",
		Members: []models.RoomMember{{RoomID: roomID, MemberID: "u2"}},
	}

	store.On("FindByCode", mock.Anything, "ABCD").Return(stored, nil).Twice()
	// The store treats a repeated add as a no-op.
	store.On("AddMember", mock.Anything, roomID, "u2").Return(nil).Twice()
	store.On("FindByID", mock.Anything, roomID).Return(joined, nil).Twice()

	_, err := svc.JoinRoom(context.Background(), "ABCD", "u2")
	require.NoError(t, err)

	room, err := svc.JoinRoom(context.Background(), "ABCD", "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, room.MemberIDs())
	store.AssertExpectations(t)
}

func TestJoinRoomUnknownCode(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)

	store.On("FindByCode", mock.Anything, "ZZZZ").Return(nil, rooms.ErrNotFound).Once()

	_, err := svc.JoinRoom(context.Background(), "ZZZZ", "u2")
	assert.ErrorIs(t, err, rooms.ErrNotFound)
	store.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckPermissions(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)

	room := &models.Room{ID: uuid.New(), Code: "ABCD", CreatorID: "u1"}
	store.On("FindByCode", mock.Anything, "ABCD").Return(room, nil)

	isCreator, err := svc.CheckPermissions(context.Background(), "ABCD", "u1")
	require.NoError(t, err)
	assert.True(t, isCreator)

	isCreator, err = svc.CheckPermissions(context.Background(), "ABCD", "u2")
	require.NoError(t, err)
	assert.False(t, isCreator)
}

func TestCheckPermissionsUnknownCode(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)

	store.On("FindByCode", mock.Anything, "ZZZZ").Return(nil, rooms.ErrNotFound).Once()

	_, err := svc.CheckPermissions(context.Background(), "ZZZZ", "u1")
	assert.ErrorIs(t, err, rooms.ErrNotFound)
}

func TestDeleteRoom(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	roomID := uuid.New()

	store.On("DeleteByID", mock.Anything, roomID).Return(nil).Once()

	require.NoError(t, svc.DeleteRoom(context.Background(), roomID))
	store.AssertExpectations(t)
}

func TestDeleteRoomMissing(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	roomID := uuid.New()

	store.On("DeleteByID", mock.Anything, roomID).Return(rooms.ErrNotFound).Once()

	err := svc.DeleteRoom(context.Background(), roomID)
	assert.ErrorIs(t, err, rooms.ErrNotFound)
}

func TestHandleCreatorLeft(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	roomID := uuid.New()

	store.On("DeleteByID", mock.Anything, roomID).Return(nil).Once()

	require.NoError(t, svc.HandleCreatorLeft(context.Background(), roomID))
	store.AssertExpectations(t)
}

func TestHandleCreatorLeftMissingRoom(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)
	roomID := uuid.New()

	store.On("DeleteByID", mock.Anything, roomID).Return(rooms.ErrNotFound).Once()

	// A room that is already gone counts as handled.
	assert.NoError(t, svc.HandleCreatorLeft(context.Background(), roomID))
}

func TestListRooms(t *testing.T) {
	store := new(mocks.Store)
	svc := rooms.NewService(store)

	list := []models.Room{
		{ID: uuid.New(), Code: "AAAA", CreatorID: "u1"},
		{ID: uuid.New(), Code: "BBBB", CreatorID: "u2"},
	}
	store.On("FindAll", mock.Anything).Return(list, nil).Once()

	got, err := svc.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
