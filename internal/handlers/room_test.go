package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/roomcode/internal/handlers"
	"github.com/thereayou/roomcode/internal/middleware"
	"github.com/thereayou/roomcode/internal/models"
	"github.com/thereayou/roomcode/internal/rooms"
	"github.com/thereayou/roomcode/internal/rooms/mocks"
)

func setupRouter(store *mocks.Store, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := rooms.NewService(store)
	roomH := handlers.NewRoomHandler(svc, nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	r.POST("/api/rooms", roomH.CreateRoom)
	r.GET("/api/rooms", roomH.ListRooms)
	r.POST("/api/rooms/join", roomH.JoinRoom)
	r.POST("/api/rooms/:code/join", roomH.JoinRoom)
	r.GET("/api/rooms/:code/permissions", roomH.CheckPermissions)
	r.DELETE("/api/rooms/:id", roomH.DeleteRoom)
	return r
}

func TestCreateRoomEndpoint(t *testing.T) {
	userID := uuid.New()
	store := new(mocks.Store)
	router := setupRouter(store, userID)

	store.On("FindByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, rooms.ErrNotFound).Once()
	store.On("Save", mock.Anything, mock.AnythingOfType("*models.Room")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Room).ID = uuid.New()
		}).
		Return(nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Code      string   `json:"code"`
		CreatorID string   `json:"creator_id"`
		Members   []string `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^[A-Z]{4}$`, resp.Code)
	assert.Equal(t, userID.String(), resp.CreatorID)
	assert.Empty(t, resp.Members)
}

func TestJoinRoomEndpointBodyForm(t *testing.T) {
	userID := uuid.New()
	store := new(mocks.Store)
	router := setupRouter(store, userID)
	roomID := uuid.New()

	stored := &models.Room{ID: roomID, Code: "ABCD", CreatorID: "u1"}
	joined := &models.Room{
		ID: roomID, Code: "ABCD", CreatorID: "u1",
		Members: []models.RoomMember{{RoomID: roomID, MemberID: "u2"}},
	}
	store.On("FindByCode", mock.Anything, "ABCD").Return(stored, nil).Once()
	store.On("AddMember", mock.Anything, roomID, "u2").Return(nil).Once()
	store.On("FindByID", mock.Anything, roomID).Return(joined, nil).Once()

	body := bytes.NewBufferString(`{"code": "ABCD", "member_id": "u2"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/rooms/join", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"u2"`)
	store.AssertExpectations(t)
}

func TestJoinRoomEndpointPathForm(t *testing.T) {
	userID := uuid.New()
	store := new(mocks.Store)
	router := setupRouter(store, userID)
	roomID := uuid.New()

	stored := &models.Room{ID: roomID, Code: "ABCD", CreatorID: "u1"}
	joined := &models.Room{
		ID: roomID, Code: "ABCD", CreatorID: "u1",
		Members: []models.RoomMember{{RoomID: roomID, MemberID: userID.String()}},
	}
	// The caller joins as themselves when no member id is given.
	store.On("FindByCode", mock.Anything, "ABCD").Return(stored, nil).Once()
	store.On("AddMember", mock.Anything, roomID, userID.String()).Return(nil).Once()
	store.On("FindByID", mock.Anything, roomID).Return(joined, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/rooms/ABCD/join", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestJoinRoomEndpointUnknownCode(t *testing.T) {
	store := new(mocks.Store)
	router := setupRouter(store, uuid.New())

	store.On("FindByCode", mock.Anything, "ZZZZ").Return(nil, rooms.ErrNotFound).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/rooms/ZZZZ/join", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "room not found")
}

func TestCheckPermissionsEndpoint(t *testing.T) {
	userID := uuid.New()
	store := new(mocks.Store)
	router := setupRouter(store, userID)

	room := &models.Room{ID: uuid.New(), Code: "ABCD", CreatorID: userID.String()}
	store.On("FindByCode", mock.Anything, "ABCD").Return(room, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/rooms/ABCD/permissions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"is_creator": true}`, w.Body.String())
}

func TestDeleteRoomEndpointForbiddenForNonCreator(t *testing.T) {
	userID := uuid.New()
	store := new(mocks.Store)
	router := setupRouter(store, userID)
	roomID := uuid.New()

	room := &models.Room{ID: roomID, Code: "ABCD", CreatorID: "someone-else"}
	store.On("FindByID", mock.Anything, roomID).Return(room, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/rooms/"+roomID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	store.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestDeleteRoomEndpoint(t *testing.T) {
	userID := uuid.New()
	store := new(mocks.Store)
	router := setupRouter(store, userID)
	roomID := uuid.New()

	room := &models.Room{ID: roomID, Code: "ABCD", CreatorID: userID.String()}
	store.On("FindByID", mock.Anything, roomID).Return(room, nil).Once()
	store.On("DeleteByID", mock.Anything, roomID).Return(nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/rooms/"+roomID.String(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestListRoomsEndpoint(t *testing.T) {
	store := new(mocks.Store)
	router := setupRouter(store, uuid.New())

	list := []models.Room{
		{ID: uuid.New(), Code: "AAAA", CreatorID: "u1"},
		{ID: uuid.New(), Code: "BBBB", CreatorID: "u2"},
	}
	store.On("FindAll", mock.Anything).Return(list, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AAAA")
	assert.Contains(t, w.Body.String(), "BBBB")
}
