package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/roomcode/internal/middleware"
	"github.com/thereayou/roomcode/internal/models"
	"github.com/thereayou/roomcode/internal/rooms"
	"github.com/thereayou/roomcode/internal/tasks"
	ws "github.com/thereayou/roomcode/internal/websocket"
)

type RoomHandler struct {
	svc   *rooms.Service
	queue *asynq.Client
	hub   *ws.Hub
}

func NewRoomHandler(svc *rooms.Service, queue *asynq.Client, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{svc: svc, queue: queue, hub: hub}
}

// CreateRoom opens a new room owned by the authenticated user.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room, err := h.svc.CreateRoom(c.Request.Context(), userID.String())
	if err != nil {
		respondRoomError(c, err)
		return
	}

	c.JSON(http.StatusCreated, formatRoomResponse(room, h.hub))
}

// JoinRoom adds the caller (or an explicit member id) to the room with
// the given code. Accepts the code from the path or the body.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Code     string `json:"code"`
		MemberID string `json:"member_id"`
	}
	// The body is optional on the path form of the route.
	_ = c.ShouldBindJSON(&req)

	code := c.Param("code")
	if code == "" {
		code = req.Code
	}
	memberID := req.MemberID
	if memberID == "" {
		memberID = userID.String()
	}

	room, err := h.svc.JoinRoom(c.Request.Context(), code, memberID)
	if err != nil {
		respondRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, formatRoomResponse(room, h.hub))
}

// CheckPermissions reports whether the caller is the room's creator.
func (h *RoomHandler) CheckPermissions(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	code := c.Param("code")

	isCreator, err := h.svc.CheckPermissions(c.Request.Context(), code, userID.String())
	if err != nil {
		respondRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_creator": isCreator})
}

// DeleteRoom removes the room. Only its creator may do so.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, err := h.svc.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondRoomError(c, err)
		return
	}

	if room.CreatorID != userID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only room creator can delete room"})
		return
	}

	if err := h.svc.DeleteRoom(c.Request.Context(), roomID); err != nil {
		respondRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room deleted successfully"})
}

// ListRooms returns every active room.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	list, err := h.svc.ListRooms(c.Request.Context())
	if err != nil {
		respondRoomError(c, err)
		return
	}

	resp := make([]gin.H, len(list))
	for i := range list {
		resp[i] = formatRoomResponse(&list[i], h.hub)
	}
	c.JSON(http.StatusOK, gin.H{"rooms": resp})
}

// CreatorLeft accepts the fire-and-forget signal that a room's creator
// left and enqueues the deletion task. The sender gets no acknowledgment
// of the deletion itself.
func (h *RoomHandler) CreatorLeft(c *gin.Context) {
	var req struct {
		RoomID string `json:"room_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	task, err := tasks.NewCreatorLeftTask(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build task"})
		return
	}

	if _, err := h.queue.EnqueueContext(c.Request.Context(), task); err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to enqueue creator-left task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue signal"})
		return
	}

	c.Status(http.StatusAccepted)
}

func respondRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rooms.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, rooms.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func formatRoomResponse(room *models.Room, hub *ws.Hub) gin.H {
	resp := gin.H{
		"id":         room.ID,
		"code":       room.Code,
		"creator_id": room.CreatorID,
		"created_at": room.CreatedAt,
		"members":    room.MemberIDs(),
	}
	if hub != nil {
		resp["online_count"] = len(hub.GetRoomUsers(room.ID))
	}
	return resp
}
