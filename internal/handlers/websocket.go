package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/roomcode/internal/middleware"
	"github.com/thereayou/roomcode/internal/rooms"
	ws "github.com/thereayou/roomcode/internal/websocket"
)

// WebSocketHandler attaches presence connections to rooms.
type WebSocketHandler struct {
	hub      *ws.Hub
	svc      *rooms.Service
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, svc *rooms.Service) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origin in prod
				return true
			},
		},
	}
}

// HandleRoomPresence upgrades the connection and binds it to the room
// with the given code. Dropping the creator's last connection triggers
// room deletion.
func (h *WebSocketHandler) HandleRoomPresence(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	uid := userID.(uuid.UUID)

	room, err := h.svc.GetRoomByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondRoomError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	isCreator := room.CreatorID == uid.String()
	client := ws.NewClient(h.hub, conn, uid, room.ID, isCreator)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
