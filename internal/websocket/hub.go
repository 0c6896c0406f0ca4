package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MessageType enumerates the presence messages a room connection can see.
type MessageType string

const (
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	TypeMemberJoined MessageType = "member_joined"
	TypeMemberLeft   MessageType = "member_left"
	TypeRoomUsers    MessageType = "room_users"
	TypeRoomDeleted  MessageType = "room_deleted"
)

type Message struct {
	Type      MessageType     `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// CreatorLeftFunc is invoked when the creator of a room drops their last
// connection. The hub does not delete rooms itself; the callback hands
// the signal to whatever pipeline owns deletion.
type CreatorLeftFunc func(roomID uuid.UUID)

// Hub tracks which users are attached to which rooms. Each client is
// bound to a single room for the lifetime of its connection.
type Hub struct {
	clients map[uuid.UUID]*Client
	rooms   map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	creatorLeft CreatorLeftFunc

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(creatorLeft CreatorLeftFunc) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		creatorLeft: creatorLeft,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		client.Conn.Close()
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if _, ok := h.rooms[client.RoomID]; !ok {
		h.rooms[client.RoomID] = make(map[uuid.UUID]*Client)
	}
	h.rooms[client.RoomID][client.ID] = client

	logrus.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
		"room_id":   client.RoomID,
	}).Debug("Client attached to room")

	h.broadcastPresence(client.RoomID, client.UserID, TypeMemberJoined, client.ID)
	h.sendRoomUsers(client)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(h.clients, client.ID)
	creatorGone := false

	if room, ok := h.rooms[client.RoomID]; ok {
		delete(room, client.ID)

		// The creator may hold several tabs; only their last connection
		// to the room counts as leaving.
		if client.IsCreator && !h.userInRoom(client.RoomID, client.UserID) {
			creatorGone = true
			h.broadcastPresence(client.RoomID, client.UserID, TypeRoomDeleted, uuid.Nil)
		} else {
			h.broadcastPresence(client.RoomID, client.UserID, TypeMemberLeft, client.ID)
		}

		if len(room) == 0 {
			delete(h.rooms, client.RoomID)
		}
	}

	close(client.Send)
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
		"room_id":   client.RoomID,
	}).Debug("Client detached from room")

	if creatorGone && h.creatorLeft != nil {
		h.creatorLeft(client.RoomID)
	}
}

func (h *Hub) userInRoom(roomID, userID uuid.UUID) bool {
	if room, ok := h.rooms[roomID]; ok {
		for _, c := range room {
			if c.UserID == userID {
				return true
			}
		}
	}
	return false
}

func (h *Hub) broadcastPresence(roomID, userID uuid.UUID, msgType MessageType, excludeID uuid.UUID) {
	msg := Message{
		Type:      msgType,
		RoomID:    &roomID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.ID == excludeID {
				continue
			}
			select {
			case client.Send <- data:
			default:
				logrus.WithField("client_id", client.ID).Warn("Client send channel full")
			}
		}
	}
}

func (h *Hub) sendRoomUsers(client *Client) {
	userMap := make(map[uuid.UUID]bool)
	if room, ok := h.rooms[client.RoomID]; ok {
		for _, c := range room {
			userMap[c.UserID] = true
		}
	}
	users := make([]uuid.UUID, 0, len(userMap))
	for id := range userMap {
		users = append(users, id)
	}

	msg := Message{
		Type:      TypeRoomUsers,
		RoomID:    &client.RoomID,
		UserID:    client.UserID,
		Timestamp: time.Now(),
	}
	if data, err := json.Marshal(users); err == nil {
		msg.Data = data
		if msgData, err := json.Marshal(msg); err == nil {
			select {
			case client.Send <- msgData:
			default:
			}
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      TypePing,
		Timestamp: time.Now(),
	}
	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// GetRoomUsers returns the users currently attached to the room.
func (h *Hub) GetRoomUsers(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
