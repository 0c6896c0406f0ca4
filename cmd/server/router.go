package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/roomcode/internal/handlers"
	"github.com/thereayou/roomcode/internal/middleware"
	"github.com/thereayou/roomcode/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	roomH *handlers.RoomHandler,
	wsH *handlers.WebSocketHandler,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", authH.Logout)
	}

	// API endpoints
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/users/me", userH.GetMe)

		api.POST("/rooms", roomH.CreateRoom)
		api.GET("/rooms", roomH.ListRooms)
		api.POST("/rooms/join", roomH.JoinRoom)
		api.POST("/rooms/:code/join", roomH.JoinRoom)
		api.GET("/rooms/:code/permissions", roomH.CheckPermissions)
		api.DELETE("/rooms/:id", roomH.DeleteRoom)
	}

	// Creator-left signals are fire-and-forget beacons; the browser
	// cannot attach auth headers to them.
	r.POST("/api/signals/creator-left", roomH.CreatorLeft)

	// WebSocket presence
	wsGroup := r.Group("/ws")
	wsGroup.Use(middleware.WSAuthMiddleware(jwtMgr, rdb))
	{
		wsGroup.GET("/rooms/:code", wsH.HandleRoomPresence)
	}
}
