package server

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/roomcode/internal/database"
	"github.com/thereayou/roomcode/internal/handlers"
	"github.com/thereayou/roomcode/internal/rooms"
	"github.com/thereayou/roomcode/internal/tasks"
	ws "github.com/thereayou/roomcode/internal/websocket"
	"github.com/thereayou/roomcode/internal/worker"
	"github.com/thereayou/roomcode/pkg/auth"
)

type Server struct {
	Router      *gin.Engine
	DB          *database.Database
	Redis       *redis.Client
	JWTManager  *auth.JWTManager
	Hub         *ws.Hub
	Worker      *worker.Server
	AsynqClient *asynq.Client
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			logrus.Info(".env not found, using environment variables")
		}
	}

	setupLogger()

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		logrus.Fatalf("Postgres connect failed: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logrus.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Redis connect failed: %v", err)
	}

	asynqOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		logrus.Fatalf("invalid REDIS_URL for task queue: %v", err)
	}
	asynqClient := asynq.NewClient(asynqOpt)

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	roomSvc := rooms.NewService(dbConn)

	hub := ws.NewHub(func(roomID uuid.UUID) {
		task, err := tasks.NewCreatorLeftTask(roomID)
		if err != nil {
			logrus.WithError(err).Error("Failed to build creator-left task")
			return
		}
		if _, err := asynqClient.Enqueue(task); err != nil {
			logrus.WithError(err).WithField("room_id", roomID).Error("Failed to enqueue creator-left task")
		}
	})

	workerSrv := worker.NewServer(asynqOpt, roomSvc)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	userH := handlers.NewUserHandler(dbConn)
	roomH := handlers.NewRoomHandler(roomSvc, asynqClient, hub)
	wsH := handlers.NewWebSocketHandler(hub, roomSvc)

	router := gin.Default()
	router.Use(corsMiddleware())
	APIEndpoints(router, authH, userH, roomH, wsH, jwtMgr, rdb)

	return &Server{
		Router:      router,
		DB:          dbConn,
		Redis:       rdb,
		JWTManager:  jwtMgr,
		Hub:         hub,
		Worker:      workerSrv,
		AsynqClient: asynqClient,
	}
}

func (s *Server) Run() {
	go s.Hub.Run()
	go s.Worker.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logrus.Infof("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		logrus.Fatalf("Server run error: %v", err)
	}
}

func setupLogger() {
	if os.Getenv("APP_ENV") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func corsMiddleware() gin.HandlerFunc {
	allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
