package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/thereayou/roomcode/internal/rooms"
	"github.com/thereayou/roomcode/internal/tasks"
)

// Server wraps the asynq worker that consumes room lifecycle tasks.
type Server struct {
	server *asynq.Server
	log    *logrus.Entry
	svc    *rooms.Service
}

func NewServer(redisOpt asynq.RedisConnOpt, svc *rooms.Service) *Server {
	logEntry := logrus.WithField("component", "worker")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &Server{
		server: server,
		log:    logEntry,
		svc:    svc,
	}
}

// Start runs the worker loop. Call it from its own goroutine.
func (s *Server) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRoomCreatorLeft, NewCreatorLeftHandler(s.svc).ProcessTask)

	s.log.Info("Worker server starting")
	if err := s.server.Run(mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			s.log.Fatalf("Could not run worker server: %v", err)
		}
		s.log.Info("Worker server stopped")
	}
}

// Shutdown drains in-flight tasks and stops the worker.
func (s *Server) Shutdown() {
	s.log.Info("Shutting down worker server")
	s.server.Shutdown()
}
