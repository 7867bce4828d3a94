package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

const defaultConcurrency = 4

// Worker wraps the asynq server that drains the mail queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    zerolog.Logger
}

// NewWorker creates a Worker delivering queued mail through mailer.
// If concurrency <= 0, defaultConcurrency is used.
func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, mailer ports.Mailer, log zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueMail: 1},
		Logger:      asynqLogger{log: log},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSendMail, HandleSendMail(mailer, log))
	return &Worker{server: srv, mux: mux, log: log}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.log.Info().Str("queue", QueueMail).Msg("mail worker started")
	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info().Msg("mail worker stopped")
	return nil
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
