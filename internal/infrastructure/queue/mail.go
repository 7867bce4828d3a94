package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/api/metrics"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

const (
	// QueueMail is the queue mail tasks are enqueued on.
	QueueMail = "mail"
	// TaskTypeSendMail is the task type for sending transactional mail.
	TaskTypeSendMail = "mail:send"
)

// NewSendMailTask constructs a mail task. Mail is never retried.
func NewSendMailTask(msg ports.MailMessage) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendMail, data, asynq.MaxRetry(0), asynq.Queue(QueueMail)), nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// MailQueue is a ports.Mailer that hands messages to the worker through
// Redis. Send succeeds once the task is enqueued.
type MailQueue struct {
	client enqueuer
	log    zerolog.Logger
}

func NewMailQueue(client *asynq.Client, log zerolog.Logger) *MailQueue {
	return &MailQueue{client: client, log: log}
}

func (q *MailQueue) Send(ctx context.Context, msg ports.MailMessage) error {
	task, err := NewSendMailTask(msg)
	if err != nil {
		return fmt.Errorf("build mail task: %w", err)
	}
	info, err := q.client.EnqueueContext(ctx, task)
	metrics.MailDispatchTotal.WithLabelValues("queue", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	q.log.Debug().Str("task_id", info.ID).Str("subject", msg.Subject).Msg("mail enqueued")
	return nil
}

// HandleSendMail returns the worker handler for TaskTypeSendMail, delivering
// through mailer.
func HandleSendMail(mailer ports.Mailer, log zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var msg ports.MailMessage
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			log.Error().Err(err).Msg("malformed mail task")
			return fmt.Errorf("decode mail task: %v: %w", err, asynq.SkipRetry)
		}
		if err := mailer.Send(ctx, msg); err != nil {
			log.Error().Err(err).Str("to", msg.To).Msg("mail delivery failed")
			return fmt.Errorf("deliver mail: %v: %w", err, asynq.SkipRetry)
		}
		return nil
	}
}
