package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystone-labs/rbac-core/internal/core/ports"
	"github.com/keystone-labs/rbac-core/internal/testutil/memstore"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Queue: QueueMail}, nil
}

func TestMailQueue_Send(t *testing.T) {
	enq := &stubEnqueuer{}
	q := &MailQueue{client: enq, log: zerolog.Nop()}
	msg := ports.MailMessage{To: "a@example.com", Subject: "Password Reset", HTML: "<p>1</p>"}

	require.NoError(t, q.Send(context.Background(), msg))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskTypeSendMail, enq.tasks[0].Type())

	var got ports.MailMessage
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &got))
	assert.Equal(t, msg, got)
}

func TestMailQueue_SendError(t *testing.T) {
	q := &MailQueue{client: &stubEnqueuer{err: errors.New("redis down")}, log: zerolog.Nop()}
	assert.Error(t, q.Send(context.Background(), ports.MailMessage{To: "a@example.com"}))
}

func TestHandleSendMail(t *testing.T) {
	mailer := &memstore.Mailer{}
	handle := HandleSendMail(mailer, zerolog.Nop())
	msg := ports.MailMessage{To: "b@example.com", Subject: "Hi", HTML: "<p>hi</p>"}

	task, err := NewSendMailTask(msg)
	require.NoError(t, err)
	require.NoError(t, handle(context.Background(), task))
	assert.Equal(t, []ports.MailMessage{msg}, mailer.Sent())

	mailer.Fail = true
	err = handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = handle(context.Background(), asynq.NewTask(TaskTypeSendMail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
