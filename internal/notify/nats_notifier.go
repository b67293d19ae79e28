// Package notify publishes job lifecycle events for downstream services.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/audiobook-service/internal/core"
)

// NatsNotifier announces completed jobs on a NATS subject so downstream
// consumers learn the stored audio key without polling the job store.
type NatsNotifier struct {
	conn    *nats.Conn
	subject string
}

// New creates a notifier that publishes on the given subject.
func New(conn *nats.Conn, subject string) *NatsNotifier {
	return &NatsNotifier{
		conn:    conn,
		subject: subject,
	}
}

// JobCompleted publishes an audio-created event for a completed job.
func (n *NatsNotifier) JobCompleted(_ context.Context, job *core.Job) error {
	event := &events.AudioChunkCreatedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now().UTC(),
			WorkflowID: job.ID,
			EventID:    uuid.NewString(),
			UserID:     job.UserID,
			TenantID:   "",
		},
		AudioKey:   job.FileKey,
		PageNumber: job.TotalChunks,
		TotalPages: job.TotalChunks,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audio created event for job '%s': %w", job.ID, err)
	}

	err = n.conn.Publish(n.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish audio created event for job '%s': %w", job.ID, err)
	}

	return nil
}
