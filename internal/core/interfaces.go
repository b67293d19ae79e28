// Package core defines the domain model and collaborator interfaces for the
// audiobook job-processing pipeline.
package core

import (
	"context"
	"time"
)

// JobStore persists job records and provides the atomic conditional claim
// that grants one worker exclusive processing rights over a job.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	// Claim atomically transitions a pending job to processing. It returns
	// ErrAlreadyClaimed when another worker holds the job and
	// ErrInvalidState when the job is terminal or retired.
	Claim(ctx context.Context, id string) (*Job, error)
	// ListPending returns up to limit pending jobs, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Job, error)
	// ListExpired returns all non-retired jobs whose expiry is before now,
	// regardless of status.
	ListExpired(ctx context.Context, now time.Time) ([]*Job, error)
}

// ObjectStore is a durable key-value blob store.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ContentSource supplies the raw text a job synthesizes. The text is
// produced by an upstream document-parsing component.
type ContentSource interface {
	GetText(ctx context.Context, sourceRef string) (string, error)
}

// SpeechRequest parameterizes one chunk synthesis call.
type SpeechRequest struct {
	Provider Provider
	Text     string
	Voice    string
	Format   Format
}

// SpeechResult is the outcome of one successful synthesis call.
type SpeechResult struct {
	Audio []byte
	// Cost is the billed vendor spend for this call, in USD.
	Cost float64
}

// Synthesizer performs one chunk's synthesis against a provider back-end.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
}

// Notifier announces completed jobs to downstream consumers.
type Notifier interface {
	JobCompleted(ctx context.Context, job *Job) error
}
