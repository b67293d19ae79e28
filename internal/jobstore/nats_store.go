// Package jobstore provides a NATS JetStream key-value implementation of
// the job store, including the atomic conditional claim that grants one
// worker exclusive processing rights over a job.
package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/book-expert/audiobook-service/internal/core"
)

// ErrJobExists indicates that a job record with the same ID already exists.
var ErrJobExists = errors.New("job already exists")

// NatsJobStore implements core.JobStore over a NATS JetStream key-value
// bucket. Each job is one JSON value keyed by its ID; the claim relies on
// the bucket's compare-and-swap revision check.
type NatsJobStore struct {
	bucket string
	kv     nats.KeyValue
}

// New creates a NatsJobStore, creating the bucket first and binding to it
// when it already exists.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*NatsJobStore, error) {
	kv, err := jetstreamContext.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Job records for the %s bucket.", bucketName),
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("failed to create key-value bucket '%s': %w", bucketName, err)
		}

		kv, err = jetstreamContext.KeyValue(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to existing key-value bucket '%s': %w", bucketName, err)
		}
	}

	return &NatsJobStore{
		bucket: bucketName,
		kv:     kv,
	}, nil
}

// Create persists a new job record. Creation fails when a record with the
// same ID already exists.
func (s *NatsJobStore) Create(_ context.Context, job *core.Job) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}

	job.UpdatedAt = now

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job '%s': %w", job.ID, err)
	}

	_, err = s.kv.Create(job.ID, data)
	if err != nil {
		if errors.Is(err, nats.ErrKeyExists) {
			return fmt.Errorf("job '%s': %w", job.ID, ErrJobExists)
		}

		return fmt.Errorf("failed to create job '%s': %w", job.ID, err)
	}

	return nil
}

// Get loads a job record by ID.
func (s *NatsJobStore) Get(_ context.Context, id string) (*core.Job, error) {
	entry, err := s.kv.Get(id)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("job '%s': %w", id, core.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get job '%s': %w", id, err)
	}

	return decodeJob(entry.Value())
}

// Update persists the current state of a job record and bumps UpdatedAt.
func (s *NatsJobStore) Update(_ context.Context, job *core.Job) error {
	job.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job '%s': %w", job.ID, err)
	}

	_, err = s.kv.Put(job.ID, data)
	if err != nil {
		return fmt.Errorf("failed to update job '%s': %w", job.ID, err)
	}

	return nil
}

// Claim atomically transitions a pending job to processing. The update is
// conditional on the record revision read here, so of any number of
// concurrent claim attempts exactly one succeeds; the rest observe
// core.ErrAlreadyClaimed. Terminal or retired jobs are not claimable and
// return core.ErrInvalidState.
func (s *NatsJobStore) Claim(_ context.Context, id string) (*core.Job, error) {
	entry, err := s.kv.Get(id)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("job '%s': %w", id, core.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get job '%s': %w", id, err)
	}

	job, err := decodeJob(entry.Value())
	if err != nil {
		return nil, err
	}

	if job.IsTerminal() || job.IsDeleted() {
		return nil, fmt.Errorf("job '%s' has status %s: %w", id, job.Status, core.ErrInvalidState)
	}

	if job.Status != core.StatusPending {
		return nil, fmt.Errorf("job '%s': %w", id, core.ErrAlreadyClaimed)
	}

	job.Status = core.StatusProcessing
	job.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job '%s': %w", job.ID, err)
	}

	_, err = s.kv.Update(id, data, entry.Revision())
	if err != nil {
		// A revision conflict means another worker won the claim race.
		return nil, fmt.Errorf("job '%s': %w", id, core.ErrAlreadyClaimed)
	}

	return job, nil
}

// ListPending returns up to limit pending jobs, oldest first.
func (s *NatsJobStore) ListPending(ctx context.Context, limit int) ([]*core.Job, error) {
	jobs, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]*core.Job, 0, len(jobs))

	for _, job := range jobs {
		if job.Status == core.StatusPending && !job.IsDeleted() {
			pending = append(pending, job)
		}
	}

	sortByAge(pending)

	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	return pending, nil
}

// ListExpired returns all non-retired jobs whose expiry is before now,
// regardless of status.
func (s *NatsJobStore) ListExpired(ctx context.Context, now time.Time) ([]*core.Job, error) {
	jobs, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	expired := make([]*core.Job, 0, len(jobs))

	for _, job := range jobs {
		if !job.IsDeleted() && job.IsExpired(now) {
			expired = append(expired, job)
		}
	}

	sortByAge(expired)

	return expired, nil
}

func (s *NatsJobStore) listAll(ctx context.Context) ([]*core.Job, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list keys in bucket '%s': %w", s.bucket, err)
	}

	jobs := make([]*core.Job, 0, len(keys))

	for _, key := range keys {
		job, err := s.Get(ctx, key)
		if err != nil {
			// A record deleted between Keys and Get is not an error.
			if errors.Is(err, core.ErrNotFound) {
				continue
			}

			return nil, err
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

func decodeJob(data []byte) (*core.Job, error) {
	var job core.Job

	err := json.Unmarshal(data, &job)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal job record: %w", err)
	}

	return &job, nil
}

// sortByAge orders jobs oldest first, breaking creation-time ties by ID so
// listings are deterministic.
func sortByAge(jobs []*core.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}

		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
}
