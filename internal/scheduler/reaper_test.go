package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/scheduler"
)

// recordingStorage tracks deletes and can fail on chosen keys.
type recordingStorage struct {
	deleted    []string
	failOnKeys map[string]bool
}

func (s *recordingStorage) Upload(_ context.Context, _ string, _ []byte, _ string) error {
	return nil
}

func (s *recordingStorage) Download(_ context.Context, _ string) ([]byte, error) {
	return nil, core.ErrNotFound
}

func (s *recordingStorage) Delete(_ context.Context, key string) error {
	if s.failOnKeys[key] {
		return errMockRunner
	}

	s.deleted = append(s.deleted, key)

	return nil
}

func expiredJob(id, fileKey string, expiry time.Time) *core.Job {
	return &core.Job{
		ID:          id,
		Status:      core.StatusCompleted,
		FileKey:     fileKey,
		DownloadURL: "https://dl.example.com/" + fileKey,
		ExpiresAt:   &expiry,
	}
}

func TestSweep_RetiresExpiredJobs(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	withAudio := expiredJob("job-a", "user-1/job-a.mp3", past)
	withoutAudio := expiredJob("job-b", "", past)
	withoutAudio.Status = core.StatusFailed

	store := &fakeJobStore{expired: []*core.Job{withAudio, withoutAudio}}
	storage := &recordingStorage{failOnKeys: nil}

	reaper := scheduler.NewReaper(store, storage, newTestLogger(t))

	stats, err := reaper.Sweep(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Expired)
	assert.Equal(t, 2, stats.Retired)
	assert.Zero(t, stats.Failed)

	// Only the job that had stored audio triggers a delete.
	assert.Equal(t, []string{"user-1/job-a.mp3"}, storage.deleted)

	require.Len(t, store.updated, 2)

	for _, job := range store.updated {
		require.NotNil(t, job.DeletedAt)
		assert.True(t, job.DeletedAt.Equal(now))
		assert.Empty(t, job.DownloadURL)
	}
}

// A delete failure on one job must not stop the sweep.
func TestSweep_ContinuesAfterDeleteFailure(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	store := &fakeJobStore{
		expired: []*core.Job{
			expiredJob("job-a", "user-1/job-a.mp3", past),
			expiredJob("job-b", "user-1/job-b.mp3", past),
		},
	}
	storage := &recordingStorage{failOnKeys: map[string]bool{"user-1/job-a.mp3": true}}

	reaper := scheduler.NewReaper(store, storage, newTestLogger(t))

	stats, err := reaper.Sweep(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Expired)
	assert.Equal(t, 1, stats.Retired)
	assert.Equal(t, 1, stats.Failed)

	// The failed job's record stays untouched for the next sweep.
	require.Len(t, store.updated, 1)
	assert.Equal(t, "job-b", store.updated[0].ID)
}

func TestSweep_UpdateFailureCountsAsFailed(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	store := &fakeJobStore{
		expired:      []*core.Job{expiredJob("job-a", "", past)},
		updateErrFor: "job-a",
	}
	storage := &recordingStorage{failOnKeys: nil}

	reaper := scheduler.NewReaper(store, storage, newTestLogger(t))

	stats, err := reaper.Sweep(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Expired)
	assert.Zero(t, stats.Retired)
	assert.Equal(t, 1, stats.Failed)
}

func TestSweep_NothingExpired(t *testing.T) {
	t.Parallel()

	store := &fakeJobStore{expired: nil}
	storage := &recordingStorage{failOnKeys: nil}

	reaper := scheduler.NewReaper(store, storage, newTestLogger(t))

	stats, err := reaper.Sweep(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Zero(t, stats.Expired)
	assert.Zero(t, stats.Retired)
	assert.Zero(t, stats.Failed)
	assert.Empty(t, storage.deleted)
}
