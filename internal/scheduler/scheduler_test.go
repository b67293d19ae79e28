package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/orchestrator"
	"github.com/book-expert/audiobook-service/internal/scheduler"
)

var errMockRunner = errors.New("mock runner failure")

// fakeJobStore serves a scripted pending list and records updates.
type fakeJobStore struct {
	pending      []*core.Job
	expired      []*core.Job
	updated      []*core.Job
	listErr      error
	updateErrFor string
}

func (s *fakeJobStore) Create(_ context.Context, _ *core.Job) error { return nil }

func (s *fakeJobStore) Get(_ context.Context, _ string) (*core.Job, error) {
	return nil, core.ErrNotFound
}

func (s *fakeJobStore) Update(_ context.Context, job *core.Job) error {
	if s.updateErrFor != "" && job.ID == s.updateErrFor {
		return errMockRunner
	}

	s.updated = append(s.updated, job)

	return nil
}

func (s *fakeJobStore) Claim(_ context.Context, _ string) (*core.Job, error) {
	return nil, core.ErrNotFound
}

func (s *fakeJobStore) ListPending(_ context.Context, limit int) ([]*core.Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	if limit < len(s.pending) {
		return s.pending[:limit], nil
	}

	return s.pending, nil
}

func (s *fakeJobStore) ListExpired(_ context.Context, _ time.Time) ([]*core.Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	return s.expired, nil
}

// scriptedRunner returns one scripted outcome per job ID and records the
// order it was called in.
type scriptedRunner struct {
	outcomes map[string]orchestrator.Outcome
	errs     map[string]error
	order    []string
}

func (r *scriptedRunner) Run(_ context.Context, jobID string) (orchestrator.Outcome, error) {
	r.order = append(r.order, jobID)

	if err, ok := r.errs[jobID]; ok {
		return orchestrator.OutcomeSkipped, err
	}

	return r.outcomes[jobID], nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "scheduler-test.log")
	require.NoError(t, err)

	return testLogger
}

func pendingJob(id string) *core.Job {
	return &core.Job{ID: id, Status: core.StatusPending}
}

func TestDrainPending_RunsInOrder(t *testing.T) {
	t.Parallel()

	store := &fakeJobStore{
		pending: []*core.Job{pendingJob("job-a"), pendingJob("job-b"), pendingJob("job-c")},
	}
	runner := &scriptedRunner{
		outcomes: map[string]orchestrator.Outcome{
			"job-a": orchestrator.OutcomeCompleted,
			"job-b": orchestrator.OutcomeFailed,
			"job-c": orchestrator.OutcomeSkipped,
		},
	}

	sched := scheduler.New(store, runner, newTestLogger(t))

	stats, err := sched.DrainPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"job-a", "job-b", "job-c"}, runner.order)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestDrainPending_RespectsLimit(t *testing.T) {
	t.Parallel()

	store := &fakeJobStore{
		pending: []*core.Job{pendingJob("job-a"), pendingJob("job-b"), pendingJob("job-c")},
	}
	runner := &scriptedRunner{
		outcomes: map[string]orchestrator.Outcome{
			"job-a": orchestrator.OutcomeCompleted,
			"job-b": orchestrator.OutcomeCompleted,
		},
	}

	sched := scheduler.New(store, runner, newTestLogger(t))

	stats, err := sched.DrainPending(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"job-a", "job-b"}, runner.order)
	assert.Equal(t, 2, stats.Processed)
}

// A runner error on one job must not abort the batch.
func TestDrainPending_ContinuesAfterRunnerError(t *testing.T) {
	t.Parallel()

	store := &fakeJobStore{
		pending: []*core.Job{pendingJob("job-a"), pendingJob("job-b")},
	}
	runner := &scriptedRunner{
		outcomes: map[string]orchestrator.Outcome{
			"job-b": orchestrator.OutcomeCompleted,
		},
		errs: map[string]error{"job-a": errMockRunner},
	}

	sched := scheduler.New(store, runner, newTestLogger(t))

	stats, err := sched.DrainPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"job-a", "job-b"}, runner.order)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Succeeded)
}

func TestDrainPending_EmptyBatch(t *testing.T) {
	t.Parallel()

	store := &fakeJobStore{pending: nil}
	runner := &scriptedRunner{outcomes: nil}

	sched := scheduler.New(store, runner, newTestLogger(t))

	stats, err := sched.DrainPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Zero(t, stats.Processed)
	assert.Empty(t, runner.order)
}

func TestDrainPending_ListFailure(t *testing.T) {
	t.Parallel()

	store := &fakeJobStore{listErr: errMockRunner}
	runner := &scriptedRunner{outcomes: nil}

	sched := scheduler.New(store, runner, newTestLogger(t))

	_, err := sched.DrainPending(context.Background(), 10)
	require.ErrorIs(t, err, errMockRunner)
	assert.Empty(t, runner.order)
}
