// Package orchestrator drives a single synthesis job through chunk-by-chunk
// synthesis, progress checkpointing, assembly, upload, and finalization.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/audiobook-service/internal/audio"
	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/textchunk"
)

// Outcome is the terminal result of one orchestrator run.
type Outcome string

// Run outcomes. Skipped means the claim was lost to another worker; that
// is a normal concurrent-scheduling result, not a failure.
const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// Job failure messages recorded on the record.
const (
	msgEmptyContent = "source content is empty, nothing to synthesize"
	fmtChunkFailed  = "chunk %d of %d failed: %v"
	fmtUploadFailed = "audio upload failed after synthesis: %v"
	fmtContentFail  = "failed to load source text: %v"
)

// Settings holds the tunables of a job run. All values come from explicit
// configuration; the orchestrator performs no ambient lookups.
type Settings struct {
	// ChunkChars bounds the character count of one synthesis call.
	ChunkChars int
	// ChunkDelay is the fixed pacing wait between consecutive chunk
	// calls. It is pacing, not retry backoff.
	ChunkDelay time.Duration
	// DownloadBaseURL prefixes stored file keys to form download URLs.
	DownloadBaseURL string
}

// Orchestrator runs one job at a time to a terminal state. Per-job
// processing is single-threaded: chunks of the same job are never
// synthesized concurrently.
type Orchestrator struct {
	jobs     core.JobStore
	content  core.ContentSource
	synth    core.Synthesizer
	storage  core.ObjectStore
	notifier core.Notifier
	settings Settings
	log      *logger.Logger
}

// New creates an orchestrator. The notifier may be nil when no completion
// events should be published.
func New(
	jobs core.JobStore,
	contentSource core.ContentSource,
	synthesizer core.Synthesizer,
	storage core.ObjectStore,
	notifier core.Notifier,
	settings Settings,
	log *logger.Logger,
) *Orchestrator {
	if settings.ChunkChars <= 0 {
		settings.ChunkChars = textchunk.DefaultChunkChars
	}

	return &Orchestrator{
		jobs:     jobs,
		content:  contentSource,
		synth:    synthesizer,
		storage:  storage,
		notifier: notifier,
		settings: settings,
		log:      log,
	}
}

// Run drives the job with the given ID to a terminal state.
//
// The claim is atomic: when another worker already holds the job, Run
// returns OutcomeSkipped with no side effects. A job that is terminal or
// retired returns core.ErrInvalidState. Any per-chunk or upload failure
// ends the job in failed state with the accumulated cost retained —
// synthesis spend is never rolled back.
func (o *Orchestrator) Run(ctx context.Context, jobID string) (Outcome, error) {
	job, err := o.jobs.Claim(ctx, jobID)
	if err != nil {
		if errors.Is(err, core.ErrAlreadyClaimed) {
			o.log.Info("Job %s already claimed by another worker, skipping", jobID)

			return OutcomeSkipped, nil
		}

		return OutcomeSkipped, fmt.Errorf("failed to claim job '%s': %w", jobID, err)
	}

	text, err := o.content.GetText(ctx, job.SourceRef)
	if err != nil {
		return o.fail(ctx, job, fmt.Sprintf(fmtContentFail, err))
	}

	if strings.TrimSpace(text) == "" {
		return o.fail(ctx, job, msgEmptyContent)
	}

	chunks := textchunk.Split(text, o.settings.ChunkChars)

	job.TotalChunks = len(chunks)
	job.ProcessedChunks = 0

	err = o.jobs.Update(ctx, job)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to record chunk count for job '%s': %w", job.ID, err)
	}

	buffers, chunkErr := o.runChunks(ctx, job, chunks)
	if chunkErr != nil {
		return o.fail(ctx, job, chunkErr.Error())
	}

	return o.finalize(ctx, job, buffers)
}

// chunkResult is the explicit outcome of one chunk synthesis call: either
// audio bytes with their billed cost, or the failure cause with the
// failing index.
type chunkResult struct {
	index int
	audio []byte
	cost  float64
	err   error
}

// runChunks synthesizes every chunk in index order, folding each result
// into the job's progress state. A checkpoint of {ProcessedChunks,
// ActualCost} is persisted after every successful chunk; the first failure
// stops the loop immediately, leaving the remaining chunks unattempted.
func (o *Orchestrator) runChunks(
	ctx context.Context,
	job *core.Job,
	chunks []core.Chunk,
) ([][]byte, error) {
	buffers := make([][]byte, 0, len(chunks))

	for _, chunk := range chunks {
		result := o.synthesizeChunk(ctx, job, chunk)
		if result.err != nil {
			return nil, fmt.Errorf(fmtChunkFailed, result.index+1, job.TotalChunks, result.err)
		}

		buffers = append(buffers, result.audio)
		job.ProcessedChunks = result.index + 1
		job.ActualCost += result.cost

		err := o.jobs.Update(ctx, job)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to checkpoint after chunk %d: %w", result.index+1, err,
			)
		}

		o.log.Info(
			"Job %s processed chunk %d/%d (cost so far: $%.6f)",
			job.ID, job.ProcessedChunks, job.TotalChunks, job.ActualCost,
		)

		if job.ProcessedChunks < job.TotalChunks {
			o.pace(ctx)
		}
	}

	return buffers, nil
}

func (o *Orchestrator) synthesizeChunk(
	ctx context.Context,
	job *core.Job,
	chunk core.Chunk,
) chunkResult {
	result, err := o.synth.Synthesize(ctx, core.SpeechRequest{
		Provider: job.Provider,
		Text:     chunk.Text,
		Voice:    job.Voice,
		Format:   job.Format,
	})
	if err != nil {
		return chunkResult{index: chunk.Index, audio: nil, cost: 0, err: err}
	}

	return chunkResult{index: chunk.Index, audio: result.Audio, cost: result.Cost, err: nil}
}

// pace waits the fixed inter-chunk delay, bounding the outbound call rate
// to vendor APIs.
func (o *Orchestrator) pace(ctx context.Context) {
	if o.settings.ChunkDelay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(o.settings.ChunkDelay):
	}
}

// finalize assembles the ordered chunk outputs, uploads the result, and
// marks the job completed. An upload failure fails the job while keeping
// the accumulated cost: the audio was generated, so the spend stands.
func (o *Orchestrator) finalize(
	ctx context.Context,
	job *core.Job,
	buffers [][]byte,
) (Outcome, error) {
	blob := audio.Assemble(buffers)

	key, err := o.fileKey(job)
	if err != nil {
		return o.fail(ctx, job, fmt.Sprintf(fmtUploadFailed, err))
	}

	contentType, err := audio.ContentType(job.Format)
	if err != nil {
		return o.fail(ctx, job, fmt.Sprintf(fmtUploadFailed, err))
	}

	err = o.storage.Upload(ctx, key, blob, contentType)
	if err != nil {
		return o.fail(ctx, job, fmt.Sprintf(fmtUploadFailed, err))
	}

	now := time.Now().UTC()

	job.Status = core.StatusCompleted
	job.FileKey = key
	job.FileSize = int64(len(blob))
	job.DownloadURL = strings.TrimSuffix(o.settings.DownloadBaseURL, "/") + "/" + key
	job.CompletedAt = &now

	err = o.jobs.Update(ctx, job)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to finalize job '%s': %w", job.ID, err)
	}

	o.log.Info(
		"Job %s completed: %d chunks, %d bytes, $%.6f",
		job.ID, job.TotalChunks, job.FileSize, job.ActualCost,
	)

	o.notifyCompleted(ctx, job)

	return OutcomeCompleted, nil
}

// notifyCompleted publishes the completion event best-effort. A publish
// failure is logged and never fails the job.
func (o *Orchestrator) notifyCompleted(ctx context.Context, job *core.Job) {
	if o.notifier == nil {
		return
	}

	err := o.notifier.JobCompleted(ctx, job)
	if err != nil {
		o.log.Warn("Failed to publish completion event for job %s: %v", job.ID, err)
	}
}

// fail records a terminal failure on the job. The accumulated cost stays
// on the record; incurred vendor spend is never rolled back.
func (o *Orchestrator) fail(ctx context.Context, job *core.Job, message string) (Outcome, error) {
	job.Status = core.StatusFailed
	job.ErrorMessage = message

	err := o.jobs.Update(ctx, job)
	if err != nil {
		return OutcomeFailed, fmt.Errorf(
			"failed to record failure for job '%s' (%s): %w", job.ID, message, err,
		)
	}

	o.log.Error("Job %s failed: %s", job.ID, message)

	return OutcomeFailed, nil
}

// fileKey derives the deterministic storage key for a job's assembled
// audio from its owner, ID, and format.
func (o *Orchestrator) fileKey(job *core.Job) (string, error) {
	ext, err := audio.Extension(job.Format)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s.%s", job.UserID, job.ID, ext), nil
}
