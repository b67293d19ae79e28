package core

import "time"

// JobStatus is the lifecycle state of a synthesis job.
type JobStatus string

// Job lifecycle states. Transitions are one-directional:
// pending -> processing -> completed | failed. Terminal states are final.
const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Provider identifies a speech-synthesis back-end.
type Provider string

// Supported synthesis providers.
const (
	// ProviderLocal is a self-hosted TTS HTTP service. Synthesis is free.
	ProviderLocal Provider = "local"
	// ProviderOpenAI is the OpenAI speech API, billed per million characters.
	ProviderOpenAI Provider = "openai"
	// ProviderElevenLabs is the ElevenLabs API, billed per thousand characters.
	ProviderElevenLabs Provider = "elevenlabs"
)

// Format is the audio codec of the assembled output file.
type Format string

// Supported output formats.
const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatAAC  Format = "aac"
	FormatFLAC Format = "flac"
)

// Job is one request to synthesize a text source into a single audio file.
// Records are persisted as JSON in the job store and mutated only by the
// orchestrator (progress, status, cost) and the reaper (retirement).
type Job struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	SourceRef string   `json:"source_ref"`
	Provider  Provider `json:"provider"`
	Voice     string   `json:"voice"`
	Format    Format   `json:"format"`

	Status          JobStatus `json:"status"`
	TotalChunks     int       `json:"total_chunks"`
	ProcessedChunks int       `json:"processed_chunks"`
	// ActualCost accumulates billed vendor spend in USD. It is never
	// rolled back, even when the job ends in failure.
	ActualCost float64 `json:"actual_cost"`

	FileKey      string `json:"file_key,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsTerminal reports whether the job reached a final state.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// IsDeleted reports whether the reaper has retired the job record.
func (j *Job) IsDeleted() bool {
	return j.DeletedAt != nil
}

// IsExpired reports whether the job's retention window has passed.
// Jobs without an expiry never expire.
func (j *Job) IsExpired(now time.Time) bool {
	return j.ExpiresAt != nil && j.ExpiresAt.Before(now)
}

// Chunk is one bounded text fragment synthesized by a single provider
// call. Chunks are ephemeral: they exist only for the duration of one
// orchestrator run and are never persisted.
type Chunk struct {
	Index int
	Text  string
}
