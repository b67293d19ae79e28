// Package config provides the configuration structure for the
// audiobook-service.
package config

import (
	"errors"
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the configuration omits a value.
const (
	DefaultMaxChunkChars        = 2000
	DefaultInterChunkDelayMS    = 500
	DefaultBatchLimit           = 10
	DefaultDrainIntervalSeconds = 30
	DefaultSweepIntervalSeconds = 300
	DefaultRetentionDays        = 7
	DefaultLocalTimeoutSeconds  = 300
	DefaultVendorTimeoutSeconds = 60
)

// Static validation errors.
var (
	ErrNATSURLEmpty         = errors.New("nats url cannot be empty")
	ErrJobBucketEmpty       = errors.New("job bucket cannot be empty")
	ErrAudioBucketEmpty     = errors.New("audio bucket cannot be empty")
	ErrTextBucketEmpty      = errors.New("text bucket cannot be empty")
	ErrDownloadBaseURLEmpty = errors.New("download base url cannot be empty")
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                 string `toml:"url"`
	JobBucket           string `toml:"job_bucket"`
	AudioBucket         string `toml:"audio_bucket"`
	TextBucket          string `toml:"text_bucket"`
	AudioCreatedSubject string `toml:"audio_created_subject"`
}

// SynthesisConfig holds the provider back-end settings.
type SynthesisConfig struct {
	LocalServiceURL      string `toml:"local_service_url"`
	LocalTimeoutSeconds  int    `toml:"local_timeout_seconds"`
	OpenAIAPIKey         string `toml:"openai_api_key"`
	ElevenLabsAPIKey     string `toml:"elevenlabs_api_key"`
	ElevenLabsBaseURL    string `toml:"elevenlabs_base_url"`
	VendorTimeoutSeconds int    `toml:"vendor_timeout_seconds"`
	MaxChunkChars        int    `toml:"max_chunk_chars"`
	InterChunkDelayMS    int    `toml:"inter_chunk_delay_ms"`
}

// SchedulerConfig holds the batch scheduler and reaper settings.
type SchedulerConfig struct {
	BatchLimit           int    `toml:"batch_limit"`
	DrainIntervalSeconds int    `toml:"drain_interval_seconds"`
	SweepIntervalSeconds int    `toml:"sweep_interval_seconds"`
	DownloadBaseURL      string `toml:"download_base_url"`
	RetentionDays        int    `toml:"retention_days"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS      NATSConfig      `toml:"nats"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Paths     PathsConfig     `toml:"paths"`
}

// Load loads the configuration for the audiobook-service, applies the
// defaults, and validates the required fields.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills unset numeric settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Synthesis.MaxChunkChars <= 0 {
		c.Synthesis.MaxChunkChars = DefaultMaxChunkChars
	}

	if c.Synthesis.InterChunkDelayMS <= 0 {
		c.Synthesis.InterChunkDelayMS = DefaultInterChunkDelayMS
	}

	if c.Synthesis.LocalTimeoutSeconds <= 0 {
		c.Synthesis.LocalTimeoutSeconds = DefaultLocalTimeoutSeconds
	}

	if c.Synthesis.VendorTimeoutSeconds <= 0 {
		c.Synthesis.VendorTimeoutSeconds = DefaultVendorTimeoutSeconds
	}

	if c.Scheduler.BatchLimit <= 0 {
		c.Scheduler.BatchLimit = DefaultBatchLimit
	}

	if c.Scheduler.DrainIntervalSeconds <= 0 {
		c.Scheduler.DrainIntervalSeconds = DefaultDrainIntervalSeconds
	}

	if c.Scheduler.SweepIntervalSeconds <= 0 {
		c.Scheduler.SweepIntervalSeconds = DefaultSweepIntervalSeconds
	}

	if c.Scheduler.RetentionDays <= 0 {
		c.Scheduler.RetentionDays = DefaultRetentionDays
	}
}

// Validate checks the load-bearing fields.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return ErrNATSURLEmpty
	}

	if c.NATS.JobBucket == "" {
		return ErrJobBucketEmpty
	}

	if c.NATS.AudioBucket == "" {
		return ErrAudioBucketEmpty
	}

	if c.NATS.TextBucket == "" {
		return ErrTextBucketEmpty
	}

	if c.Scheduler.DownloadBaseURL == "" {
		return ErrDownloadBaseURLEmpty
	}

	return nil
}
