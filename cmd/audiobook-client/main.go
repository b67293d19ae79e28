// main package for the audiobook-client, an operator CLI that submits
// synthesis jobs and inspects their records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
	"unicode/utf8"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/audiobook-service/internal/audio"
	"github.com/book-expert/audiobook-service/internal/config"
	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/jobstore"
	"github.com/book-expert/audiobook-service/internal/objectstore"
	"github.com/book-expert/audiobook-service/internal/synth"
)

// Flag descriptions.
const (
	flagTextDesc     = "Path of the text file to synthesize"
	flagUserDesc     = "User ID owning the job"
	flagProviderDesc = "Synthesis provider (local, openai, elevenlabs)"
	flagVoiceDesc    = "Voice ID (provider default when empty)"
	flagFormatDesc   = "Output audio format (mp3, wav, aac, flac)"
	flagExpiresDesc  = "Days until the stored audio expires (0 uses the configured retention)"
	flagStatusDesc   = "Print the record of the given job ID and exit"
	flagHealthDesc   = "Check local synthesis service health and exit"
)

// Static errors.
var (
	ErrTextFlagMissing = errors.New("-text is required to submit a job")
	ErrUserFlagMissing = errors.New("-user is required to submit a job")
)

const (
	clientLogFile      = "audiobook-client.log"
	healthCheckTimeout = 10 * time.Second
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	textPath    string
	user        string
	provider    string
	voice       string
	format      string
	expiresDays int
	statusJobID string
	health      bool
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	clientLog, err := logger.New(os.TempDir(), clientLogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		closeErr := clientLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	cfg, err := config.Load(clientLog)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if flags.health {
		return handleHealthCheck(cfg)
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	jobs, err := jobstore.New(jetstreamContext, cfg.NATS.JobBucket)
	if err != nil {
		return fmt.Errorf("failed to create job store: %w", err)
	}

	if flags.statusJobID != "" {
		return printStatus(jobs, flags.statusJobID)
	}

	return submitJob(cfg, jetstreamContext, jobs, flags)
}

func parseFlags() appFlags {
	var flags appFlags
	flag.StringVar(&flags.textPath, "text", "", flagTextDesc)
	flag.StringVar(&flags.user, "user", "", flagUserDesc)
	flag.StringVar(&flags.provider, "provider", string(core.ProviderLocal), flagProviderDesc)
	flag.StringVar(&flags.voice, "voice", "", flagVoiceDesc)
	flag.StringVar(&flags.format, "format", string(core.FormatMP3), flagFormatDesc)
	flag.IntVar(&flags.expiresDays, "expires-days", 0, flagExpiresDesc)
	flag.StringVar(&flags.statusJobID, "status", "", flagStatusDesc)
	flag.BoolVar(&flags.health, "health", false, flagHealthDesc)
	flag.Parse()

	return flags
}

// submitJob uploads the source text and creates a pending job record for
// the scheduler to pick up.
func submitJob(
	cfg *config.Config,
	jetstreamContext nats.JetStreamContext,
	jobs core.JobStore,
	flags appFlags,
) error {
	if flags.textPath == "" {
		flag.Usage()

		return ErrTextFlagMissing
	}

	if flags.user == "" {
		return ErrUserFlagMissing
	}

	provider, err := parseProvider(flags.provider)
	if err != nil {
		return err
	}

	format, err := audio.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(flags.textPath)
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}

	textStore, err := objectstore.New(jetstreamContext, cfg.NATS.TextBucket)
	if err != nil {
		return fmt.Errorf("failed to create text store: %w", err)
	}

	ctx := context.Background()
	jobID := uuid.NewString()
	sourceRef := fmt.Sprintf("%s/%s.txt", flags.user, jobID)

	err = textStore.Upload(ctx, sourceRef, text, "text/plain")
	if err != nil {
		return fmt.Errorf("failed to upload source text: %w", err)
	}

	retentionDays := flags.expiresDays
	if retentionDays <= 0 {
		retentionDays = cfg.Scheduler.RetentionDays
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 0, retentionDays)

	job := &core.Job{
		ID:        jobID,
		UserID:    flags.user,
		SourceRef: sourceRef,
		Provider:  provider,
		Voice:     flags.voice,
		Format:    format,
		Status:    core.StatusPending,
		ExpiresAt: &expiresAt,
		CreatedAt: now,
	}

	err = jobs.Create(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	estimate := synth.Cost(provider, utf8.RuneCount(text))
	fmt.Printf("Job %s created (%d characters, estimated cost $%.6f)\n",
		jobID, utf8.RuneCount(text), estimate)

	return nil
}

func printStatus(jobs core.JobStore, jobID string) error {
	job, err := jobs.Get(context.Background(), jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	fmt.Printf("Job:       %s\n", job.ID)
	fmt.Printf("Status:    %s\n", job.Status)
	fmt.Printf("Provider:  %s (voice %q, format %s)\n", job.Provider, job.Voice, job.Format)
	fmt.Printf("Progress:  %d/%d chunks\n", job.ProcessedChunks, job.TotalChunks)
	fmt.Printf("Cost:      $%.6f\n", job.ActualCost)

	if job.DownloadURL != "" {
		fmt.Printf("Download:  %s (%d bytes)\n", job.DownloadURL, job.FileSize)
	}

	if job.ErrorMessage != "" {
		fmt.Printf("Error:     %s\n", job.ErrorMessage)
	}

	return nil
}

func handleHealthCheck(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	engine := synth.NewLocalEngine(cfg.Synthesis.LocalServiceURL, healthCheckTimeout)

	err := engine.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("Local synthesis service is not healthy: %v\n", err)

		return err
	}

	fmt.Println("Local synthesis service is healthy")

	return nil
}

func parseProvider(raw string) (core.Provider, error) {
	provider := core.Provider(raw)

	switch provider {
	case core.ProviderLocal, core.ProviderOpenAI, core.ProviderElevenLabs:
		return provider, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownProvider, raw)
	}
}
