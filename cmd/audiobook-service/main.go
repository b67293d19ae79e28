// main package for the audiobook-service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/audiobook-service/internal/config"
	"github.com/book-expert/audiobook-service/internal/content"
	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/jobstore"
	"github.com/book-expert/audiobook-service/internal/notify"
	"github.com/book-expert/audiobook-service/internal/objectstore"
	"github.com/book-expert/audiobook-service/internal/orchestrator"
	"github.com/book-expert/audiobook-service/internal/scheduler"
	"github.com/book-expert/audiobook-service/internal/synth"
)

const bootstrapLogFile = "audiobook-service-bootstrap.log"

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, "audiobook-service.log")
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, finalLog)
}

// serve wires the pipeline and runs the periodic drain and sweep loops
// until the context is canceled.
func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
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

	audioStore, err := objectstore.New(jetstreamContext, cfg.NATS.AudioBucket)
	if err != nil {
		return fmt.Errorf("failed to create audio store: %w", err)
	}

	textStore, err := objectstore.New(jetstreamContext, cfg.NATS.TextBucket)
	if err != nil {
		return fmt.Errorf("failed to create text store: %w", err)
	}

	var notifier core.Notifier
	if cfg.NATS.AudioCreatedSubject != "" {
		notifier = notify.New(natsConnection, cfg.NATS.AudioCreatedSubject)
	}

	orch := orchestrator.New(
		jobs,
		content.New(textStore),
		buildRegistry(cfg, log),
		audioStore,
		notifier,
		orchestrator.Settings{
			ChunkChars:      cfg.Synthesis.MaxChunkChars,
			ChunkDelay:      time.Duration(cfg.Synthesis.InterChunkDelayMS) * time.Millisecond,
			DownloadBaseURL: cfg.Scheduler.DownloadBaseURL,
		},
		log,
	)

	drainer := scheduler.New(jobs, orch, log)
	reaper := scheduler.NewReaper(jobs, audioStore, log)

	log.System(
		"Audiobook-Service initialized. Draining every %ds, sweeping every %ds.",
		cfg.Scheduler.DrainIntervalSeconds, cfg.Scheduler.SweepIntervalSeconds,
	)

	runLoops(ctx, cfg, log, drainer, reaper)

	return nil
}

// buildRegistry attaches one engine per configured provider. The local
// engine is always available; vendor engines require an API key.
func buildRegistry(cfg *config.Config, log *logger.Logger) *synth.Registry {
	registry := synth.NewRegistry(log)

	localTimeout := time.Duration(cfg.Synthesis.LocalTimeoutSeconds) * time.Second
	vendorTimeout := time.Duration(cfg.Synthesis.VendorTimeoutSeconds) * time.Second

	if cfg.Synthesis.LocalServiceURL != "" {
		registry.Register(
			core.ProviderLocal,
			synth.NewLocalEngine(cfg.Synthesis.LocalServiceURL, localTimeout),
		)
	}

	if cfg.Synthesis.OpenAIAPIKey != "" {
		registry.Register(
			core.ProviderOpenAI,
			synth.NewOpenAIEngine(cfg.Synthesis.OpenAIAPIKey),
		)
	}

	if cfg.Synthesis.ElevenLabsAPIKey != "" {
		registry.Register(
			core.ProviderElevenLabs,
			synth.NewElevenLabsEngine(
				cfg.Synthesis.ElevenLabsAPIKey,
				cfg.Synthesis.ElevenLabsBaseURL,
				vendorTimeout,
			),
		)
	}

	return registry
}

// runLoops ticks the drain and sweep independently; each tick is one
// standalone invocation, matching an external cron trigger.
func runLoops(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	drainer *scheduler.Scheduler,
	reaper *scheduler.Reaper,
) {
	drainTicker := time.NewTicker(time.Duration(cfg.Scheduler.DrainIntervalSeconds) * time.Second)
	defer drainTicker.Stop()

	sweepTicker := time.NewTicker(time.Duration(cfg.Scheduler.SweepIntervalSeconds) * time.Second)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.System("Shutdown requested, stopping scheduler loops.")

			return
		case <-drainTicker.C:
			_, err := drainer.DrainPending(ctx, cfg.Scheduler.BatchLimit)
			if err != nil {
				log.Error("Drain invocation failed: %v", err)
			}
		case <-sweepTicker.C:
			_, err := reaper.Sweep(ctx, time.Now().UTC())
			if err != nil {
				log.Error("Sweep invocation failed: %v", err)
			}
		}
	}
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
