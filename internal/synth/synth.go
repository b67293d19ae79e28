// Package synth normalizes voice catalogs and pricing across synthesis
// back-ends and performs per-chunk synthesis calls.
package synth

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/logger"
)

// errorCodeSynthesis classifies vendor-side synthesis failures.
const errorCodeSynthesis = "synthesis_failed"

// ProviderError reports a vendor-side synthesis failure. Partial output is
// never substituted for a failed call.
type ProviderError struct {
	Provider core.Provider
	Code     string
	Message  string
	cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed (%s): %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Engine performs raw audio generation for a single provider back-end.
// Engines do not price calls or resolve voices; the Registry owns both.
type Engine interface {
	Speak(ctx context.Context, text, voiceID string, format core.Format) ([]byte, error)
}

// Registry implements core.Synthesizer over a set of provider engines. It
// resolves voices against the static catalogs and attaches the linear
// per-character cost to every successful call.
type Registry struct {
	engines map[core.Provider]Engine
	log     *logger.Logger
}

// NewRegistry creates an empty registry. Engines are attached with
// Register during process wiring.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		engines: make(map[core.Provider]Engine),
		log:     log,
	}
}

// Register attaches an engine for a provider, replacing any previous one.
func (r *Registry) Register(provider core.Provider, engine Engine) {
	r.engines[provider] = engine
}

// Synthesize runs one chunk synthesis call against the requested provider.
// An unset or unknown voice falls back to the provider default. Vendor
// failures are returned as *ProviderError.
func (r *Registry) Synthesize(
	ctx context.Context,
	req core.SpeechRequest,
) (*core.SpeechResult, error) {
	engine, ok := r.engines[req.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownProvider, req.Provider)
	}

	voice := ResolveVoice(req.Provider, req.Voice)
	if req.Voice != "" && voice.ID != req.Voice {
		r.log.Warn(
			"Unknown voice %q for provider %s, using default %q",
			req.Voice, req.Provider, voice.ID,
		)
	}

	audio, err := engine.Speak(ctx, req.Text, voice.ID, req.Format)
	if err != nil {
		return nil, &ProviderError{
			Provider: req.Provider,
			Code:     errorCodeSynthesis,
			Message:  err.Error(),
			cause:    err,
		}
	}

	return &core.SpeechResult{
		Audio: audio,
		Cost:  Cost(req.Provider, utf8.RuneCountInString(req.Text)),
	}, nil
}
