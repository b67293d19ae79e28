package synth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/synth"
)

var errMockEngine = errors.New("mock engine failure")

// mockEngine is a scripted Engine implementation.
type mockEngine struct {
	shouldFail bool
	audio      []byte
	gotText    string
	gotVoice   string
	gotFormat  core.Format
}

func (m *mockEngine) Speak(
	_ context.Context,
	text, voiceID string,
	format core.Format,
) ([]byte, error) {
	m.gotText = text
	m.gotVoice = voiceID
	m.gotFormat = format

	if m.shouldFail {
		return nil, errMockEngine
	}

	return m.audio, nil
}

func newTestRegistry(t *testing.T, provider core.Provider, engine synth.Engine) *synth.Registry {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "registry-test.log")
	require.NoError(t, err)

	registry := synth.NewRegistry(testLogger)
	registry.Register(provider, engine)

	return registry
}

func TestRegistry_Synthesize_Success(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{shouldFail: false, audio: []byte("audio-bytes")}
	registry := newTestRegistry(t, core.ProviderOpenAI, engine)

	result, err := registry.Synthesize(context.Background(), core.SpeechRequest{
		Provider: core.ProviderOpenAI,
		Text:     "hello world",
		Voice:    "nova",
		Format:   core.FormatMP3,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("audio-bytes"), result.Audio)
	assert.InDelta(t, synth.Cost(core.ProviderOpenAI, 11), result.Cost, 1e-12)
	assert.Equal(t, "hello world", engine.gotText)
	assert.Equal(t, "nova", engine.gotVoice)
	assert.Equal(t, core.FormatMP3, engine.gotFormat)
}

func TestRegistry_Synthesize_VoiceFallback(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{shouldFail: false, audio: []byte("x")}
	registry := newTestRegistry(t, core.ProviderOpenAI, engine)

	_, err := registry.Synthesize(context.Background(), core.SpeechRequest{
		Provider: core.ProviderOpenAI,
		Text:     "hello",
		Voice:    "not-a-voice",
		Format:   core.FormatMP3,
	})
	require.NoError(t, err)

	assert.Equal(t, "alloy", engine.gotVoice, "unknown voice must fall back to the default")
}

func TestRegistry_Synthesize_UnknownProvider(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{shouldFail: false, audio: nil}
	registry := newTestRegistry(t, core.ProviderOpenAI, engine)

	_, err := registry.Synthesize(context.Background(), core.SpeechRequest{
		Provider: core.ProviderElevenLabs,
		Text:     "hello",
		Voice:    "",
		Format:   core.FormatMP3,
	})

	require.ErrorIs(t, err, core.ErrUnknownProvider)
}

func TestRegistry_Synthesize_WrapsProviderError(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{shouldFail: true, audio: nil}
	registry := newTestRegistry(t, core.ProviderElevenLabs, engine)

	_, err := registry.Synthesize(context.Background(), core.SpeechRequest{
		Provider: core.ProviderElevenLabs,
		Text:     "hello",
		Voice:    "",
		Format:   core.FormatMP3,
	})
	require.Error(t, err)

	var providerErr *synth.ProviderError

	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, core.ProviderElevenLabs, providerErr.Provider)
	assert.Contains(t, providerErr.Message, "mock engine failure")
	assert.ErrorIs(t, err, errMockEngine, "the vendor cause must stay unwrappable")
}
