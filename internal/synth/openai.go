package synth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/book-expert/audiobook-service/internal/core"
)

// ErrOpenAIEmptyAudio indicates that the speech API returned no audio data.
var ErrOpenAIEmptyAudio = errors.New("openai speech API returned empty audio")

// openAISpeechFormats maps output formats to the OpenAI speech response
// formats. Every core.Format has an entry; format_test keeps the table
// exhaustive.
var openAISpeechFormats = map[core.Format]openai.SpeechResponseFormat{
	core.FormatMP3:  openai.SpeechResponseFormatMp3,
	core.FormatWAV:  openai.SpeechResponseFormatWav,
	core.FormatAAC:  openai.SpeechResponseFormatAac,
	core.FormatFLAC: openai.SpeechResponseFormatFlac,
}

// OpenAIEngine generates speech through the OpenAI speech API.
type OpenAIEngine struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAIEngine creates an engine backed by the OpenAI speech API.
func NewOpenAIEngine(apiKey string) *OpenAIEngine {
	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
		model:  openai.TTSModel1,
	}
}

// Speak synthesizes one chunk of text and returns the raw audio bytes.
func (e *OpenAIEngine) Speak(
	ctx context.Context,
	text, voiceID string,
	format core.Format,
) ([]byte, error) {
	responseFormat, ok := openAISpeechFormats[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownFormat, format)
	}

	resp, err := e.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          e.model,
		Input:          text,
		Voice:          openai.SpeechVoice(voiceID),
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech request failed: %w", err)
	}

	defer func() {
		_ = resp.Close()
	}()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read openai audio stream: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrOpenAIEmptyAudio
	}

	return audioData, nil
}
