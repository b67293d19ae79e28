package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/audiobook-service/internal/audio"
	"github.com/book-expert/audiobook-service/internal/core"
)

// ElevenLabs API defaults.
const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModelID = "eleven_turbo_v2_5"

	defaultStability       = 0.5
	defaultSimilarityBoost = 0.75

	elevenLabsSpeechPath = "/v1/text-to-speech/"
	headerAPIKey         = "xi-api-key"
)

// Static errors for the ElevenLabs engine.
var (
	ErrElevenLabsEmptyAudio   = errors.New("elevenlabs returned empty audio")
	ErrElevenLabsServiceError = errors.New("elevenlabs request failed")
)

// elevenLabsRequest is the JSON payload for a synthesis call.
type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabsEngine generates speech through the ElevenLabs HTTP API.
type ElevenLabsEngine struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	modelID    string
}

// NewElevenLabsEngine creates an engine backed by the ElevenLabs API. An
// empty baseURL selects the public API endpoint.
func NewElevenLabsEngine(apiKey, baseURL string, timeout time.Duration) *ElevenLabsEngine {
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}

	return &ElevenLabsEngine{
		baseURL: baseURL,
		apiKey:  apiKey,
		modelID: defaultElevenLabsModelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Speak synthesizes one chunk of text with the given voice and returns the
// raw audio bytes.
func (e *ElevenLabsEngine) Speak(
	ctx context.Context,
	text, voiceID string,
	format core.Format,
) ([]byte, error) {
	wantContentType, err := audio.ContentType(format)
	if err != nil {
		return nil, err
	}

	requestBody, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       defaultStability,
			SimilarityBoost: defaultSimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := e.baseURL + elevenLabsSpeechPath + voiceID

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, wantContentType)
	httpReq.Header.Set(headerAPIKey, e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to elevenlabs at %s: %w",
			e.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, fmt.Errorf(
			"%w: status %s, body: %s",
			ErrElevenLabsServiceError, resp.Status, string(body),
		)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrElevenLabsEmptyAudio
	}

	return audioData, nil
}
