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

// API endpoints of the self-hosted synthesis service.
const (
	apiGenerateSpeech = "/v1/generate/speech"
	apiHealth         = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

// Static errors for the local engine.
var (
	ErrLocalTextEmpty    = errors.New("text cannot be empty")
	ErrLocalEmptyAudio   = errors.New("received empty audio data")
	ErrLocalNotHealthy   = errors.New("local synthesis service is not healthy")
	ErrLocalContentType  = errors.New("unexpected response content type")
	ErrLocalServiceError = errors.New("local synthesis service error")
)

// localRequest is the JSON payload the self-hosted service accepts.
type localRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Format string `json:"format"`
}

// localErrorResponse is the structured error body the service returns on
// failure. Non-JSON error bodies are surfaced raw.
type localErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// LocalEngine generates speech through a self-hosted TTS HTTP service.
// Synthesis through it is free of vendor spend.
type LocalEngine struct {
	httpClient *http.Client
	baseURL    string
}

// NewLocalEngine creates a client for the self-hosted synthesis service.
// The baseURL must include the protocol and port, e.g. "http://localhost:8000".
func NewLocalEngine(baseURL string, timeout time.Duration) *LocalEngine {
	return &LocalEngine{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Speak sends one synthesis request and returns the raw audio bytes in the
// requested format.
func (e *LocalEngine) Speak(
	ctx context.Context,
	text, voiceID string,
	format core.Format,
) ([]byte, error) {
	if text == "" {
		return nil, ErrLocalTextEmpty
	}

	wantContentType, err := audio.ContentType(format)
	if err != nil {
		return nil, err
	}

	requestBody, err := json.Marshal(localRequest{
		Text:   text,
		Voice:  voiceID,
		Format: string(format),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := e.baseURL + apiGenerateSpeech

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

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to synthesis service at %s: %w",
			e.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.parseErrorResponse(resp)
	}

	contentType := resp.Header.Get(headerContentType)
	if contentType != wantContentType {
		return nil, fmt.Errorf(
			"%w: expected %s, got %s",
			ErrLocalContentType, wantContentType, contentType,
		)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrLocalEmptyAudio
	}

	return audioData, nil
}

// HealthCheck verifies that the self-hosted service is reachable and
// reports healthy. It should run before large workloads to fail fast.
func (e *LocalEngine) HealthCheck(ctx context.Context) error {
	url := e.baseURL + apiHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"health check failed for service at %s: %w",
			e.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %s", ErrLocalNotHealthy, resp.Status)
	}

	return nil
}

// parseErrorResponse decodes a structured JSON error from the service,
// falling back to the raw body so diagnostics are never lost.
func (e *LocalEngine) parseErrorResponse(resp *http.Response) error {
	var errorResp localErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf(
			"%w (%s): %s (code: %s)",
			ErrLocalServiceError, resp.Status, errorResp.Detail, errorResp.ErrorCode,
		)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		"%w: non-OK status %s, body: %s",
		ErrLocalServiceError, resp.Status, string(body),
	)
}
