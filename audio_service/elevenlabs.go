package audio_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModel   = "eleven_multilingual_v2"
	elevenLabsFormat  = "pcm_44100"
)

// VoiceBackend is an optional generative speech service.
type VoiceBackend interface {
	Speak(ctx context.Context, text string) (Waveform, error)
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type ElevenLabsBackend struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	voiceID    string
	settings   VoiceSettings
}

func NewElevenLabsBackend(logger *slog.Logger, apiKey, voiceID string) *ElevenLabsBackend {
	return &ElevenLabsBackend{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		baseURL:    elevenLabsBaseURL,
		apiKey:     apiKey,
		voiceID:    voiceID,
		settings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			UseSpeakerBoost: true,
		},
	}
}

// WithBaseURL points the backend at another endpoint.
func (b *ElevenLabsBackend) WithBaseURL(url string) *ElevenLabsBackend {
	b.baseURL = strings.TrimRight(url, "/")
	return b
}

// Speak requests raw 44.1 kHz PCM and returns it as a mono waveform.
func (b *ElevenLabsBackend) Speak(ctx context.Context, text string) (Waveform, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"text":           text,
		"model_id":       elevenLabsModel,
		"voice_settings": b.settings,
	})
	if err != nil {
		return Waveform{}, fmt.Errorf("error marshaling request body: %w", err)
	}

	fullURL := fmt.Sprintf("%s/%s?output_format=%s", b.baseURL, b.voiceID, elevenLabsFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return Waveform{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("xi-api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Waveform{}, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Waveform{}, elevenLabsError(resp)
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return Waveform{}, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(pcm) < 2 {
		return Waveform{}, fmt.Errorf("ElevenLabs returned no audio")
	}

	b.logger.Debug("ElevenLabs audio received", slog.Int("bytes", len(pcm)))
	return PCMToWaveform(pcm, SampleRate, 1), nil
}

func elevenLabsError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			Service:    "ElevenLabs",
			StatusCode: resp.StatusCode,
			Message:    "Failed to read error response",
			ErrorType:  "unknown",
		}
	}

	var errorResp struct {
		Detail struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Detail.Message == "" {
		return &HTTPError{
			Service:    "ElevenLabs",
			StatusCode: resp.StatusCode,
			Message:    string(body),
			ErrorType:  "unknown",
			RawBody:    string(body),
		}
	}

	return &HTTPError{
		Service:    "ElevenLabs",
		StatusCode: resp.StatusCode,
		Message:    errorResp.Detail.Message,
		ErrorType:  errorResp.Detail.Status,
		RawBody:    string(body),
	}
}

// HTTPError is a non-2xx answer from a speech or music service.
type HTTPError struct {
	Service    string
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s API error (HTTP %d): %s (Type: %s)", e.Service, e.StatusCode, e.Message, e.ErrorType)
}
