package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"
)

// ElevenLabs API constants.
const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

	// elevenLabsModel is the multilingual synthesis model.
	elevenLabsModel = "eleven_multilingual_v2"

	// elevenLabsMaxText is the API's text limit per request.
	elevenLabsMaxText = 5000

	elevenLabsTimeout = 30 * time.Second
)

// ElevenLabsConfig configures the ElevenLabs engine.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string

	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	RequestsPerMinute int
}

// ElevenLabs synthesizes speech through the ElevenLabs REST API.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// elSynthesizeRequest is the API request body.
type elSynthesizeRequest struct {
	Text          string          `json:"text"`
	ModelID       string          `json:"model_id"`
	VoiceSettings elVoiceSettings `json:"voice_settings"`
}

// elVoiceSettings tunes the voice. The values match what the tool has
// always sent: a balanced, slightly expressive read.
type elVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// elErrorDetail is the API error body.
type elErrorDetail struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// NewElevenLabs creates the ElevenLabs engine.
func NewElevenLabs(cfg ElevenLabsConfig) (*ElevenLabs, error) {
	if cfg.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs engine requires a voice ID")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = elevenLabsBaseURL
	}

	return &ElevenLabs{
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: elevenLabsTimeout},
		limiter: newLimiter(cfg.RequestsPerMinute),
	}, nil
}

// Synthesize converts text to MP3 audio.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := checkText(text, elevenLabsMaxText); err != nil {
		return nil, err
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	body, err := sonic.Marshal(elSynthesizeRequest{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: elVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, e.decodeError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}
	return audio, nil
}

// decodeError extracts the API's error message from a non-200 response.
func (e *ElevenLabs) decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("synthesis failed with status %d", resp.StatusCode)
	}

	var detail elErrorDetail
	if err := sonic.Unmarshal(body, &detail); err == nil && detail.Detail.Message != "" {
		return fmt.Errorf("synthesis failed with status %d: %s (%s)",
			resp.StatusCode, detail.Detail.Message, detail.Detail.Status)
	}
	return fmt.Errorf("synthesis failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

// GetInfo describes the engine.
func (e *ElevenLabs) GetInfo() EngineInfo {
	return EngineInfo{
		Name:        "elevenlabs",
		Voice:       e.voiceID,
		Format:      "mp3",
		MaxTextSize: elevenLabsMaxText,
		IsOnline:    true,
	}
}

// Validate checks credentials.
func (e *ElevenLabs) Validate() error {
	if e.apiKey == "" {
		return fmt.Errorf("elevenlabs: %w", ErrMissingAPIKey)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources worth freeing.
func (e *ElevenLabs) Close() error { return nil }
