package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// openAIMaxText is the speech API's input limit.
const openAIMaxText = 4096

// OpenAIConfig configures the OpenAI speech engine.
type OpenAIConfig struct {
	APIKey string

	// Voice is one of alloy, echo, fable, onyx, nova, shimmer.
	Voice string

	RequestsPerMinute int
}

// speechClient is the slice of the OpenAI client the engine uses.
type speechClient interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAI synthesizes speech through the OpenAI speech API.
type OpenAI struct {
	client  speechClient
	apiKey  string
	voice   openai.SpeechVoice
	limiter *rate.Limiter
}

// NewOpenAI creates the OpenAI speech engine.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	voice, err := parseSpeechVoice(cfg.Voice)
	if err != nil {
		return nil, err
	}

	return &OpenAI{
		client:  openai.NewClient(cfg.APIKey),
		apiKey:  cfg.APIKey,
		voice:   voice,
		limiter: newLimiter(cfg.RequestsPerMinute),
	}, nil
}

// parseSpeechVoice maps a voice name to the API constant. Empty defaults
// to onyx.
func parseSpeechVoice(name string) (openai.SpeechVoice, error) {
	switch name {
	case "", "onyx":
		return openai.VoiceOnyx, nil
	case "alloy":
		return openai.VoiceAlloy, nil
	case "echo":
		return openai.VoiceEcho, nil
	case "fable":
		return openai.VoiceFable, nil
	case "nova":
		return openai.VoiceNova, nil
	case "shimmer":
		return openai.VoiceShimmer, nil
	default:
		return "", fmt.Errorf("unknown OpenAI voice: %q (valid: alloy, echo, fable, onyx, nova, shimmer)", name)
	}
}

// Synthesize converts text to MP3 audio.
func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := checkText(text, openAIMaxText); err != nil {
		return nil, err
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Close() //nolint:errcheck

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("unable to read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}
	return audio, nil
}

// GetInfo describes the engine.
func (o *OpenAI) GetInfo() EngineInfo {
	return EngineInfo{
		Name:        "openai",
		Voice:       string(o.voice),
		Format:      "mp3",
		MaxTextSize: openAIMaxText,
		IsOnline:    true,
	}
}

// Validate checks credentials.
func (o *OpenAI) Validate() error {
	if o.apiKey == "" {
		return fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	return nil
}

// Close is a no-op.
func (o *OpenAI) Close() error { return nil }
