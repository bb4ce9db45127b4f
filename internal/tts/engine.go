// Package tts turns announcement text into audio. Three engines are
// available: the ElevenLabs API (default), the OpenAI speech API, and an
// offline engine built on the platform's speech command.
package tts

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// Errors returned by TTS engines.
var (
	// ErrEmptyText is returned when there is nothing to synthesize.
	ErrEmptyText = errors.New("no text to synthesize")

	// ErrTextTooLong is returned when the text exceeds the engine's limit.
	ErrTextTooLong = errors.New("text exceeds engine limit")

	// ErrMissingAPIKey is returned when an online engine has no credentials.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUnknownEngine is returned for an unrecognized engine name.
	ErrUnknownEngine = errors.New("unknown TTS engine")
)

// Engine converts text to speech audio.
type Engine interface {
	// Synthesize converts text to encoded audio in the engine's format.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// GetInfo describes the engine: name, voice, and audio format.
	GetInfo() EngineInfo

	// Validate checks that the engine's dependencies are usable: API
	// credentials for online engines, binaries for offline ones.
	Validate() error

	// Close releases any engine resources.
	Close() error
}

// EngineInfo describes an engine's identity and output.
type EngineInfo struct {
	// Name identifies the engine: elevenlabs, openai, or say.
	Name string

	// Voice is the active voice ID or name. It participates in cache
	// keys, so two voices never share cached audio.
	Voice string

	// Format is the audio container the engine produces: mp3 or wav.
	Format string

	// MaxTextSize is the longest text the engine accepts, in bytes.
	MaxTextSize int

	// IsOnline reports whether synthesis calls a remote API.
	IsOnline bool
}

// FactoryConfig carries the settings each engine might need.
type FactoryConfig struct {
	ElevenLabsAPIKey string
	VoiceID          string

	OpenAIAPIKey string
	OpenAIVoice  string

	// RequestsPerMinute limits calls for online engines.
	RequestsPerMinute int
}

// ValidateEngineSelection checks that the name refers to a known engine.
func ValidateEngineSelection(name string) error {
	switch name {
	case "elevenlabs", "openai", "say":
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: elevenlabs, openai, say)", ErrUnknownEngine, name)
	}
}

// NewEngine creates the named engine.
func NewEngine(name string, cfg FactoryConfig) (Engine, error) {
	switch name {
	case "elevenlabs":
		return NewElevenLabs(ElevenLabsConfig{
			APIKey:            cfg.ElevenLabsAPIKey,
			VoiceID:           cfg.VoiceID,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:            cfg.OpenAIAPIKey,
			Voice:             cfg.OpenAIVoice,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	case "say":
		return NewSay()
	default:
		return nil, fmt.Errorf("%w: %q (valid: elevenlabs, openai, say)", ErrUnknownEngine, name)
	}
}

// checkText applies the shared text constraints.
func checkText(text string, limit int) error {
	if text == "" {
		return ErrEmptyText
	}
	if limit > 0 && len(text) > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTextTooLong, len(text), limit)
	}
	return nil
}

func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		rpm = 30
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
}
