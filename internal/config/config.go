// Package config holds the announcer's layered configuration: a YAML
// config file loaded through viper, overlaid with environment variables.
// The environment variable names match the ones the tool has always used
// (OPENAI_API_KEY, ELEVENLABS_API_KEY, POLL_INTERVAL_SECONDS, ...), so
// existing setups keep working.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment
// provides a value.
const (
	// DefaultVoiceID is the ElevenLabs "Sarah" voice.
	DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"

	// DefaultLLMModel is the chat model used for title simplification.
	DefaultLLMModel = "gpt-4o-mini"

	// DefaultOpenAIVoice is used when the OpenAI TTS engine is selected.
	DefaultOpenAIVoice = "onyx"

	DefaultPollInterval = 5 * time.Second
	DefaultOutputDir    = "output"
	DefaultEngine       = "elevenlabs"

	// MinPollInterval guards against hammering the media player.
	MinPollInterval = 1 * time.Second
	MaxPollInterval = 10 * time.Minute
)

// Sentinel errors surfaced during validation.
var (
	ErrMissingOpenAIKey     = errors.New("missing OPENAI_API_KEY")
	ErrMissingElevenLabsKey = errors.New("missing ELEVENLABS_API_KEY")
)

// Settings is the fully resolved configuration for a run.
type Settings struct {
	// Provider credentials and models
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `env:"ELEVENLABS_VOICE_ID"`
	LLMModel          string `env:"OPENAI_MODEL"`

	// Engine selects the TTS backend: elevenlabs, openai, or say.
	Engine string `env:"TYSA_ENGINE"`

	// OpenAIVoice is the voice for the OpenAI TTS engine.
	OpenAIVoice string `env:"TYSA_OPENAI_VOICE"`

	// OutputDir is where announcement audio files are written.
	OutputDir string `env:"OUTPUT_DIR"`

	// PollInterval is how often the media player is queried.
	PollInterval time.Duration `env:"-"`

	// PollIntervalSeconds mirrors the original environment knob.
	PollIntervalSeconds int `env:"POLL_INTERVAL_SECONDS"`

	// RunMode is "continuous" or "once".
	RunMode string `env:"RUN_MODE"`

	// Simplify toggles the LLM title rewrite step.
	Simplify bool `env:"-"`

	// Volume for local playback (0.0 to 1.0).
	Volume float64 `env:"-"`

	// Cache settings
	CacheDir       string `env:"TYSA_CACHE_DIR"`
	CacheMaxSizeMB int    `env:"-"`
	TextCachePath  string `env:"-"`
	DisableCache   bool   `env:"-"`

	// Rate limits, requests per minute
	LLMRequestsPerMinute int `env:"-"`
	TTSRequestsPerMinute int `env:"-"`

	// Debug enables verbose logging.
	Debug bool `env:"TYSA_DEBUG"`
}

// Load resolves settings from viper (config file and bound flags) and then
// overlays environment variables. Viper must already have its config file
// read; Load never touches the filesystem itself.
func Load() (*Settings, error) {
	s := &Settings{
		ElevenLabsVoiceID:    stringOr("voice", DefaultVoiceID),
		LLMModel:             stringOr("llm.model", DefaultLLMModel),
		Engine:               stringOr("engine", DefaultEngine),
		OpenAIVoice:          stringOr("openai.voice", DefaultOpenAIVoice),
		OutputDir:            stringOr("output_dir", DefaultOutputDir),
		RunMode:              stringOr("mode", "continuous"),
		Simplify:             boolOr("simplify", true),
		Volume:               floatOr("volume", 1.0),
		CacheDir:             viper.GetString("cache.dir"),
		TextCachePath:        viper.GetString("cache.text_path"),
		CacheMaxSizeMB:       intOr("cache.max_size", 100),
		DisableCache:         viper.GetBool("cache.disabled"),
		LLMRequestsPerMinute: intOr("llm.requests_per_minute", 30),
		TTSRequestsPerMinute: intOr("tts.requests_per_minute", 30),
		Debug:                viper.GetBool("debug"),
	}

	if secs := viper.GetInt("poll_interval"); secs > 0 {
		s.PollIntervalSeconds = secs
	}

	// Environment wins over the config file.
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("unable to parse environment: %w", err)
	}

	if s.PollIntervalSeconds > 0 {
		s.PollInterval = time.Duration(s.PollIntervalSeconds) * time.Second
	} else {
		s.PollInterval = DefaultPollInterval
	}

	s.OutputDir = ExpandPath(s.OutputDir)
	if s.CacheDir != "" {
		s.CacheDir = ExpandPath(s.CacheDir)
	}
	if s.TextCachePath != "" {
		s.TextCachePath = ExpandPath(s.TextCachePath)
	}

	return s, s.Validate()
}

// Validate checks credentials and bounds. The TTS key requirement depends
// on the selected engine: the local say engine needs no key at all.
func (s *Settings) Validate() error {
	switch s.Engine {
	case "elevenlabs":
		if s.ElevenLabsAPIKey == "" {
			return ErrMissingElevenLabsKey
		}
	case "openai":
		if s.OpenAIAPIKey == "" {
			return ErrMissingOpenAIKey
		}
	case "say":
		// offline, no credentials
	default:
		return fmt.Errorf("unknown TTS engine: %q (valid: elevenlabs, openai, say)", s.Engine)
	}

	if s.Simplify && s.OpenAIAPIKey == "" {
		return fmt.Errorf("title simplification requires an OpenAI key: %w", ErrMissingOpenAIKey)
	}

	if s.PollInterval < MinPollInterval || s.PollInterval > MaxPollInterval {
		return fmt.Errorf("poll interval must be between %v and %v, got %v",
			MinPollInterval, MaxPollInterval, s.PollInterval)
	}

	if s.Volume < 0.0 || s.Volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %.2f", s.Volume)
	}

	if s.CacheMaxSizeMB < 1 || s.CacheMaxSizeMB > 10000 {
		return fmt.Errorf("cache max_size must be between 1 and 10000 MB, got %d", s.CacheMaxSizeMB)
	}

	if s.RunMode != "continuous" && s.RunMode != "once" {
		return fmt.Errorf("run mode must be continuous or once, got %q", s.RunMode)
	}

	return nil
}

func stringOr(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

func floatOr(key string, fallback float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return fallback
}

func boolOr(key string, fallback bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return fallback
}
