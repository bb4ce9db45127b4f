// Package simplify rewrites track titles into something a radio announcer
// would actually say. Classical metadata in particular is full of opus
// numbers, catalog IDs, and tempo markings that sound terrible when read
// aloud; a small chat completion strips them out.
package simplify

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/tysa/internal/player"
)

// systemPrompt instructs the model to strip announcement-hostile noise
// from titles and shorten composer names. The response contract is a bare
// "Title by Artist" line.
const systemPrompt = `You simplify song titles for a spoken radio announcement.

Remove ALL of the following:
- Opus numbers (Op. 71, Op.posth)
- Movement numbers (I., II., III., IV., No. 13)
- Act numbers (Act 2, Act II)
- Tempo markings (Allegro, Andante, Moderato, Presto, Adagio, Largo, Vivace, etc.)
- Catalog numbers (BWV 565, K. 331, D. 960, Hob., RV, etc.)
- Key signatures (in E Major, in D Minor, in B-flat Major, E-Dur, etc.)
- Scene descriptions (Scène, Danse des cygnes, etc.)
- Remaster notes (Remastered, 2023 Remaster, etc.)
- Version notes (Radio Edit, Extended Version, etc.)

Keep ONLY:
- The main piece name (Swan Lake, The Nutcracker, Moonlight Sonata)
- Recognizable subtitles (Waltz of the Flowers, Ode to Joy)

Shorten composer names:
- 'Pyotr Ilyich Tchaikovsky' → 'Tchaikovsky'
- 'Johann Sebastian Bach' → 'Bach'
- 'Ludwig van Beethoven' → 'Beethoven'
- 'Wolfgang Amadeus Mozart' → 'Mozart'

Respond with ONLY the simplified title and artist, formatted as: Title by Artist
No quotes, no extra text, no explanations.`

// completionClient is the slice of the OpenAI client the simplifier uses.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Simplifier rewrites track titles through a chat model.
type Simplifier struct {
	client  completionClient
	model   string
	limiter *rate.Limiter
}

// Config holds simplifier configuration.
type Config struct {
	APIKey string
	Model  string

	// RequestsPerMinute limits calls to the completion API.
	RequestsPerMinute int
}

// New creates a Simplifier backed by the OpenAI API.
func New(cfg Config) (*Simplifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("simplifier requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}

	return &Simplifier{
		client:  openai.NewClient(cfg.APIKey),
		model:   cfg.Model,
		limiter: newLimiter(cfg.RequestsPerMinute),
	}, nil
}

func newLimiter(rpm int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
}

// Simplify rewrites a track for announcement. On API failure the caller
// should fall back to the original track; the error is returned so the
// failure can be logged.
func (s *Simplifier) Simplify(ctx context.Context, track player.Track) (player.Track, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return track, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   100,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: track.String()},
		},
	})
	if err != nil {
		return track, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return track, fmt.Errorf("chat completion returned no choices")
	}

	return parseResponse(strings.TrimSpace(resp.Choices[0].Message.Content), track), nil
}

// parseResponse splits the model's "Title by Artist" reply. The split is on
// the LAST " by " so titles containing the word survive ("Stand by Me by
// Ben E. King"). A reply without the separator keeps the original artist.
func parseResponse(reply string, original player.Track) player.Track {
	if reply == "" {
		return original
	}

	idx := strings.LastIndex(reply, " by ")
	if idx < 0 {
		return player.Track{Title: reply, Artist: original.Artist}
	}

	title := strings.TrimSpace(reply[:idx])
	artist := strings.TrimSpace(reply[idx+len(" by "):])
	if title == "" || artist == "" {
		return original
	}

	return player.Track{Title: title, Artist: artist}
}
