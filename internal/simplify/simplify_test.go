package simplify

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dgnsrekt/tysa/internal/player"
)

// stubClient returns a canned completion or error.
type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func newTestSimplifier(c completionClient) *Simplifier {
	return &Simplifier{
		client:  c,
		model:   openai.GPT4oMini,
		limiter: newLimiter(6000),
	}
}

func TestSimplify_RewritesTrack(t *testing.T) {
	stub := &stubClient{reply: "Swan Lake by Tchaikovsky"}
	s := newTestSimplifier(stub)

	in := player.Track{
		Title:  "Swan Lake, Op. 20, Act II: No. 10, Scène. Moderato",
		Artist: "Pyotr Ilyich Tchaikovsky",
	}

	got, err := s.Simplify(context.Background(), in)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}

	want := player.Track{Title: "Swan Lake", Artist: "Tchaikovsky"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if stub.calls != 1 {
		t.Errorf("expected exactly one API call, got %d", stub.calls)
	}
}

func TestSimplify_APIErrorReturnsOriginal(t *testing.T) {
	stub := &stubClient{err: errors.New("rate limited")}
	s := newTestSimplifier(stub)

	in := player.Track{Title: "Hey Jude", Artist: "The Beatles"}

	got, err := s.Simplify(context.Background(), in)
	if err == nil {
		t.Fatal("expected error to be surfaced")
	}
	if got != in {
		t.Errorf("failed simplification must return the original track, got %+v", got)
	}
}

func TestParseResponse(t *testing.T) {
	orig := player.Track{Title: "Original Title", Artist: "Original Artist"}

	tests := []struct {
		name  string
		reply string
		want  player.Track
	}{
		{
			name:  "standard reply",
			reply: "Moonlight Sonata by Beethoven",
			want:  player.Track{Title: "Moonlight Sonata", Artist: "Beethoven"},
		},
		{
			name:  "title containing by splits on last occurrence",
			reply: "Stand by Me by Ben E. King",
			want:  player.Track{Title: "Stand by Me", Artist: "Ben E. King"},
		},
		{
			name:  "no separator keeps original artist",
			reply: "Moonlight Sonata",
			want:  player.Track{Title: "Moonlight Sonata", Artist: "Original Artist"},
		},
		{
			name:  "empty reply keeps original track",
			reply: "",
			want:  orig,
		},
		{
			name:  "separator with empty artist keeps original",
			reply: "Something by ",
			want:  orig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseResponse(tt.reply, orig); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
