package player

import (
	"errors"
	"testing"
)

func TestParseTrackLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Track
		wantErr error
	}{
		{
			name:  "simple track",
			input: "Bohemian Rhapsody|Queen\n",
			want:  Track{Title: "Bohemian Rhapsody", Artist: "Queen"},
		},
		{
			name:  "classical title with pipe-free noise",
			input: "Swan Lake, Op. 20: Scène|Pyotr Ilyich Tchaikovsky",
			want:  Track{Title: "Swan Lake, Op. 20: Scène", Artist: "Pyotr Ilyich Tchaikovsky"},
		},
		{
			name:  "whitespace trimmed",
			input: "  Hey Jude | The Beatles  \n",
			want:  Track{Title: "Hey Jude", Artist: "The Beatles"},
		},
		{
			name:    "empty output",
			input:   "\n",
			wantErr: ErrNothingPlaying,
		},
		{
			name:    "missing artist separator",
			input:   "just some text",
			wantErr: errMalformed,
		},
		{
			name:    "separator but empty title",
			input:   "|Queen",
			wantErr: ErrNothingPlaying,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTrackLine(tt.input)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if errors.Is(tt.wantErr, ErrNothingPlaying) && !errors.Is(err, ErrNothingPlaying) {
					t.Fatalf("expected ErrNothingPlaying, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseTrackLine failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// errMalformed is a marker for the table above; any non-sentinel error counts.
var errMalformed = errors.New("malformed")

func TestTrackKey(t *testing.T) {
	a := Track{Title: "Clair de Lune", Artist: "Debussy"}
	b := Track{Title: "Clair de Lune", Artist: "Debussy"}
	c := Track{Title: "Clair de Lune", Artist: "Kamasi Washington"}

	if a.Key() != b.Key() {
		t.Error("identical tracks should share a key")
	}
	if a.Key() == c.Key() {
		t.Error("different artists must produce different keys")
	}
}

func TestTrackString(t *testing.T) {
	tr := Track{Title: "Hey Jude", Artist: "The Beatles"}
	if got := tr.String(); got != "Hey Jude by The Beatles" {
		t.Errorf("String: got %q", got)
	}
}
