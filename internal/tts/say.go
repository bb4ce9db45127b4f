package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/tysa/internal/subprocess"
)

// sayMaxText keeps offline synthesis bounded; the command-line tools have
// no hard limit but announcements are a sentence long.
const sayMaxText = 5000

const sayTimeout = 30 * time.Second

// Say synthesizes speech offline with the platform's speech command:
// say/afconvert on macOS, espeak on Linux. It needs no API key, which
// makes it the fallback when no credentials are configured.
type Say struct {
	goos string
	proc *subprocess.Manager
}

// NewSay creates the offline engine for the current platform.
func NewSay() (*Say, error) {
	return newSayFor(runtime.GOOS)
}

func newSayFor(goos string) (*Say, error) {
	switch goos {
	case "darwin", "linux":
		return &Say{goos: goos, proc: subprocess.NewManager(sayTimeout)}, nil
	default:
		return nil, fmt.Errorf("offline say engine is not supported on %s", goos)
	}
}

// Synthesize converts text to WAV audio.
func (s *Say) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := checkText(text, sayMaxText); err != nil {
		return nil, err
	}

	switch s.goos {
	case "darwin":
		return s.synthesizeDarwin(ctx, text)
	case "linux":
		return s.synthesizeLinux(ctx, text)
	default:
		return nil, fmt.Errorf("offline say engine is not supported on %s", s.goos)
	}
}

// synthesizeDarwin renders with say, then converts the AIFF output to
// 16-bit WAV with afconvert.
func (s *Say) synthesizeDarwin(ctx context.Context, text string) ([]byte, error) {
	id := uuid.NewString()
	aiff := filepath.Join(os.TempDir(), "tysa-"+id+".aiff")
	wav := filepath.Join(os.TempDir(), "tysa-"+id+".wav")
	defer os.Remove(aiff) //nolint:errcheck
	defer os.Remove(wav)  //nolint:errcheck

	if _, err := s.proc.ExecuteWithStdin(ctx, text, "say", "-o", aiff, "-f", "-"); err != nil {
		return nil, fmt.Errorf("say failed: %w", err)
	}

	if _, err := s.proc.Execute(ctx, "afconvert", "-f", "WAVE", "-d", "LEI16", aiff, wav); err != nil {
		return nil, fmt.Errorf("afconvert failed: %w", err)
	}

	audio, err := os.ReadFile(wav)
	if err != nil {
		return nil, fmt.Errorf("unable to read converted audio: %w", err)
	}
	return audio, nil
}

// synthesizeLinux renders with espeak, which writes WAV to stdout.
func (s *Say) synthesizeLinux(ctx context.Context, text string) ([]byte, error) {
	audio, err := s.proc.ExecuteWithStdin(ctx, text, "espeak", "--stdin", "--stdout")
	if err != nil {
		return nil, fmt.Errorf("espeak failed: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("espeak returned no audio")
	}
	return audio, nil
}

// GetInfo describes the engine.
func (s *Say) GetInfo() EngineInfo {
	voice := "system"
	if s.goos == "linux" {
		voice = "espeak"
	}
	return EngineInfo{
		Name:        "say",
		Voice:       voice,
		Format:      "wav",
		MaxTextSize: sayMaxText,
		IsOnline:    false,
	}
}

// Validate checks that the platform's speech binaries are installed.
func (s *Say) Validate() error {
	switch s.goos {
	case "darwin":
		for _, bin := range []string{"say", "afconvert"} {
			if !subprocess.LookPath(bin) {
				return fmt.Errorf("offline say engine requires %s in PATH", bin)
			}
		}
	case "linux":
		if !subprocess.LookPath("espeak") {
			return fmt.Errorf("offline say engine requires espeak in PATH")
		}
	}
	return nil
}

// Close is a no-op.
func (s *Say) Close() error { return nil }
