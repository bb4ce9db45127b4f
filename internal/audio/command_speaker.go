package audio

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dgnsrekt/tysa/internal/subprocess"
)

// playbackTimeout bounds a single playback command. Announcements are a
// sentence long; a player stuck past this is wedged.
const playbackTimeout = 2 * time.Minute

// CommandSpeaker plays the written announcement file through a platform
// player binary. It is the fallback when oto or ffmpeg are unavailable.
type CommandSpeaker struct {
	exec   *subprocess.Manager
	volume float64
}

// NewCommandSpeaker creates the exec-based speaker.
func NewCommandSpeaker(volume float64) (*CommandSpeaker, error) {
	if volume <= 0 || volume > 1.0 {
		volume = 1.0
	}

	sp := &CommandSpeaker{
		exec:   subprocess.NewManager(playbackTimeout),
		volume: volume,
	}

	if _, _, err := playerCommand(runtime.GOOS, "mp3", "x.mp3", volume); err != nil {
		return nil, err
	}
	return sp, nil
}

// Play plays the clip's file, blocking until the player exits.
func (s *CommandSpeaker) Play(ctx context.Context, clip Clip) error {
	if clip.Path == "" {
		return fmt.Errorf("command playback requires a file path")
	}

	name, args, err := playerCommand(runtime.GOOS, clip.Format, clip.Path, s.volume)
	if err != nil {
		return err
	}

	if !subprocess.LookPath(name) {
		return fmt.Errorf("player binary %q not found", name)
	}

	if _, err := s.exec.Execute(ctx, name, args...); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// playerCommand picks the platform player invocation for a format.
func playerCommand(goos, format, path string, volume float64) (string, []string, error) {
	switch goos {
	case "darwin":
		// afplay handles both mp3 and wav natively.
		return "afplay", []string{"-v", fmt.Sprintf("%.2f", volume), path}, nil
	case "linux":
		switch format {
		case "mp3":
			return "mpg123", []string{"-q", path}, nil
		case "wav":
			return "aplay", []string{"-q", path}, nil
		default:
			return "", nil, fmt.Errorf("no player for format %q", format)
		}
	default:
		return "", nil, fmt.Errorf("no player command for %s", goos)
	}
}

// SetVolume sets volume for subsequent playback. Only afplay honors it;
// the Linux players run at system volume.
func (s *CommandSpeaker) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %.2f", volume)
	}
	s.volume = volume
	return nil
}

// Close releases resources.
func (s *CommandSpeaker) Close() error {
	return nil
}
