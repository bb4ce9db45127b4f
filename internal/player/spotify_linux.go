//go:build linux

package player

import (
	"context"
	"strings"

	"github.com/dgnsrekt/tysa/internal/subprocess"
)

type linuxSource struct {
	exec *subprocess.Manager
}

func newPlatformSource(exec *subprocess.Manager) (Source, error) {
	return &linuxSource{exec: exec}, nil
}

func (s *linuxSource) Name() string {
	return "mpris/playerctl"
}

func (s *linuxSource) CurrentTrack(ctx context.Context) (Track, error) {
	status, err := s.exec.Execute(ctx, "playerctl", "status")
	if err != nil {
		// playerctl exits non-zero with "No players found" when nothing
		// implements MPRIS on the session bus.
		if strings.Contains(err.Error(), "No players found") {
			return Track{}, ErrPlayerNotRunning
		}
		return Track{}, err
	}

	if strings.TrimSpace(string(status)) != "Playing" {
		return Track{}, ErrNothingPlaying
	}

	out, err := s.exec.Execute(ctx, "playerctl", "metadata", "--format", "{{title}}|{{artist}}")
	if err != nil {
		return Track{}, err
	}

	return parseTrackLine(string(out))
}
