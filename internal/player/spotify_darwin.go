//go:build darwin

package player

import (
	"context"
	"strings"

	"github.com/dgnsrekt/tysa/internal/subprocess"
)

// appleScript asks Spotify for the current track without launching it.
// The "if it is running" guard matters: plain `tell` would start Spotify.
const appleScript = `
tell application "Spotify"
	if it is running then
		set trackName to name of current track
		set trackArtist to artist of current track
		return trackName & "|" & trackArtist
	end if
end tell
`

type darwinSource struct {
	exec *subprocess.Manager
}

func newPlatformSource(exec *subprocess.Manager) (Source, error) {
	return &darwinSource{exec: exec}, nil
}

func (s *darwinSource) Name() string {
	return "spotify/applescript"
}

func (s *darwinSource) CurrentTrack(ctx context.Context) (Track, error) {
	out, err := s.exec.Execute(ctx, "osascript", "-e", appleScript)
	if err != nil {
		if strings.Contains(err.Error(), "timed out") {
			// A stuck osascript usually means Spotify is unresponsive;
			// treat it the same as idle and let the next poll retry.
			return Track{}, ErrNothingPlaying
		}
		return Track{}, err
	}

	// The guard clause returns nothing when Spotify is not running.
	if strings.TrimSpace(string(out)) == "" {
		return Track{}, ErrPlayerNotRunning
	}

	return parseTrackLine(string(out))
}
