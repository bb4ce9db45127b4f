// Package player queries the desktop media player for the currently
// playing track. On macOS this goes through AppleScript against Spotify,
// on Linux through playerctl (MPRIS). Both return the track as a single
// "title|artist" line, which keeps the two adapters symmetrical.
package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/tysa/internal/subprocess"
)

// Errors reported by track queries.
var (
	// ErrPlayerNotRunning indicates the media player application is not running.
	ErrPlayerNotRunning = errors.New("media player is not running")

	// ErrNothingPlaying indicates the player is running but idle.
	ErrNothingPlaying = errors.New("nothing is playing")

	// ErrUnsupportedPlatform indicates no adapter exists for this OS.
	ErrUnsupportedPlatform = errors.New("no media player adapter for this platform")
)

// queryTimeout bounds a single scripting call to the player. The original
// tooling used two seconds; a hung osascript call must not stall the poll loop.
const queryTimeout = 2 * time.Second

// Track identifies a playing track.
type Track struct {
	Title  string
	Artist string
}

// Key returns the identity used for change detection and caching.
// Title and artist together identify a track well enough; the players
// queried here do not expose a stable track ID across platforms.
func (t Track) Key() string {
	return t.Title + "|" + t.Artist
}

// String implements fmt.Stringer.
func (t Track) String() string {
	return fmt.Sprintf("%s by %s", t.Title, t.Artist)
}

// Source reports the currently playing track.
type Source interface {
	// CurrentTrack returns the playing track, ErrNothingPlaying when the
	// player is idle, or ErrPlayerNotRunning when it is not running.
	CurrentTrack(ctx context.Context) (Track, error)

	// Name returns a human-readable adapter name for logging.
	Name() string
}

// New returns the media player adapter for the current platform.
func New() (Source, error) {
	return newPlatformSource(subprocess.NewManager(queryTimeout))
}

// parseTrackLine parses the "title|artist" line both adapters produce.
func parseTrackLine(out string) (Track, error) {
	line := strings.TrimSpace(out)
	if line == "" {
		return Track{}, ErrNothingPlaying
	}

	title, artist, ok := strings.Cut(line, "|")
	if !ok {
		return Track{}, fmt.Errorf("malformed player output: %q", line)
	}

	track := Track{
		Title:  strings.TrimSpace(title),
		Artist: strings.TrimSpace(artist),
	}
	if track.Title == "" {
		return Track{}, ErrNothingPlaying
	}

	return track, nil
}
