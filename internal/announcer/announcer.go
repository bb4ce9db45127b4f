// Package announcer wires the pipeline together: poll the media player,
// rewrite the title, synthesize speech, cache both halves, and play the
// result. It owns the "same track twice costs zero API calls" guarantee.
package announcer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/tysa/internal/audio"
	"github.com/dgnsrekt/tysa/internal/cache"
	"github.com/dgnsrekt/tysa/internal/player"
	"github.com/dgnsrekt/tysa/internal/tts"
)

// Simplifier rewrites a track title for announcement.
type Simplifier interface {
	Simplify(ctx context.Context, track player.Track) (player.Track, error)
}

// Config holds announcer dependencies and settings.
type Config struct {
	Source     player.Source
	Simplifier Simplifier // nil disables the rewrite step
	Engine     tts.Engine
	Speaker    audio.Speaker
	AudioCache *cache.Manager // nil disables audio caching
	TextStore  *cache.TextStore

	OutputDir    string
	PollInterval time.Duration
}

// Announcer runs the announcement pipeline.
type Announcer struct {
	source     player.Source
	simplifier Simplifier
	engine     tts.Engine
	speaker    audio.Speaker
	audioCache *cache.Manager
	texts      *cache.TextStore

	outputDir string

	mu           sync.Mutex
	pollInterval time.Duration
	lastTrack    string

	metrics *sessionMetrics
}

// New creates an announcer. The output directory is created eagerly so a
// permission problem surfaces at startup, not mid-announcement.
func New(cfg Config) (*Announcer, error) {
	if cfg.Source == nil {
		return nil, errors.New("announcer requires a track source")
	}
	if cfg.Engine == nil {
		return nil, errors.New("announcer requires a TTS engine")
	}
	if cfg.Speaker == nil {
		return nil, errors.New("announcer requires a speaker")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}

	return &Announcer{
		source:       cfg.Source,
		simplifier:   cfg.Simplifier,
		engine:       cfg.Engine,
		speaker:      cfg.Speaker,
		audioCache:   cfg.AudioCache,
		texts:        cfg.TextStore,
		outputDir:    cfg.OutputDir,
		pollInterval: cfg.PollInterval,
		metrics:      newSessionMetrics(),
	}, nil
}

// Run polls for track changes until ctx is cancelled.
func (a *Announcer) Run(ctx context.Context) error {
	log.Info("Starting continuous monitoring",
		"interval", a.PollInterval(),
		"source", a.source.Name(),
		"engine", a.engine.GetInfo().Name)

	ticker := time.NewTicker(a.PollInterval())
	defer ticker.Stop()

	// Process immediately rather than waiting out the first tick.
	a.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down", "stats", a.metrics.Summary())
			return nil
		case <-ticker.C:
			a.poll(ctx)
			// Pick up interval changes from config reload.
			ticker.Reset(a.PollInterval())
		}
	}
}

// RunOnce processes the currently playing track a single time.
func (a *Announcer) RunOnce(ctx context.Context) error {
	log.Info("Running in single-shot mode")

	processed, err := a.ProcessCurrent(ctx)
	if err != nil {
		return err
	}

	if processed {
		log.Info("Track processed successfully")
	} else {
		log.Info("No track to process")
	}
	return nil
}

// poll runs one cycle, logging instead of propagating errors so a bad
// cycle never kills the loop.
func (a *Announcer) poll(ctx context.Context) {
	if _, err := a.ProcessCurrent(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("Announcement failed", "err", err)
	}
}

// ProcessCurrent announces the playing track if it changed since the last
// cycle. It returns true when an announcement was made.
func (a *Announcer) ProcessCurrent(ctx context.Context) (bool, error) {
	track, err := a.source.CurrentTrack(ctx)
	if err != nil {
		if errors.Is(err, player.ErrNothingPlaying) || errors.Is(err, player.ErrPlayerNotRunning) {
			log.Debug("No track to announce", "reason", err)
			return false, nil
		}
		return false, fmt.Errorf("unable to query player: %w", err)
	}

	if !a.markSeen(track.Key()) {
		log.Debug("Track already announced", "track", track)
		return false, nil
	}

	log.Info("Current track", "title", track.Title, "artist", track.Artist)

	spoken := a.announcementTrack(ctx, track)
	text := fmt.Sprintf("Now playing: %s by %s", spoken.Title, spoken.Artist)
	log.Info("Announcement", "text", text)

	clip, err := a.announcementClip(ctx, text)
	if err != nil {
		return false, err
	}

	if err := a.speaker.Play(ctx, clip); err != nil {
		return false, fmt.Errorf("playback failed: %w", err)
	}

	log.Info("Announced track", "track", spoken, "file", clip.Path)
	return true, nil
}

// announcementTrack returns the simplified track, consulting the text
// store before the LLM. Simplification failures fall back to the raw
// track; the announcement still happens.
func (a *Announcer) announcementTrack(ctx context.Context, track player.Track) player.Track {
	if a.simplifier == nil {
		return track
	}

	if a.texts != nil {
		if entry, ok := a.texts.Get(track.Key()); ok {
			log.Debug("Simplified title from text store", "track", track)
			return player.Track{Title: entry.Title, Artist: entry.Artist}
		}
	}

	simplified, err := a.simplifier.Simplify(ctx, track)
	if err != nil {
		log.Warn("Title simplification failed, announcing as-is", "err", err)
		return track
	}

	log.Info("Simplified title", "from", track, "to", simplified)

	if a.texts != nil {
		if err := a.texts.Put(track.Key(), cache.TextEntry{
			Track:  track.Key(),
			Title:  simplified.Title,
			Artist: simplified.Artist,
		}); err != nil {
			log.Warn("Unable to persist simplified title", "err", err)
		}
	}

	return simplified
}

// announcementClip produces the audio for the text, from cache when
// possible, and writes it to the output directory.
func (a *Announcer) announcementClip(ctx context.Context, text string) (audio.Clip, error) {
	info := a.engine.GetInfo()
	key := cache.AudioKey(info.Name, info.Voice, text)

	var data []byte
	cacheHit := false

	if a.audioCache != nil {
		if cached, ok := a.audioCache.Get(key); ok {
			log.Debug("Audio cache hit", "key", key[:12])
			data = cached
			cacheHit = true
		}
	}

	if data == nil {
		m := a.metrics.startSynthesis(info.Name, text)

		synthesized, err := a.engine.Synthesize(ctx, text)
		m.end(len(synthesized), err)
		if err != nil {
			return audio.Clip{}, fmt.Errorf("speech synthesis failed: %w", err)
		}
		data = synthesized

		if a.audioCache != nil {
			if err := a.audioCache.Put(key, data); err != nil {
				log.Warn("Unable to cache audio", "err", err)
			}
		}
	}
	a.metrics.recordCacheResult(cacheHit)

	path, err := a.writeAnnouncement(data, info.Format)
	if err != nil {
		return audio.Clip{}, err
	}

	return audio.Clip{Format: info.Format, Data: data, Path: path}, nil
}

// writeAnnouncement writes the audio file the way the tool always has:
// announcement_YYYYMMDD_HHMMSS.<ext> in the output directory.
func (a *Announcer) writeAnnouncement(data []byte, format string) (string, error) {
	name := fmt.Sprintf("announcement_%s.%s", time.Now().Format("20060102_150405"), format)
	path := filepath.Join(a.outputDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write announcement file: %w", err)
	}

	log.Debug("Audio saved", "path", path, "bytes", len(data))
	return path, nil
}

// markSeen records the track key, returning false when it was already the
// last announced track.
func (a *Announcer) markSeen(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if key == a.lastTrack {
		return false
	}
	a.lastTrack = key
	return true
}

// PollInterval returns the current poll interval.
func (a *Announcer) PollInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pollInterval
}

// SetPollInterval updates the interval; the running loop applies it on
// the next tick. Used by config hot reload.
func (a *Announcer) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	a.mu.Lock()
	a.pollInterval = d
	a.mu.Unlock()
}

// SetVolume updates playback volume. Used by config hot reload.
func (a *Announcer) SetVolume(v float64) error {
	return a.speaker.SetVolume(v)
}

// Close flushes caches and releases the speaker and engine.
func (a *Announcer) Close() error {
	var errs []error

	if a.audioCache != nil {
		if err := a.audioCache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.speaker.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.engine.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
