package audio

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Clip is one announcement ready for playback. Data holds the encoded
// audio; Path is where the announcer wrote it, for command players that
// want a file.
type Clip struct {
	Format string // "mp3" or "wav"
	Data   []byte
	Path   string
}

// Speaker plays announcement clips.
type Speaker interface {
	// Play plays a clip, blocking until playback finishes or ctx is done.
	Play(ctx context.Context, clip Clip) error

	// SetVolume sets playback volume (0.0 to 1.0).
	SetVolume(volume float64) error

	// Close releases the audio device or other resources.
	Close() error
}

// NewSpeaker picks the best available playback path: oto with ffmpeg
// decoding when both are usable, otherwise a platform player command.
func NewSpeaker(volume float64) (Speaker, error) {
	conv := NewConverter()
	if conv.Available() {
		sp, err := NewOtoSpeaker(conv, volume)
		if err == nil {
			log.Debug("Using oto playback", "sampleRate", SampleRate)
			return &fallbackSpeaker{primary: sp, volume: volume}, nil
		}
		log.Warn("Audio device unavailable, falling back to player command", "err", err)
	} else {
		log.Debug("ffmpeg not found, falling back to player command")
	}

	return NewCommandSpeaker(volume)
}

// fallbackSpeaker wraps the oto path and swaps to the command player the
// first time device playback fails mid-session, e.g. when the audio
// device disappears after startup.
type fallbackSpeaker struct {
	mu      sync.Mutex
	primary Speaker
	volume  float64
	swapped bool
}

func (f *fallbackSpeaker) Play(ctx context.Context, clip Clip) error {
	f.mu.Lock()
	sp, swapped := f.primary, f.swapped
	f.mu.Unlock()

	err := sp.Play(ctx, clip)
	if err == nil || ctx.Err() != nil || swapped {
		return err
	}

	log.Warn("Device playback failed, switching to player command", "err", err)

	cmd, cmdErr := NewCommandSpeaker(f.volume)
	if cmdErr != nil {
		return err
	}

	f.mu.Lock()
	_ = f.primary.Close()
	f.primary = cmd
	f.swapped = true
	f.mu.Unlock()

	return cmd.Play(ctx, clip)
}

func (f *fallbackSpeaker) SetVolume(volume float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.primary.SetVolume(volume); err != nil {
		return err
	}
	f.volume = volume
	return nil
}

func (f *fallbackSpeaker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.primary.Close()
}
