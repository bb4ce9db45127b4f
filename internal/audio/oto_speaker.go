package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSpeaker plays PCM through the system audio device via oto.
// The audio buffer is pinned on the struct for the duration of playback;
// letting it get collected mid-play causes static.
type OtoSpeaker struct {
	context   *oto.Context
	converter *Converter

	mu sync.Mutex

	// active keeps the current clip's PCM alive during playback
	active []byte
	player *oto.Player

	volume float64
	closed bool
}

// NewOtoSpeaker opens the audio device. Fails when no device is available
// (headless machines), in which case the caller falls back to a command
// player.
func NewOtoSpeaker(converter *Converter, volume float64) (*OtoSpeaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("unable to create audio context: %w", err)
	}
	<-readyChan

	if volume <= 0 || volume > 1.0 {
		volume = 1.0
	}

	return &OtoSpeaker{
		context:   ctx,
		converter: converter,
		volume:    volume,
	}, nil
}

// Play decodes the clip to PCM and plays it, blocking until the audio
// finishes or ctx is cancelled.
func (s *OtoSpeaker) Play(ctx context.Context, clip Clip) error {
	pcm, err := s.converter.ToPCM(ctx, clip.Data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("speaker is closed")
	}

	s.stopLocked()

	// Pin the buffer for the duration of playback.
	s.active = pcm
	player := s.context.NewPlayer(bytes.NewReader(s.active))
	player.SetVolume(s.volume)
	s.player = player
	s.mu.Unlock()

	player.Play()

	// oto has no completion callback; poll IsPlaying with a duration-based
	// upper bound as a safety net.
	deadline := time.NewTimer(PCMDuration(pcm) + time.Second)
	defer deadline.Stop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-deadline.C:
			s.Stop()
			return nil
		case <-ticker.C:
			if !player.IsPlaying() {
				s.Stop()
				return nil
			}
		}
	}
}

// Stop halts playback and releases the pinned buffer.
func (s *OtoSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked stops the current player. Lock must be held.
func (s *OtoSpeaker) stopLocked() {
	if s.player != nil {
		s.player.Pause()
		_ = s.player.Close()
		s.player = nil
	}
	s.active = nil
}

// SetVolume sets playback volume for subsequent clips.
func (s *OtoSpeaker) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %.2f", volume)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = volume
	if s.player != nil {
		s.player.SetVolume(volume)
	}
	return nil
}

// Close stops playback and marks the speaker unusable. The oto context
// itself has no Close in v3; it is released with the process.
func (s *OtoSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.closed = true
	return nil
}
