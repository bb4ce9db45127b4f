// Package audio plays synthesized announcements on the local machine.
// The preferred path decodes the engine's MP3/WAV output to raw PCM with
// ffmpeg and plays it through oto; when that is not possible the written
// announcement file is handed to a platform player command instead.
package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/dgnsrekt/tysa/internal/subprocess"
)

// PCM output parameters. 16-bit mono at 44100 Hz is what the oto context
// is opened with; everything funnels through this format.
const (
	SampleRate = 44100
	Channels   = 1
	BitDepth   = 16

	convertTimeout = 30 * time.Second
)

// Converter decodes encoded audio to raw PCM using ffmpeg.
type Converter struct {
	exec *subprocess.Manager
}

// NewConverter creates an ffmpeg-backed converter.
func NewConverter() *Converter {
	return &Converter{
		exec: subprocess.NewManager(convertTimeout),
	}
}

// Available reports whether ffmpeg is installed.
func (c *Converter) Available() bool {
	return subprocess.LookPath("ffmpeg")
}

// ToPCM decodes MP3 or WAV bytes into 16-bit mono 44100 Hz little-endian
// PCM. Input and output are piped; no temp files are involved.
func (c *Converter) ToPCM(ctx context.Context, encoded []byte) ([]byte, error) {
	if len(encoded) == 0 {
		return nil, fmt.Errorf("no audio data to convert")
	}

	pcm, err := c.exec.ExecuteWithStdinBytes(ctx, encoded, "ffmpeg", convertArgs()...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no PCM output")
	}

	return pcm, nil
}

// convertArgs builds the ffmpeg invocation: read any container from
// stdin, emit raw signed 16-bit little-endian mono PCM on stdout.
func convertArgs() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"pipe:1",
	}
}

// PCMDuration computes playback time for a PCM buffer in the converter's
// output format.
func PCMDuration(pcm []byte) time.Duration {
	bytesPerSample := BitDepth / 8
	samples := len(pcm) / (Channels * bytesPerSample)
	return time.Duration(samples) * time.Second / time.Duration(SampleRate)
}
