//go:build !darwin && !linux

package player

import "github.com/dgnsrekt/tysa/internal/subprocess"

func newPlatformSource(_ *subprocess.Manager) (Source, error) {
	return nil, ErrUnsupportedPlatform
}
