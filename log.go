package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/tysa/internal/config"
)

// setupLog configures logging to stderr and, alongside it, a tysa.log file
// in the data directory so past announcements stay inspectable. The
// returned closer flushes the file.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.Kitchen)
	if viper.GetBool("debug") || os.Getenv("TYSA_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	dir := config.DefaultDataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		// stderr-only logging still works
		return func() error { return nil }, nil //nolint:nilerr
	}

	path := filepath.Join(dir, "tysa.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return func() error { return nil }, nil //nolint:nilerr
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("unable to close log file: %w", err)
		}
		return nil
	}, nil
}
