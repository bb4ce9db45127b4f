// Package subprocess provides safe external command execution for the
// announcer. The media player adapter, the audio converter, and the local
// speech engine all shell out through this package so that timeouts and
// stdin handling are consistent.
package subprocess

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Manager executes external commands with timeout protection.
// It prevents stdin race conditions by setting up stdin before process start.
type Manager struct {
	mu sync.Mutex

	// defaultTimeout applies when the caller's context has no deadline
	defaultTimeout time.Duration
}

// NewManager creates a subprocess manager with the given default timeout.
func NewManager(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{
		defaultTimeout: timeout,
	}
}

// Execute runs a command and returns its stdout.
func (m *Manager) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.run(ctx, "", nil, name, args...)
}

// ExecuteWithStdin runs a command feeding input on stdin and returns its stdout.
// Stdin is attached before the process starts to avoid races with short-lived
// commands that read stdin immediately.
func (m *Manager) ExecuteWithStdin(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	return m.run(ctx, input, nil, name, args...)
}

// ExecuteWithStdinBytes is ExecuteWithStdin for binary input, such as piping
// MP3 data into ffmpeg.
func (m *Manager) ExecuteWithStdinBytes(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	return m.run(ctx, "", input, name, args...)
}

func (m *Manager) run(ctx context.Context, input string, inputBytes []byte, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.defaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	switch {
	case inputBytes != nil:
		cmd.Stdin = bytes.NewReader(inputBytes)
	default:
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out", name)
		}
		return nil, fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w\nstderr: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// LookPath reports whether the named binary is available on PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
