package cache

import (
	"fmt"
	"time"
)

// Default cache sizing.
const (
	// DefaultMemoryLimit caps the in-memory level (10MB of announcements).
	DefaultMemoryLimit = 10 * 1024 * 1024

	// DefaultDiskLimit caps the persistent level (100MB).
	DefaultDiskLimit = 100 * 1024 * 1024

	// DefaultTTL drops disk entries after a week; a track's announcement
	// does not change, but stale voices and key versions should age out.
	DefaultTTL = 7 * 24 * time.Hour
)

// ManagerConfig configures the two-level audio cache.
type ManagerConfig struct {
	Dir         string
	MemoryLimit int64
	DiskLimit   int64
	TTL         time.Duration
}

// Manager combines the memory and disk caches. Reads check memory first
// and promote disk hits; writes go to both levels.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewManager creates the two-level cache.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.MemoryLimit <= 0 {
		cfg.MemoryLimit = DefaultMemoryLimit
	}
	if cfg.DiskLimit <= 0 {
		cfg.DiskLimit = DefaultDiskLimit
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	disk, err := NewDiskCache(cfg.Dir, cfg.DiskLimit)
	if err != nil {
		return nil, fmt.Errorf("unable to create disk cache: %w", err)
	}

	// Expire old entries up front rather than running a background
	// cleanup goroutine; an announcer writes a handful of entries per day.
	disk.RemoveOlderThan(time.Now().Add(-cfg.TTL))

	return &Manager{
		memory: NewMemoryCache(cfg.MemoryLimit),
		disk:   disk,
	}, nil
}

// Get retrieves audio, checking memory before disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}

	if data, ok := m.disk.Get(key); ok {
		// Promote to memory for the rest of the session.
		_ = m.memory.Put(key, data)
		return data, true
	}

	return nil, false
}

// Put stores audio in both levels. Memory failures are ignored; the disk
// level is the one that matters across sessions.
func (m *Manager) Put(key string, audio []byte) error {
	_ = m.memory.Put(key, audio)

	if err := m.disk.Put(key, audio); err != nil {
		return fmt.Errorf("unable to store in disk cache: %w", err)
	}
	return nil
}

// Contains checks both levels without promoting.
func (m *Manager) Contains(key string) bool {
	return m.memory.Contains(key) || m.disk.Contains(key)
}

// Clear purges both levels.
func (m *Manager) Clear() error {
	if err := m.memory.Clear(); err != nil {
		return err
	}
	return m.disk.Clear()
}

// Size returns the combined size in bytes.
func (m *Manager) Size() int64 {
	return m.memory.Size() + m.disk.Size()
}

// Stats returns combined statistics.
func (m *Manager) Stats() Stats {
	return m.memory.Stats().merge(m.disk.Stats())
}

// DiskStats returns statistics for the persistent level only.
func (m *Manager) DiskStats() Stats {
	return m.disk.Stats()
}

// Close persists the disk index.
func (m *Manager) Close() error {
	return m.disk.Close()
}
