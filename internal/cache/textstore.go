package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TextStore memoizes simplified announcement texts in a single JSON file,
// keyed by track identity. It keeps the LLM from being asked about the
// same track twice, ever, across runs.
type TextStore struct {
	path string

	mu      sync.RWMutex
	entries map[string]TextEntry
}

// TextEntry records a simplified announcement for a track.
type TextEntry struct {
	Track     string    `json:"track"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTextStore loads (or creates) the store at path.
func NewTextStore(path string) (*TextStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create text store directory: %w", err)
	}

	ts := &TextStore{
		path:    path,
		entries: make(map[string]TextEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ts, nil
		}
		return nil, fmt.Errorf("unable to read text store: %w", err)
	}

	// A corrupt store is not worth failing over; start fresh.
	if err := json.Unmarshal(data, &ts.entries); err != nil {
		ts.entries = make(map[string]TextEntry)
	}

	return ts, nil
}

// Get returns the stored entry for a track key.
func (ts *TextStore) Get(trackKey string) (TextEntry, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	entry, ok := ts.entries[TextKey(trackKey)]
	return entry, ok
}

// Put stores an entry and persists the file.
func (ts *TextStore) Put(trackKey string, entry TextEntry) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry.Timestamp = time.Now()
	ts.entries[TextKey(trackKey)] = entry

	return ts.save()
}

// Len returns the number of stored entries.
func (ts *TextStore) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return len(ts.entries)
}

// Clear removes all entries and persists the empty store.
func (ts *TextStore) Clear() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.entries = make(map[string]TextEntry)
	return ts.save()
}

// save writes the JSON file atomically. Lock must be held.
func (ts *TextStore) save() error {
	data, err := json.MarshalIndent(ts.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode text store: %w", err)
	}

	if err := atomicWrite(ts.path, data); err != nil {
		return fmt.Errorf("unable to write text store: %w", err)
	}
	return nil
}
