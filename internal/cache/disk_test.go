package cache

import (
	"bytes"
	"testing"
	"time"
)

func newTestDiskCache(t *testing.T, capacity int64) *DiskCache {
	t.Helper()

	dc, err := NewDiskCache(t.TempDir(), capacity)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	t.Cleanup(func() { _ = dc.Close() })
	return dc
}

func TestDiskCache_PutGet(t *testing.T) {
	dc := newTestDiskCache(t, 1024*1024)

	value := []byte("mp3 audio bytes")
	if err := dc.Put("announcement", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := dc.Get("announcement")
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("value mismatch: got %q, want %q", got, value)
	}
}

func TestDiskCache_CompressionRoundTrip(t *testing.T) {
	dc := newTestDiskCache(t, 10*1024*1024)

	// Highly compressible payload over the 1KB compression threshold.
	value := bytes.Repeat([]byte("wav sample "), 1000)
	if err := dc.Put("compressible", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry := dc.index["compressible"]
	if entry == nil {
		t.Fatal("index entry missing")
	}
	if !entry.Compressed {
		t.Error("compressible payload was not compressed")
	}
	if entry.Size >= entry.OriginalSize {
		t.Errorf("compressed size %d not smaller than original %d", entry.Size, entry.OriginalSize)
	}

	got, ok := dc.Get("compressible")
	if !ok {
		t.Fatal("Get failed after compressed Put")
	}
	if !bytes.Equal(got, value) {
		t.Error("decompressed value does not match original")
	}
}

func TestDiskCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 1024*1024)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	value := []byte("persistent announcement audio")
	if err := dc.Put("key", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A fresh instance over the same directory must see the entry.
	dc2, err := NewDiskCache(dir, 1024*1024)
	if err != nil {
		t.Fatalf("second NewDiskCache failed: %v", err)
	}
	defer dc2.Close() //nolint:errcheck

	got, ok := dc2.Get("key")
	if !ok {
		t.Fatal("entry not found after reopen")
	}
	if !bytes.Equal(got, value) {
		t.Error("value mismatch after reopen")
	}
}

func TestDiskCache_Eviction(t *testing.T) {
	dc := newTestDiskCache(t, 100)

	// Random-ish payloads below the compression threshold.
	_ = dc.Put("a", bytes.Repeat([]byte{0x01}, 40))
	time.Sleep(5 * time.Millisecond)
	_ = dc.Put("b", bytes.Repeat([]byte{0x02}, 40))
	time.Sleep(5 * time.Millisecond)

	// Touch "a" so "b" is the eviction candidate.
	dc.Get("a")

	if err := dc.Put("c", bytes.Repeat([]byte{0x03}, 40)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if dc.Contains("b") {
		t.Error("least recently accessed entry should have been evicted")
	}
	if !dc.Contains("a") || !dc.Contains("c") {
		t.Error("wrong entry evicted")
	}
}

func TestDiskCache_RemoveOlderThan(t *testing.T) {
	dc := newTestDiskCache(t, 1024*1024)

	_ = dc.Put("old", []byte("stale"))
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	_ = dc.Put("new", []byte("fresh"))

	if removed := dc.RemoveOlderThan(cutoff); removed != 1 {
		t.Errorf("removed %d entries, want 1", removed)
	}
	if dc.Contains("old") {
		t.Error("old entry still present")
	}
	if !dc.Contains("new") {
		t.Error("new entry removed")
	}
}

func TestDiskCache_Clear(t *testing.T) {
	dc := newTestDiskCache(t, 1024*1024)

	_ = dc.Put("a", []byte("one"))
	_ = dc.Put("b", []byte("two"))

	if err := dc.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if dc.Size() != 0 {
		t.Errorf("size after clear: %d", dc.Size())
	}
	if dc.Contains("a") || dc.Contains("b") {
		t.Error("entries survived clear")
	}
}
