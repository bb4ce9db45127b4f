package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTextStore_PutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "announcements.json")

	ts, err := NewTextStore(path)
	if err != nil {
		t.Fatalf("NewTextStore failed: %v", err)
	}

	trackKey := "Swan Lake, Op. 20|Pyotr Ilyich Tchaikovsky"
	entry := TextEntry{
		Track:  trackKey,
		Title:  "Swan Lake",
		Artist: "Tchaikovsky",
	}

	if err := ts.Put(trackKey, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := ts.Get(trackKey)
	if !ok {
		t.Fatal("Get failed after Put")
	}
	if got.Title != "Swan Lake" || got.Artist != "Tchaikovsky" {
		t.Errorf("entry mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set on Put")
	}
}

func TestTextStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "announcements.json")

	ts, err := NewTextStore(path)
	if err != nil {
		t.Fatalf("NewTextStore failed: %v", err)
	}
	if err := ts.Put("track", TextEntry{Track: "track", Title: "T", Artist: "A"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ts2, err := NewTextStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, ok := ts2.Get("track"); !ok {
		t.Error("entry not found after reopen")
	}
	if ts2.Len() != 1 {
		t.Errorf("Len after reopen: got %d, want 1", ts2.Len())
	}
}

func TestTextStore_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "announcements.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ts, err := NewTextStore(path)
	if err != nil {
		t.Fatalf("NewTextStore should tolerate corrupt files: %v", err)
	}
	if ts.Len() != 0 {
		t.Errorf("corrupt store should start empty, got %d entries", ts.Len())
	}
}

func TestTextStore_MissingTrack(t *testing.T) {
	ts, err := NewTextStore(filepath.Join(t.TempDir(), "announcements.json"))
	if err != nil {
		t.Fatalf("NewTextStore failed: %v", err)
	}

	if _, ok := ts.Get("never-seen"); ok {
		t.Error("Get returned true for missing track")
	}
}

func TestTextStore_Clear(t *testing.T) {
	ts, err := NewTextStore(filepath.Join(t.TempDir(), "announcements.json"))
	if err != nil {
		t.Fatalf("NewTextStore failed: %v", err)
	}

	_ = ts.Put("a", TextEntry{Title: "A"})
	_ = ts.Put("b", TextEntry{Title: "B"})

	if err := ts.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if ts.Len() != 0 {
		t.Errorf("Len after clear: %d", ts.Len())
	}
}
