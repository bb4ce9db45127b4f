package subprocess

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestManager_Execute(t *testing.T) {
	m := NewManager(5 * time.Second)

	out, err := m.Execute(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestManager_ExecuteWithStdin(t *testing.T) {
	m := NewManager(5 * time.Second)

	out, err := m.ExecuteWithStdin(context.Background(), "piped input", "cat")
	if err != nil {
		t.Fatalf("ExecuteWithStdin failed: %v", err)
	}

	if string(out) != "piped input" {
		t.Errorf("stdin not forwarded: got %q", out)
	}
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager(100 * time.Millisecond)

	_, err := m.Execute(context.Background(), "sleep", "2")
	if err == nil {
		t.Fatal("expected timeout error")
	}

	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got: %v", err)
	}
}

func TestManager_CommandFailure(t *testing.T) {
	m := NewManager(5 * time.Second)

	_, err := m.Execute(context.Background(), "false")
	if err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestManager_MissingBinary(t *testing.T) {
	m := NewManager(time.Second)

	_, err := m.Execute(context.Background(), "definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestLookPath(t *testing.T) {
	if !LookPath("echo") {
		t.Error("echo should be on PATH")
	}
	if LookPath("definitely-not-a-real-binary-xyz") {
		t.Error("nonexistent binary reported as available")
	}
}
