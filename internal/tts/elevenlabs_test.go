package tts

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func newTestElevenLabs(t *testing.T, handler http.HandlerFunc) *ElevenLabs {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e, err := NewElevenLabs(ElevenLabsConfig{
		APIKey:            "test-key",
		VoiceID:           "test-voice",
		BaseURL:           srv.URL,
		RequestsPerMinute: 6000,
	})
	if err != nil {
		t.Fatalf("NewElevenLabs error = %v", err)
	}
	return e
}

func TestElevenLabsSynthesize(t *testing.T) {
	want := []byte("fake-mp3-bytes")

	e := newTestElevenLabs(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/test-voice") {
			t.Errorf("path = %s, want .../test-voice", r.URL.Path)
		}
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("xi-api-key = %q, want test-key", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req elSynthesizeRequest
		if err := sonic.Unmarshal(body, &req); err != nil {
			t.Fatalf("unable to decode request: %v", err)
		}
		if req.Text != "Now playing: Swan Lake by Tchaikovsky" {
			t.Errorf("text = %q", req.Text)
		}
		if req.ModelID != elevenLabsModel {
			t.Errorf("model = %q, want %q", req.ModelID, elevenLabsModel)
		}
		if req.VoiceSettings.Stability != 0.5 || req.VoiceSettings.SimilarityBoost != 0.75 {
			t.Errorf("voice settings = %+v", req.VoiceSettings)
		}

		_, _ = w.Write(want)
	})

	audio, err := e.Synthesize(context.Background(), "Now playing: Swan Lake by Tchaikovsky")
	if err != nil {
		t.Fatalf("Synthesize error = %v", err)
	}
	if !bytes.Equal(audio, want) {
		t.Errorf("audio = %q, want %q", audio, want)
	}
}

func TestElevenLabsAPIError(t *testing.T) {
	e := newTestElevenLabs(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
	})

	_, err := e.Synthesize(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Errorf("error %q should carry the API message", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q should carry the status code", err)
	}
}

func TestElevenLabsEmptyResponse(t *testing.T) {
	e := newTestElevenLabs(t, func(http.ResponseWriter, *http.Request) {})

	if _, err := e.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty audio response")
	}
}

func TestElevenLabsTextLimits(t *testing.T) {
	e := newTestElevenLabs(t, func(http.ResponseWriter, *http.Request) {
		t.Error("server should not be called")
	})

	if _, err := e.Synthesize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := e.Synthesize(context.Background(), strings.Repeat("a", elevenLabsMaxText+1)); err == nil {
		t.Error("expected error for oversized text")
	}
}

func TestElevenLabsValidate(t *testing.T) {
	e, err := NewElevenLabs(ElevenLabsConfig{VoiceID: "v"})
	if err != nil {
		t.Fatalf("NewElevenLabs error = %v", err)
	}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error without an API key")
	}

	e, err = NewElevenLabs(ElevenLabsConfig{APIKey: "k", VoiceID: "v"})
	if err != nil {
		t.Fatalf("NewElevenLabs error = %v", err)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("Validate error = %v, want nil", err)
	}
}

func TestElevenLabsInfo(t *testing.T) {
	e, err := NewElevenLabs(ElevenLabsConfig{APIKey: "k", VoiceID: "sarah-voice"})
	if err != nil {
		t.Fatalf("NewElevenLabs error = %v", err)
	}

	info := e.GetInfo()
	if info.Name != "elevenlabs" || info.Voice != "sarah-voice" || info.Format != "mp3" {
		t.Errorf("info = %+v", info)
	}
	if !info.IsOnline {
		t.Error("elevenlabs should report online")
	}
}
