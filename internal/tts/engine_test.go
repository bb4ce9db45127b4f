package tts

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEngineSelection(t *testing.T) {
	for _, name := range []string{"elevenlabs", "openai", "say"} {
		if err := ValidateEngineSelection(name); err != nil {
			t.Errorf("ValidateEngineSelection(%q) = %v, want nil", name, err)
		}
	}

	err := ValidateEngineSelection("piper")
	if !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("ValidateEngineSelection(piper) = %v, want ErrUnknownEngine", err)
	}
}

func TestNewEngineUnknown(t *testing.T) {
	_, err := NewEngine("festival", FactoryConfig{})
	if !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("NewEngine(festival) error = %v, want ErrUnknownEngine", err)
	}
}

func TestNewEngineElevenLabsRequiresVoice(t *testing.T) {
	_, err := NewEngine("elevenlabs", FactoryConfig{ElevenLabsAPIKey: "key"})
	if err == nil {
		t.Fatal("expected error for missing voice ID")
	}
}

func TestCheckText(t *testing.T) {
	if err := checkText("", 100); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text error = %v, want ErrEmptyText", err)
	}

	if err := checkText(strings.Repeat("a", 101), 100); !errors.Is(err, ErrTextTooLong) {
		t.Errorf("long text error = %v, want ErrTextTooLong", err)
	}

	if err := checkText("Now playing: Swan Lake by Tchaikovsky", 100); err != nil {
		t.Errorf("valid text error = %v, want nil", err)
	}
}

func TestParseSpeechVoice(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: "onyx"},
		{name: "onyx", want: "onyx"},
		{name: "alloy", want: "alloy"},
		{name: "nova", want: "nova"},
		{name: "shimmer", want: "shimmer"},
		{name: "morgan-freeman", wantErr: true},
	}

	for _, tt := range tests {
		voice, err := parseSpeechVoice(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSpeechVoice(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSpeechVoice(%q) error = %v", tt.name, err)
			continue
		}
		if string(voice) != tt.want {
			t.Errorf("parseSpeechVoice(%q) = %q, want %q", tt.name, voice, tt.want)
		}
	}
}

func TestSayUnsupportedPlatform(t *testing.T) {
	if _, err := newSayFor("windows"); err == nil {
		t.Fatal("expected error on unsupported platform")
	}
}

func TestSayInfoFormats(t *testing.T) {
	s, err := newSayFor("linux")
	if err != nil {
		t.Fatalf("newSayFor(linux) error = %v", err)
	}

	info := s.GetInfo()
	if info.Format != "wav" {
		t.Errorf("say format = %q, want wav", info.Format)
	}
	if info.IsOnline {
		t.Error("say engine should be offline")
	}
}
