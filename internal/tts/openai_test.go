package tts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// fakeSpeechClient records the last request.
type fakeSpeechClient struct {
	audio []byte
	err   error
	last  openai.CreateSpeechRequest
}

func (f *fakeSpeechClient) CreateSpeech(_ context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.last = req
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(bytes.NewReader(f.audio))}, nil
}

func newTestOpenAI(t *testing.T, client *fakeSpeechClient) *OpenAI {
	t.Helper()

	o, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", RequestsPerMinute: 6000})
	if err != nil {
		t.Fatalf("NewOpenAI error = %v", err)
	}
	o.client = client
	return o
}

func TestOpenAISynthesize(t *testing.T) {
	client := &fakeSpeechClient{audio: []byte("fake-mp3")}
	o := newTestOpenAI(t, client)

	audio, err := o.Synthesize(context.Background(), "Now playing: Swan Lake by Tchaikovsky")
	if err != nil {
		t.Fatalf("Synthesize error = %v", err)
	}
	if !bytes.Equal(audio, []byte("fake-mp3")) {
		t.Errorf("audio = %q", audio)
	}

	if client.last.Voice != openai.VoiceOnyx {
		t.Errorf("voice = %q, want onyx", client.last.Voice)
	}
	if client.last.Model != openai.TTSModel1 {
		t.Errorf("model = %q, want %q", client.last.Model, openai.TTSModel1)
	}
	if client.last.ResponseFormat != openai.SpeechResponseFormatMp3 {
		t.Errorf("format = %q, want mp3", client.last.ResponseFormat)
	}
}

func TestOpenAISynthesizeError(t *testing.T) {
	apiErr := errors.New("quota exceeded")
	o := newTestOpenAI(t, &fakeSpeechClient{err: apiErr})

	_, err := o.Synthesize(context.Background(), "hello")
	if !errors.Is(err, apiErr) {
		t.Fatalf("error = %v, want wrapped %v", err, apiErr)
	}
}

func TestOpenAIRejectsUnknownVoice(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{APIKey: "k", Voice: "gilfoyle"}); err == nil {
		t.Fatal("expected error for unknown voice")
	}
}

func TestOpenAIValidate(t *testing.T) {
	o, err := NewOpenAI(OpenAIConfig{})
	if err != nil {
		t.Fatalf("NewOpenAI error = %v", err)
	}
	if err := o.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate error = %v, want ErrMissingAPIKey", err)
	}
}
