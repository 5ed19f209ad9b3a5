package stt_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"proton/pkg/stt"
)

func rawEncoder(w io.WriteSeeker, pcm []float32, _ int) error {
	_, err := w.Write([]byte("RIFF-fake"))
	return err
}

func newRemote(t *testing.T, handler http.HandlerFunc) *stt.Remote {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
	return stt.NewRemote(client, "en", rawEncoder)
}

func TestRemoteTranscribe(t *testing.T) {
	var gotLanguage, gotModel string
	var gotFile []byte

	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %s", req.URL.Path)
		}
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart: %v", err)
		}
		gotLanguage = req.FormValue("language")
		gotModel = req.FormValue("model")
		if f, _, err := req.FormFile("file"); err == nil {
			gotFile, _ = io.ReadAll(f)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":" Open Firefox "}`)
	})

	text, err := r.Transcribe(context.Background(), []float32{0.1, 0.2})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "Open Firefox" {
		t.Fatalf("text = %q", text)
	}
	if gotLanguage != "en" || gotModel != "whisper-1" {
		t.Fatalf("language = %q model = %q", gotLanguage, gotModel)
	}
	if string(gotFile) != "RIFF-fake" {
		t.Fatalf("file = %q", gotFile)
	}
}

func TestRemoteEmptyIsUnintelligible(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":""}`)
	})

	if _, err := r.Transcribe(context.Background(), []float32{0.1}); !errors.Is(err, stt.ErrUnintelligible) {
		t.Fatalf("err = %v, want ErrUnintelligible", err)
	}
	if _, err := r.Transcribe(context.Background(), nil); !errors.Is(err, stt.ErrUnintelligible) {
		t.Fatalf("no samples: err = %v", err)
	}
}

func TestRemoteServiceFailure(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	})

	_, err := r.Transcribe(context.Background(), []float32{0.1})
	if err == nil || errors.Is(err, stt.ErrUnintelligible) {
		t.Fatalf("err = %v, want service error", err)
	}
}

func TestRemoteBadAudio(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Audio file is too short","type":"invalid_request_error"}}`)
	})

	if _, err := r.Transcribe(context.Background(), []float32{0.1}); !errors.Is(err, stt.ErrUnintelligible) {
		t.Fatalf("err = %v, want ErrUnintelligible", err)
	}
}
