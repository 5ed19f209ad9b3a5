package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"
)

// Encoder writes PCM as an uploadable audio file.
type Encoder func(w io.WriteSeeker, pcm []float32, sampleRate int) error

// Remote transcribes through the OpenAI audio transcription endpoint.
type Remote struct {
	client   openai.Client
	model    openai.AudioModel
	language string
	encode   Encoder
}

func NewRemote(client openai.Client, language string, encode Encoder) *Remote {
	return &Remote{
		client:   client,
		model:    openai.AudioModelWhisper1,
		language: language,
		encode:   encode,
	}
}

func (r *Remote) Close() error { return nil }

func (r *Remote) Transcribe(ctx context.Context, pcm16k []float32) (string, error) {
	if len(pcm16k) == 0 {
		return "", ErrUnintelligible
	}

	f, err := os.CreateTemp("", "proton-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := r.encode(f, pcm16k, 16000); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(f, "utterance.wav", "audio/wav"),
		Model: r.model,
	}
	if r.language != "" && r.language != "auto" {
		params.Language = openai.String(r.language)
	}

	res, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			log.Debug("Transcription rejected", "err", err)
			return "", ErrUnintelligible
		}
		return "", fmt.Errorf("transcription: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", ErrUnintelligible
	}

	return text, nil
}
