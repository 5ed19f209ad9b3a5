// Package stt turns 16 kHz mono PCM into text.
package stt

import (
	"context"
	"errors"
)

// ErrUnintelligible means the audio was processed but no speech could be recognized.
var ErrUnintelligible = errors.New("speech not recognized")

// Transcriber is implemented by every recognition backend. Any error other
// than ErrUnintelligible means the backend itself failed.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm16k []float32) (string, error)
	Close() error
}
