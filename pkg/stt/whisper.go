//go:build whisper

package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Local runs whisper.cpp in-process; no network involved.
type Local struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	threads  int
}

func NewLocal(modelPath, language string) (*Local, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if language == "" {
		language = "auto"
	}
	return &Local{model: m, language: language, threads: runtime.NumCPU()}, nil
}

func (l *Local) Close() error {
	if l.model == nil {
		return nil
	}
	return l.model.Close()
}

func (l *Local) Transcribe(ctx context.Context, pcm16k []float32) (string, error) {
	if len(pcm16k) == 0 {
		return "", ErrUnintelligible
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	wctx, err := l.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}
	if err := wctx.SetLanguage(l.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(l.threads))

	if err := wctx.Process(pcm16k, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		if t := strings.TrimSpace(seg.Text); t != "" && !isNoise(t) {
			parts = append(parts, t)
		}
	}

	if len(parts) == 0 {
		return "", ErrUnintelligible
	}

	return strings.Join(parts, " "), nil
}

// isNoise filters whisper's non-speech annotations like "[BLANK_AUDIO]".
func isNoise(s string) bool {
	return (strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")) ||
		(strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))
}
