// Package output is where every assistant reply ends up: the speaker and,
// when one is attached, the visual surface.
package output

import (
	"context"
	log "log/slog"
	"sync"
	"time"
)

// Speaker synthesizes text and blocks until playback completes.
type Speaker interface {
	Speak(text string) error
}

// Notifier is a best-effort visual surface. A nil Notifier is valid.
type Notifier interface {
	Display(ctx context.Context, text string) error
}

type SpeakerFunc func(text string) error

func (f SpeakerFunc) Speak(text string) error { return f(text) }

type Sink struct {
	name    string
	speaker Speaker

	mu       sync.Mutex
	notifier Notifier
}

func NewSink(name string, speaker Speaker) *Sink {
	return &Sink{name: name, speaker: speaker}
}

// Attach sets the visual surface. Passing nil detaches it.
func (s *Sink) Attach(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Reply speaks text and mirrors it to the visual surface. Replies from
// different goroutines never overlap.
func (s *Sink) Reply(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info(s.name+":", "text", text)

	if s.speaker != nil {
		if err := s.speaker.Speak(text); err != nil {
			log.Error("Failed to voice out", "err", err)
		}
	}

	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.notifier.Display(ctx, text); err != nil {
		log.Debug("Visual surface unreachable", "err", err)
	}
}
