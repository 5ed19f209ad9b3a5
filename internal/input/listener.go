// Package input produces one lower-cased transcript per call.
package input

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"proton/internal/command"
	"proton/pkg/stt"
)

const (
	MsgUnintelligible = "Sorry, I did not understand that"
	MsgUnavailable    = "Speech recognition service is unavailable"
	MsgDevice         = "Audio device error. Please restart and choose a different microphone."
)

// Capturer records one utterance as 16 kHz mono PCM.
type Capturer interface {
	Name() string
	Capture(ctx context.Context) ([]float32, error)
}

// Cue signals the start of a capture.
type Cue interface {
	Play() error
}

// Ducker quiets other audio while capturing.
type Ducker interface {
	Duck(ctx context.Context) error
	Restore(ctx context.Context) error
}

type Listener struct {
	capturer    Capturer
	transcriber stt.Transcriber
	out         command.Replier

	cue    Cue
	ducker Ducker

	timeout time.Duration
}

type Option func(*Listener)

func WithCue(c Cue) Option { return func(l *Listener) { l.cue = c } }

func WithDucker(d Ducker) Option { return func(l *Listener) { l.ducker = d } }

// WithTimeout bounds the transcription call.
func WithTimeout(d time.Duration) Option { return func(l *Listener) { l.timeout = d } }

func NewListener(c Capturer, t stt.Transcriber, out command.Replier, opts ...Option) *Listener {
	l := &Listener{
		capturer:    c,
		transcriber: t,
		out:         out,
		timeout:     60 * time.Second,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Listen returns the transcript of one utterance, or "" when nothing usable
// was heard. Failures are reported through the reply sink, never returned.
func (l *Listener) Listen(ctx context.Context) string {
	pcm, err := l.capture(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ""
		}
		log.Error("Failed to record", "source", l.capturer.Name(), "err", err)
		l.out.Reply(MsgDevice)
		return ""
	}

	log.Debug("Recorded", "samples", len(pcm))

	tctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	text, err := l.transcriber.Transcribe(tctx, pcm)
	switch {
	case ctx.Err() != nil:
		return ""
	case errors.Is(err, stt.ErrUnintelligible):
		l.out.Reply(MsgUnintelligible)
		return ""
	case err != nil:
		log.Error("Failed to transcribe", "err", err)
		l.out.Reply(MsgUnavailable)
		return ""
	}

	log.Info("You said:", "text", text)

	return strings.ToLower(text)
}

func (l *Listener) capture(ctx context.Context) ([]float32, error) {
	if l.cue != nil {
		if err := l.cue.Play(); err != nil {
			log.Warn("Failed to play cue", "err", err)
		}
	}

	if l.ducker != nil {
		if err := l.ducker.Duck(ctx); err != nil {
			log.Warn("Failed to duck other streams", "err", err)
		}
		defer func() {
			// restore even when ctx is already cancelled
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.ducker.Restore(rctx); err != nil {
				log.Warn("Failed to restore other streams", "err", err)
			}
		}()
	}

	return l.capturer.Capture(ctx)
}
