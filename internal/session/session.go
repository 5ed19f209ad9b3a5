// Package session runs the listen/dispatch loop and accepts text injected
// from the web view or the control socket.
package session

import (
	"context"
	"fmt"
	log "log/slog"
	"runtime/debug"
	"sync"
	"time"

	"proton/internal/command"
)

type Listener interface {
	Listen(ctx context.Context) string
}

type Dispatcher interface {
	Respond(ctx context.Context, transcript string) command.Outcome
}

// Surface is the visual window closed on exit.
type Surface interface {
	Close() error
}

type Session struct {
	in  Listener
	d   Dispatcher
	out command.Replier

	surface  Surface
	pause    time.Duration
	greeting string

	mu     sync.Mutex
	cancel context.CancelFunc
	exited bool

	closeOnce sync.Once
}

type Option func(*Session)

func WithSurface(s Surface) Option { return func(ss *Session) { ss.surface = s } }

// WithPause sets the idle time between two captures.
func WithPause(d time.Duration) Option { return func(s *Session) { s.pause = d } }

func WithGreeting(text string) Option { return func(s *Session) { s.greeting = text } }

func New(in Listener, d Dispatcher, out command.Replier, opts ...Option) *Session {
	s := &Session{
		in:       in,
		d:        d,
		out:      out,
		pause:    time.Second,
		greeting: "Hello Sir, I am Proton. How can I help you?",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Inject handles text typed by the user as if it had been spoken.
func (s *Session) Inject(ctx context.Context, text string) command.Outcome {
	s.out.Reply("You said: " + text)

	o := s.d.Respond(ctx, text)
	if o.Exit {
		s.exit()
	}
	return o
}

// Exited reports whether an exit command was handled.
func (s *Session) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

func (s *Session) exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exited = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Run loops until an exit command, cancellation of ctx, or a panic in an
// iteration. Only the latter is returned as an error.
func (s *Session) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	if s.exited {
		cancel()
	}
	s.mu.Unlock()

	if s.greeting != "" {
		s.out.Reply(s.greeting)
	}

	for {
		if s.Exited() {
			s.closeSurface()
			return nil
		}
		if ctx.Err() != nil {
			s.out.Reply("Shutting down...")
			s.closeSurface()
			return nil
		}

		if err := s.iterate(runCtx); err != nil {
			log.Error("Session loop failed", "err", err)
			s.closeSurface()
			return err
		}
	}
}

func (s *Session) iterate(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("Panic stack", "stack", string(debug.Stack()))
			err = fmt.Errorf("session: %v", r)
		}
	}()

	if s.pause > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.pause):
		}
	}

	text := s.in.Listen(ctx)
	if text == "" || ctx.Err() != nil {
		return nil
	}

	if o := s.d.Respond(ctx, text); o.Exit {
		s.exit()
	}

	return nil
}

func (s *Session) closeSurface() {
	if s.surface == nil {
		return
	}
	s.closeOnce.Do(func() {
		if err := s.surface.Close(); err != nil {
			log.Debug("Failed to close web view", "err", err)
		}
	})
}
