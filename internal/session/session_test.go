package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"proton/internal/command"
	"proton/internal/session"
)

type recorder struct {
	mu      sync.Mutex
	replies []string
}

func (r *recorder) Reply(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replies...)
}

func (r *recorder) contains(text string) bool {
	for _, got := range r.all() {
		if got == text {
			return true
		}
	}
	return false
}

// script returns queued transcripts, then blocks until ctx is done.
type script struct {
	mu    sync.Mutex
	lines []string
	calls int
}

func (s *script) Listen(ctx context.Context) string {
	s.mu.Lock()
	s.calls++
	if len(s.lines) > 0 {
		line := s.lines[0]
		s.lines = s.lines[1:]
		s.mu.Unlock()
		return line
	}
	s.mu.Unlock()

	<-ctx.Done()
	return ""
}

type surface struct{ closed int }

func (s *surface) Close() error { s.closed++; return nil }

type panicky struct{}

func (panicky) Respond(context.Context, string) command.Outcome { panic("boom") }

func run(t *testing.T, s *session.Session, ctx context.Context) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("session did not stop")
		return nil
	}
}

func TestVoiceExit(t *testing.T) {
	out := &recorder{}
	d := command.New(out, command.Options{})
	ui := &surface{}
	in := &script{lines: []string{"", "go to sleep", "exit", "wake up", "exit"}}

	s := session.New(in, d, out, session.WithPause(0), session.WithSurface(ui))

	if err := run(t, s, context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	replies := out.all()
	if replies[0] != "Hello Sir, I am Proton. How can I help you?" {
		t.Fatalf("greeting = %q", replies[0])
	}
	if replies[len(replies)-1] != "Goodbye, Sir" {
		t.Fatalf("last reply = %q", replies[len(replies)-1])
	}
	if !out.contains("Proton is sleeping. Say 'wake up' to activate.") {
		t.Fatalf("exit while sleeping was not refused: %v", replies)
	}
	if ui.closed != 1 {
		t.Fatalf("surface closed %d times", ui.closed)
	}
	if !s.Exited() {
		t.Fatalf("not exited")
	}
}

func TestInterruptSaysShuttingDown(t *testing.T) {
	out := &recorder{}
	s := session.New(&script{}, command.New(out, command.Options{}), out, session.WithPause(0))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	if err := run(t, s, ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.contains("Shutting down...") {
		t.Fatalf("replies = %v", out.all())
	}
}

func TestInjectExitStopsLoop(t *testing.T) {
	out := &recorder{}
	s := session.New(&script{}, command.New(out, command.Options{}), out, session.WithPause(0))

	time.AfterFunc(50*time.Millisecond, func() {
		s.Inject(context.Background(), "quit")
	})

	if err := run(t, s, context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.contains("You said: quit") || !out.contains("Goodbye, Sir") {
		t.Fatalf("replies = %v", out.all())
	}
	if out.contains("Shutting down...") {
		t.Fatalf("exit treated as interrupt")
	}
}

func TestInjectEchoesThenDispatches(t *testing.T) {
	out := &recorder{}
	s := session.New(&script{}, command.New(out, command.Options{}), out)

	o := s.Inject(context.Background(), "hello there")
	if o.Rule != command.RuleUnknown {
		t.Fatalf("rule = %s", o.Rule)
	}
	want := []string{"You said: hello there", "I did not understand, can you repeat?"}
	got := out.all()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("replies = %v", got)
	}
}

func TestPanicIsFatal(t *testing.T) {
	out := &recorder{}
	s := session.New(&script{lines: []string{"anything"}}, panicky{}, out, session.WithPause(0))

	err := run(t, s, context.Background())
	if err == nil {
		t.Fatal("expected error from panicking dispatcher")
	}
}
