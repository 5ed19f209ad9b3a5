package output_test

import (
	"context"
	"errors"
	"testing"

	"proton/internal/output"
)

type recordingNotifier struct {
	shown []string
	err   error
}

func (r *recordingNotifier) Display(_ context.Context, text string) error {
	r.shown = append(r.shown, text)
	return r.err
}

func TestReplySpeaksThenDisplays(t *testing.T) {
	var spoken []string
	sink := output.NewSink("Proton", output.SpeakerFunc(func(text string) error {
		spoken = append(spoken, text)
		return nil
	}))
	n := &recordingNotifier{}
	sink.Attach(n)

	sink.Reply("hello")

	if len(spoken) != 1 || spoken[0] != "hello" {
		t.Fatalf("spoken = %v", spoken)
	}
	if len(n.shown) != 1 || n.shown[0] != "hello" {
		t.Fatalf("shown = %v", n.shown)
	}
}

func TestReplyToleratesFailures(t *testing.T) {
	sink := output.NewSink("Proton", output.SpeakerFunc(func(string) error {
		return errors.New("no audio device")
	}))
	n := &recordingNotifier{err: errors.New("gone")}
	sink.Attach(n)

	sink.Reply("still here")

	if len(n.shown) != 1 {
		t.Fatalf("notifier skipped after speaker failure")
	}
}

func TestReplyWithoutSurface(t *testing.T) {
	calls := 0
	sink := output.NewSink("Proton", output.SpeakerFunc(func(string) error {
		calls++
		return nil
	}))
	sink.Attach(nil)

	sink.Reply("one")
	sink.Reply("two")

	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}
