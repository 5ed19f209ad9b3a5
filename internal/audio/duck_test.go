package audio

import (
	"context"
	"strings"
	"testing"
)

const pactlSample = `Sink Input #41
	Driver: protocol-native.c
	Volume: front-left: 52428 /  80% / -5.81 dB,   front-right: 52428 /  80% / -5.81 dB
	Properties:
		application.name = "Firefox"
Sink Input #57
	Volume: front-left: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "proton"
Sink Input #60
	Volume: mono: 32768 /  50% / -18.06 dB
	Properties:
		application.name = "Spotify"
`

func TestParseSinkInputs(t *testing.T) {
	got := parseSinkInputs(pactlSample)
	want := []sinkInput{
		{ID: 41, Volume: 80, AppName: "Firefox"},
		{ID: 57, Volume: 100, AppName: "proton"},
		{ID: 60, Volume: 50, AppName: "Spotify"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d inputs, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("input %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

type fakePactl struct {
	calls []string
}

func (f *fakePactl) run(_ context.Context, args ...string) ([]byte, error) {
	if len(args) > 0 && args[0] == "list" {
		return []byte(pactlSample), nil
	}
	f.calls = append(f.calls, strings.Join(args, " "))
	return nil, nil
}

func TestDuckAndRestore(t *testing.T) {
	fake := &fakePactl{}
	d := NewDucker([]string{"proton"}, 0.25, 15, 0).WithRunner(fake.run)
	ctx := context.Background()

	if err := d.Duck(ctx); err != nil {
		t.Fatalf("duck: %v", err)
	}
	wantDuck := []string{
		"set-sink-input-volume 41 20%",
		"set-sink-input-volume 60 15%",
	}
	if strings.Join(fake.calls, ",") != strings.Join(wantDuck, ",") {
		t.Fatalf("duck calls = %v, want %v", fake.calls, wantDuck)
	}

	fake.calls = nil
	if err := d.Duck(ctx); err != nil || len(fake.calls) != 0 {
		t.Fatalf("second duck should be a no-op: %v %v", err, fake.calls)
	}

	if err := d.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	wantRestore := []string{
		"set-sink-input-volume 41 80%",
		"set-sink-input-volume 60 50%",
	}
	if strings.Join(fake.calls, ",") != strings.Join(wantRestore, ",") {
		t.Fatalf("restore calls = %v, want %v", fake.calls, wantRestore)
	}
}
