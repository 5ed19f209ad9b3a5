package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

// Runner executes pactl with args and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func pactl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}

// Ducker lowers the volume of other applications' streams while the
// assistant listens, then restores it. Streams whose application.name is in
// self are left alone.
type Ducker struct {
	mu       sync.Mutex
	run      Runner
	self     []string
	factor   float64
	floor    int
	fade     time.Duration
	original map[int]int
}

func NewDucker(self []string, factor float64, floor int, fade time.Duration) *Ducker {
	return &Ducker{
		run:    pactl,
		self:   append([]string(nil), self...),
		factor: factor,
		floor:  clampVolume(floor),
		fade:   fade,
	}
}

// WithRunner replaces pactl, mostly for tests.
func (d *Ducker) WithRunner(r Runner) *Ducker {
	d.run = r
	return d
}

// Duck fades every foreign stream to volume*factor. Calling it twice is a no-op.
func (d *Ducker) Duck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.original != nil {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	d.original = make(map[int]int)
	var steps []volumeStep
	for _, in := range inputs {
		to := int(math.Round(float64(in.Volume) * d.factor))
		if to < d.floor {
			to = d.floor
		}
		d.original[in.ID] = in.Volume
		steps = append(steps, volumeStep{id: in.ID, from: in.Volume, to: clampVolume(to)})
	}

	return d.apply(ctx, steps)
}

// Restore fades ducked streams back. Streams that appeared after Duck are ignored.
func (d *Ducker) Restore(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.original == nil {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	var steps []volumeStep
	for _, in := range inputs {
		orig, ok := d.original[in.ID]
		if !ok {
			continue
		}
		steps = append(steps, volumeStep{id: in.ID, from: in.Volume, to: orig})
	}
	d.original = nil

	return d.apply(ctx, steps)
}

func (d *Ducker) list(ctx context.Context) ([]sinkInput, error) {
	out, err := d.run(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var foreign []sinkInput
	for _, in := range parseSinkInputs(string(out)) {
		if !d.isSelf(in) {
			foreign = append(foreign, in)
		}
	}
	return foreign, nil
}

func (d *Ducker) isSelf(in sinkInput) bool {
	for _, name := range d.self {
		if in.AppName == name {
			return true
		}
	}
	return false
}

type volumeStep struct {
	id, from, to int
}

func (d *Ducker) apply(ctx context.Context, steps []volumeStep) error {
	if len(steps) == 0 {
		return nil
	}

	n := int(d.fade / (10 * time.Millisecond))
	if n < 1 {
		n = 1
	}
	pause := d.fade / time.Duration(n)

	for i := 1; i <= n; i++ {
		frac := float64(i) / float64(n)
		for _, s := range steps {
			v := int(math.Round(float64(s.from) + float64(s.to-s.from)*frac))
			if _, err := d.run(ctx, "set-sink-input-volume", strconv.Itoa(s.id), fmt.Sprintf("%d%%", clampVolume(v))); err != nil {
				return fmt.Errorf("set volume id=%d: %w", s.id, err)
			}
		}
		if i < n && pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
	}

	return nil
}

// parseSinkInputs reads the output of `pactl list sink-inputs`.
func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	var res []sinkInput

	for _, block := range blocks[1:] {
		header, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && in.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); m != nil {
					in.Volume, _ = strconv.Atoi(m[1])
				}
			}

			if rest, ok := strings.CutPrefix(line, "application.name ="); ok && in.AppName == "" {
				in.AppName = strings.Trim(strings.TrimSpace(rest), `"`)
			}
		}

		if in.Volume == 0 && in.AppName == "" {
			continue
		}
		res = append(res, in)
	}

	return res
}

func clampVolume(v int) int {
	return max(0, min(150, v))
}
