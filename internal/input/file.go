package input

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"proton/pkg/audioconv"
)

// Dir replays audio files dropped into a directory, oldest name first.
// Processed files are renamed with a .processed suffix.
type Dir struct {
	dir  string
	poll time.Duration
	seen map[string]bool
}

func NewDir(dir string) *Dir {
	return &Dir{dir: dir, poll: 500 * time.Millisecond, seen: make(map[string]bool)}
}

func (d *Dir) Name() string { return "file" }

func (d *Dir) Capture(ctx context.Context) ([]float32, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		path, err := d.next()
		if err != nil {
			return nil, err
		}
		if path != "" {
			return d.consume(path)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Dir) next() (string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return "", fmt.Errorf("read dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if d.seen[e.Name()] {
			continue
		}
		if slices.Contains(audioconv.Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}

	sort.Strings(names)
	return filepath.Join(d.dir, names[0]), nil
}

func (d *Dir) consume(path string) ([]float32, error) {
	d.seen[filepath.Base(path)] = true
	pcm, err := audioconv.DecodeFile(path, audioconv.Options{})

	if rerr := os.Rename(path, path+".processed"); rerr != nil {
		log.Warn("Failed to mark file processed", "path", path, "err", rerr)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	log.Info("Replaying", "file", filepath.Base(path), "samples", len(pcm))

	return pcm, nil
}
