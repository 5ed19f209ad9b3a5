package system

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Background supervises at most one auxiliary process. Starting a new one
// replaces the handle; the previous process, if still alive, is terminated.
type Background struct {
	name string
	args []string

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewBackground prepares a handle for file. Python scripts are run through
// python3, everything else is executed directly without arguments.
func NewBackground(file string) *Background {
	if strings.EqualFold(filepath.Ext(file), ".py") {
		return &Background{name: "python3", args: []string{file}}
	}
	return &Background{name: file}
}

func (b *Background) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.aliveLocked() {
		if err := b.stopLocked(); err != nil {
			return fmt.Errorf("replace running process: %w", err)
		}
	}

	cmd := exec.Command(b.name, b.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", b.name, err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		log.Debug("Background process exited", "pid", cmd.Process.Pid, "err", err)
		close(done)
	}()

	b.cmd = cmd
	b.done = done

	log.Info("Background process started", "cmd", b.name, "pid", cmd.Process.Pid)

	return nil
}

func (b *Background) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.aliveLocked()
}

// Stop terminates the process and waits briefly for it to exit.
func (b *Background) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.aliveLocked() {
		return nil
	}
	return b.stopLocked()
}

func (b *Background) aliveLocked() bool {
	if b.done == nil {
		return false
	}
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

func (b *Background) stopLocked() error {
	const grace = 3 * time.Second

	if err := b.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		// SIGTERM is not deliverable everywhere (windows)
		if err := b.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill: %w", err)
		}
	}

	select {
	case <-b.done:
	case <-time.After(grace):
		if err := b.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill after %s: %w", grace, err)
		}
		<-b.done
	}

	log.Info("Background process stopped", "pid", b.cmd.Process.Pid)

	return nil
}
