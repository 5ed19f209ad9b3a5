// Package system implements desktop actions on top of the host OS.
package system

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"os/exec"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

func init() {
	// xdg-open and friends chatter on stdout; keep the terminal for the assistant.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Launcher starts executables detached from the assistant.
type Launcher struct{}

func (Launcher) Launch(_ context.Context, target string) error {
	cmd := exec.Command(target)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", target, err)
	}

	log.Info("Launched", "target", target, "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("Application exited", "target", target, "err", err)
		}
	}()

	return nil
}

// Opener uses the platform default handler (xdg-open, open, start).
type Opener struct{}

func (Opener) OpenURL(u string) error {
	if err := browser.OpenURL(u); err != nil {
		return fmt.Errorf("open url: %w", err)
	}
	return nil
}

func (Opener) OpenFile(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	return nil
}

// Clipboard is the system clipboard, plain text only.
type Clipboard struct{}

func (Clipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: no copy/paste utility found")
	}
	return clipboard.WriteAll(text)
}

func (Clipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("clipboard: no copy/paste utility found")
	}
	return clipboard.ReadAll()
}
