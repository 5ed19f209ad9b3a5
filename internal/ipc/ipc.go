// Package ipc is the local control socket used by proton-ctl.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	CmdSay  = "say"
	CmdQuit = "quit"
)

// DefaultSocketPath is used when no --socket flag is given.
var DefaultSocketPath = filepath.Join(os.TempDir(), "proton.sock")

type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

type Server struct {
	ln   net.Listener
	path string
}

// StartServer accepts control messages on a unix socket and hands each one
// to handler on its own goroutine.
func StartServer(path string, handler func(ControlMessage)) (*Server, error) {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{ln: ln, path: path}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				log.Warn("Control socket accept failed", "err", err)
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	log.Debug("Control socket ready", "path", path)

	return s, nil
}

func (s *Server) Close() error {
	err := s.ln.Close()
	os.Remove(s.path)
	return err
}

func handleConn(conn net.Conn, handler func(ControlMessage)) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("Bad control message", "err", err)
		return
	}
	handler(msg)
}

func SendCommand(path string, msg ControlMessage) error {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	return json.NewEncoder(conn).Encode(msg)
}
