// Package webui is the chat window: a single page talking to the assistant
// over a websocket. It is best-effort; no client connected is a valid state.
package webui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

//go:embed static
var static embed.FS

const (
	KindInput = "input"
	KindReply = "reply"
	KindClose = "close"
)

type Message struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// InjectFunc handles text typed into the chat window.
type InjectFunc func(ctx context.Context, text string)

type client struct {
	conn *websocket.Conn
	send chan Message
}

type Server struct {
	inject   InjectFunc
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	srv *http.Server
	ln  net.Listener
}

func NewServer(inject InjectFunc) *Server {
	return &Server{
		inject: inject,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHost,
		},
		clients: make(map[*client]struct{}),
	}
}

func (s *Server) Handler() http.Handler {
	sub, _ := fs.Sub(static, "static")

	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(sub))
	mux.HandleFunc("GET /ws", s.serveWS)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Web view stopped", "err", err)
		}
	}()

	log.Info("Web view ready", "url", s.URL())

	return nil
}

func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String() + "/"
}

// Display pushes a reply to every connected window. Slow clients are dropped.
func (s *Server) Display(_ context.Context, text string) error {
	s.broadcast(Message{Kind: KindReply, Content: text})
	return nil
}

// Close tells windows to close and stops the server.
func (s *Server) Close() error {
	s.broadcast(Message{Kind: KindClose})

	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()

	return s.srv.Shutdown(ctx)
}

func (s *Server) broadcast(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		select {
		case c.send <- m:
		default:
			log.Warn("Dropping slow web view client")
			close(c.send)
			delete(s.clients, c)
		}
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Failed to upgrade", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan Message, 32)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	log.Debug("Web view connected", "remote", r.RemoteAddr)

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	defer func() {
		s.mu.Lock()
		if _, ok := s.clients[c]; ok {
			close(c.send)
			delete(s.clients, c)
		}
		s.mu.Unlock()
		c.conn.Close()
	}()

	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			if !isClosed(err) {
				log.Debug("Web view read failed", "err", err)
			}
			return
		}

		if m.Kind != KindInput || m.Content == "" {
			continue
		}
		if s.inject != nil {
			s.inject(ctx, m.Content)
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for m := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteJSON(m); err != nil {
			log.Debug("Web view write failed", "err", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}

// sameHost only accepts pages served by this process.
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host
}
