// Package inspect exposes a controller's registry and pass activity over
// HTTP for debugging.
//
// Endpoints:
//
//	GET /snapshot  controller registry and counters as JSON
//	GET /health    liveness probe
//	GET /passes    live pass-trace stream over WebSocket
package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-drift/reflow/pkg/errors"
	"github.com/go-drift/reflow/pkg/reflow"
)

// Server serves inspection endpoints for one controller.
type Server struct {
	controller *reflow.Controller

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	clients  map[*websocket.Conn]struct{}
}

// NewServer creates an inspection server for controller.
func NewServer(controller *reflow.Controller) *Server {
	return &Server{
		controller: controller,
		clients:    make(map[*websocket.Conn]struct{}),
	}
}

// Start binds port and serves in the background. Returns the actual port,
// useful when port is 0 for ephemeral allocation. Starting a running server
// returns its current port.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		if s.listener != nil {
			return s.listener.Addr().(*net.TCPAddr).Port, nil
		}
		return port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("inspect server listen: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/passes", s.handlePasses)

	server := &http.Server{Handler: mux}
	s.server = server
	s.listener = listener

	// Every pass fans out to connected stream clients.
	s.controller.SetTraceFunc(s.broadcastTrace)

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			errors.Report(&errors.ReflowError{
				Op:   "inspect.Server.Start",
				Kind: errors.KindInspect,
				Err:  err,
			})
		}
	}()

	return actualPort, nil
}

// Stop gracefully shuts the server down and closes stream clients.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	clients := s.clients
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if server == nil {
		return
	}
	s.controller.SetTraceFunc(nil)

	for conn := range clients {
		conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := json.MarshalIndent(s.controller.TakeSnapshot(), "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok"}`)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handlePasses upgrades to WebSocket and streams PassTrace samples as JSON
// text messages until the client disconnects.
func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Reads are discarded; the read loop only detects disconnects.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// broadcastTrace sends a trace sample to every stream client, dropping
// clients whose writes fail.
func (s *Server) broadcastTrace(trace reflow.PassTrace) {
	data, err := json.Marshal(trace)
	if err != nil {
		return
	}

	s.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		clients = append(clients, conn)
	}
	s.mu.Unlock()

	for _, conn := range clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.dropClient(conn)
		}
	}
}
