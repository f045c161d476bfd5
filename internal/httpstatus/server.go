// Package httpstatus exposes the optional, loopback-only diagnostic
// feed behind "ada watch --http": a JSON status snapshot and a
// WebSocket stream of the event bus. It is read-only and accepts no
// commands.
package httpstatus

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ada-cli/ada/internal/events"
	"github.com/ada-cli/ada/internal/status"
)

// Server serves GET /status and GET /events over a net/http mux.
type Server struct {
	reader   *status.Reader
	bus      *events.Bus
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// New builds a Server. It does not bind a listener; call Handler and
// pass it to an http.Server (or ListenAndServe) bound to a loopback
// address by the caller.
func New(reader *status.Reader, bus *events.Bus, logger *log.Logger) *Server {
	return &Server{
		reader: reader,
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the server's request multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/events", s.handleEvents)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reader.All()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch, cancel := s.bus.Subscribe()
	defer cancel()

	for _, ev := range s.bus.Recent(20) {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
