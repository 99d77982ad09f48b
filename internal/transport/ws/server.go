// Package ws exposes the session manager over a websocket control
// socket: clients send load and unload commands, the server streams
// progress and loaded events to every connected client.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"leveltracker.gg/internal/session"
)

// Server bridges websocket clients and the session manager. Commands
// are handed to dispatch, which must run them on the goroutine owning
// the manager; event callbacks arrive on that same goroutine and fan
// out through per-connection send queues.
type Server struct {
	mgr      *session.Manager
	dispatch func(func())
	log      *log.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*clientConn]bool
}

type clientConn struct {
	out chan []byte
}

func NewServer(mgr *session.Manager, dispatch func(func()), logger *log.Logger) *Server {
	s := &Server{
		mgr:      mgr,
		dispatch: dispatch,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		conns: make(map[*clientConn]bool),
	}
	mgr.SubscribeProgress(func(ev session.ProgressEvent) {
		s.broadcast(ProgressMsg{
			Type:     TypeProgress,
			Level:    ev.Level,
			Progress: ev.Progress,
			Loaded:   ev.Loaded,
			Total:    ev.Total,
		})
	})
	mgr.SubscribeLoaded(func(ev session.LoadedEvent) {
		s.broadcast(LoadedMsg{Type: TypeLoaded, Level: ev.Level})
	})
	return s
}

func (s *Server) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		select {
		case c.out <- b:
		default:
			// Slow consumer loses events rather than stalling the
			// session loop.
		}
	}
}

func (s *Server) add(c *clientConn) {
	s.mu.Lock()
	s.conns[c] = true
	s.mu.Unlock()
}

func (s *Server) remove(c *clientConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &clientConn{out: make(chan []byte, 64)}
		s.add(c)
		defer s.remove(c)

		done := make(chan struct{})
		defer close(done)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-c.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				s.sendError(c, "bad command")
				continue
			}
			s.handle(c, cmd)
		}
	}
}

func (s *Server) handle(c *clientConn, cmd Command) {
	switch cmd.Type {
	case TypeOpenLevel:
		level, preload := cmd.Level, cmd.PreloadEnabled()
		s.dispatch(func() {
			if !s.mgr.OpenLevel(level, preload) {
				s.sendError(c, "open rejected: "+level)
			}
		})
	case TypeLoadInstance:
		level, preload := cmd.Level, cmd.PreloadEnabled()
		p := session.InstanceParams{
			Transform:     cmd.Transform,
			ClassOverride: cmd.ClassOverride,
			Temp:          cmd.Temp,
		}
		s.dispatch(func() {
			if !s.mgr.LoadLevelInstance(level, p, preload) {
				s.sendError(c, "load rejected: "+level)
			}
		})
	case TypeUnload:
		level := cmd.Level
		s.dispatch(func() {
			if !s.mgr.UnloadLevelInstance(level) {
				s.sendError(c, "no session: "+level)
			}
		})
	case TypeUnloadAll:
		s.dispatch(func() { s.mgr.UnloadAll() })
	default:
		s.sendError(c, "unknown command type "+cmd.Type)
	}
}

func (s *Server) sendError(c *clientConn, reason string) {
	s.log.Printf("client error: %s", reason)
	b, err := json.Marshal(ErrorMsg{Type: TypeError, Reason: reason})
	if err != nil {
		return
	}
	select {
	case c.out <- b:
	default:
	}
}
