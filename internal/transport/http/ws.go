package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/audioengine/audioengine/internal/engine"
)

const writeTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Loopback-only control surface (§6): no cross-origin browser client
	// is in scope, so the default same-origin check is relaxed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and forwards every Engine event
// as a JSON frame until the client disconnects or the engine is closed.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("ws: upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go drainReads(conn, closed)

	for {
		select {
		case <-closed:
			return
		case ev, open := <-s.engine.Events():
			if !open {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		}
	}
}

// drainReads discards incoming client frames (this channel is
// server-to-client only) so the read side stays drained and close/ping
// control frames are still processed by gorilla/websocket's read loop.
func drainReads(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev engine.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	switch ev.Type {
	case engine.EventSpectrumData:
		return conn.WriteJSON(spectrumFrame{Type: string(ev.Type), Data: ev.Spectrum})
	case engine.EventPlaybackState:
		return conn.WriteJSON(playbackStateFrame{Type: string(ev.Type), State: ev.State})
	default:
		return nil
	}
}
