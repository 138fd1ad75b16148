package server

import (
	"errors"

	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/conn"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/websocket"
)

// runWebSocket runs the frame loop on c after the 101 response was sent.
// It returns when the session ends; the caller closes c.
func (s *Server) runWebSocket(c *conn.Conn, target *router.UpgradeTarget) {
	logging.LogConnection(c.ID(), c.RemoteAddr(), "websocket_upgraded")

	// Sessions idle between messages; only writes stay bounded.
	c.SetTimeouts(0, s.config.WriteTimeout)

	ws := websocket.NewConn(c, target.Handlers,
		websocket.WithID(c.ID()),
		websocket.WithMaxPayload(s.maxMessageSize),
	)

	s.mu.Lock()
	s.sockets[ws] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sockets, ws)
		s.mu.Unlock()
	}()

	err := ws.Run()
	switch {
	case err == nil:
	case errors.Is(err, websocket.ErrRejected):
		logging.Debug("WebSocket session rejected by application",
			zap.String("conn_id", c.ID()),
		)
	default:
		logging.Info("WebSocket session ended with error",
			zap.String("conn_id", c.ID()),
			zap.String("remote_addr", c.RemoteAddr()),
			zap.Error(err),
		)
	}
}
