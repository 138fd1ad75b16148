package server

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/conn"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/websocket"
)

// serveRequest reads one request, dispatches it and writes the answer.
func (s *Server) serveRequest(c *conn.Conn, start time.Time) {
	buf := make([]byte, s.config.ReadBufferSize)
	n, err := c.Read(buf)
	if err != nil {
		logging.Debug("Failed to read request",
			zap.String("conn_id", c.ID()),
			zap.String("remote_addr", c.RemoteAddr()),
			zap.Error(err),
		)
		return
	}

	req, err := message.ParseRequest(buf[:n])
	if err != nil {
		logging.Warn("Malformed request",
			zap.String("conn_id", c.ID()),
			zap.String("remote_addr", c.RemoteAddr()),
			zap.Error(err),
		)
		logging.LogRawBytes("Malformed request bytes", buf[:n])
		_ = s.writeResponse(c, "-", "-", s.defaults.Response(router.KindBadRequest), start)
		return
	}

	resp, upgrade := s.dispatch(req)
	if err := s.writeResponse(c, req.Method(), req.Path(), resp, start); err != nil {
		return
	}
	if upgrade != nil {
		s.runWebSocket(c, upgrade)
	}
}

// dispatch resolves the route and runs its chain. A handler panic becomes
// a 500 response.
func (s *Server) dispatch(req *message.Request) (resp *message.Response, upgrade *router.UpgradeTarget) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("Handler panicked",
				zap.String("method", req.Method()),
				zap.String("path", req.Path()),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			resp, upgrade = internalError(), nil
		}
	}()

	chain, routePath, err := s.router.Resolve(req.Method(), req.Path())
	if err != nil {
		return s.defaults.Response(router.KindNotFound), nil
	}
	req.SetRoutePath(routePath)

	resp = message.NewResponse(message.StatusOK, nil, nil)
	for _, h := range chain {
		if out := h(req, resp); out.Terminal() {
			return s.applyOutcome(req, resp, out)
		}
	}
	return resp, nil
}

// applyOutcome maps a terminal outcome to the response to send.
func (s *Server) applyOutcome(req *message.Request, resp *message.Response, out router.Outcome) (*message.Response, *router.UpgradeTarget) {
	switch out.Kind {
	case router.KindNotFound, router.KindBadRequest, router.KindUnauthorized:
		return s.defaults.Response(out.Kind), nil

	case router.KindRespond:
		if out.Response == nil {
			return resp, nil
		}
		return out.Response, nil

	case router.KindServeFromStorage:
		return s.storageResponse(out.Storage), nil

	case router.KindUpgrade:
		if !websocket.IsUpgradeRequest(req) {
			// Not a handshake: answer as plain HTTP with the response so far.
			logging.Debug("Upgrade outcome for a request that is not a WebSocket handshake",
				zap.String("path", req.Path()),
			)
			return resp, nil
		}
		target := out.Upgrade
		if target.Key == "" {
			target.Key = req.GetHeader(message.HeaderSecWebSocketKey)
		}
		return websocket.HandshakeResponse(target.Key), &target

	default:
		logging.Error("Handler returned an unknown outcome", zap.Stringer("kind", out.Kind))
		return internalError(), nil
	}
}

// storageResponse loads a file for a FromStorage outcome. A missing file
// is served as an empty body.
func (s *Server) storageResponse(t router.StorageTarget) *message.Response {
	data, err := s.storage.Load(t.Path)
	if err != nil {
		logging.Warn("Storage file unavailable, serving empty body",
			zap.String("path", t.Path),
			zap.Error(err),
		)
		data = nil
	}

	status := t.Status
	if status == 0 {
		status = message.StatusOK
	}
	resp := message.NewResponse(status, t.Header, data)
	if t.ContentType != "" {
		resp.SetHeader(message.HeaderContentType, t.ContentType)
	}
	return resp
}

// writeResponse serializes resp onto c and logs the access line.
func (s *Server) writeResponse(c *conn.Conn, method, path string, resp *message.Response, start time.Time) error {
	if _, err := c.Write(resp.Build()); err != nil {
		logging.Warn("Failed to write response",
			zap.String("conn_id", c.ID()),
			zap.String("remote_addr", c.RemoteAddr()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write response: %w", err)
	}

	if s.config.LogRequests {
		logging.LogAccess(method, resp.Status(), path, c.RemoteAddr(), c.ID(), time.Since(start))
	}
	return nil
}
