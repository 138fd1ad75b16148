package demo

import (
	"sort"
	"sync"

	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/websocket"
)

// Chat message types. The page renders only "msg".
const (
	MessageTypeMsg   = "msg"
	MessageTypeJoin  = "join"
	MessageTypeLeave = "leave"
)

// ChatMessage is the JSON payload broadcast to every peer.
type ChatMessage struct {
	Type   string `json:"type"`
	Author string `json:"author"`
	Data   string `json:"data,omitempty"`
}

// Chat is a single room keyed by user name.
type Chat struct {
	mu    sync.RWMutex
	peers map[string]*websocket.Conn
}

// NewChat creates an empty room.
func NewChat() *Chat {
	return &Chat{peers: make(map[string]*websocket.Conn)}
}

// Handle serves GET /ws/chat?name=. A missing name is a bad request and a
// name already online is unauthorized. Plain GETs get a short HTML notice.
func (c *Chat) Handle(req *message.Request, resp *message.Response) router.Outcome {
	name := req.Query()["name"]
	if name == "" {
		return router.BadRequest()
	}
	if c.IsOnline(name) {
		return router.Unauthorized()
	}

	if websocket.IsUpgradeRequest(req) {
		return router.UpgradeToWebSocket(req.GetHeader(message.HeaderSecWebSocketKey), c.handlers(name))
	}

	resp.SetHeader(message.HeaderContentType, contentTypeHTML)
	resp.SetBodyString("<!DOCTYPE html><html><body><p>you're not a websocket!</p></body></html>")
	return router.Next()
}

func (c *Chat) handlers(name string) websocket.Handlers {
	return websocket.Handlers{
		OnOpen: func(ws *websocket.Conn) bool {
			if !c.join(name, ws) {
				return false
			}
			logging.Info("Chat peer connected", zap.String("name", name), zap.String("remote_addr", ws.RemoteAddr()))
			c.Broadcast(ChatMessage{Type: MessageTypeJoin, Author: name})
			return true
		},
		OnMessage: func(ws *websocket.Conn, op websocket.Opcode, data []byte) []*websocket.Frame {
			logging.Debug("Chat message", zap.String("name", name), zap.Int("bytes", len(data)))
			c.Broadcast(ChatMessage{Type: MessageTypeMsg, Author: name, Data: string(data)})
			return nil
		},
		OnClose: func(ws *websocket.Conn) {
			if c.leave(name, ws) {
				logging.Info("Chat peer disconnected", zap.String("name", name))
				c.Broadcast(ChatMessage{Type: MessageTypeLeave, Author: name})
			}
		},
	}
}

// join registers ws under name unless the name is taken.
func (c *Chat) join(name string, ws *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.peers[name]; ok {
		return false
	}
	c.peers[name] = ws
	return true
}

// leave removes name if it is still registered to ws.
func (c *Chat) leave(name string, ws *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peers[name] != ws {
		return false
	}
	delete(c.peers, name)
	return true
}

// IsOnline reports whether name has an open session.
func (c *Chat) IsOnline(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.peers[name]
	return ok
}

// Online returns the sorted names of all peers.
func (c *Chat) Online() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.peers))
	for name := range c.peers {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Broadcast sends msg as a text frame to every peer and returns how many
// sends succeeded.
func (c *Chat) Broadcast(msg ChatMessage) int {
	payload, err := sonnet.Marshal(msg)
	if err != nil {
		logging.Error("Failed to encode chat message", zap.Error(err))
		return 0
	}

	c.mu.RLock()
	peers := make([]*websocket.Conn, 0, len(c.peers))
	for _, ws := range c.peers {
		peers = append(peers, ws)
	}
	c.mu.RUnlock()

	sent := 0
	for _, ws := range peers {
		if err := ws.SendFrame(websocket.NewTextFrame(string(payload))); err != nil {
			logging.Debug("Chat broadcast skipped peer", zap.String("conn_id", ws.ID()), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
