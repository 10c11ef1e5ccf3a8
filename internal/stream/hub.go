package stream

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	EventSignalCreated  = "signal_created"
	EventSignalUnlocked = "signal_unlocked"
)

// Event is one entry on the live feed. Unlock events intentionally omit the
// buyer: subscribers only learn that the cached signal list went stale.
type Event struct {
	Type     string    `json:"type"`
	SignalID string    `json:"signal_id"`
	At       time.Time `json:"at"`
}

// Hub fans out events to websocket subscribers. Slow subscribers drop
// events rather than blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *zap.Logger

	sendBuffer     int
	maxSubscribers int
	dropped        uint64
}

func NewHub(sendBuffer, maxSubscribers int, logger *zap.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	if maxSubscribers <= 0 {
		maxSubscribers = 256
	}
	return &Hub{
		subs:           map[chan Event]struct{}{},
		logger:         logger,
		sendBuffer:     sendBuffer,
		maxSubscribers: maxSubscribers,
	}
}

func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

func (h *Hub) subscribe() (chan Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) >= h.maxSubscribers {
		return nil, false
	}
	ch := make(chan Event, h.sendBuffer)
	h.subs[ch] = struct{}{}
	return ch, true
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Register mounts the websocket feed.
func (h *Hub) Register(r *gin.Engine) {
	r.GET("/api/v1/stream", h.serve)
}

func (h *Hub) serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.logger != nil {
			h.logger.Debug("stream accept failed", zap.Error(err))
		}
		return
	}

	ch, ok := h.subscribe()
	if !ok {
		_ = conn.Close(websocket.StatusTryAgainLater, "subscriber limit reached")
		return
	}
	defer h.unsubscribe(ch)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case e := <-ch:
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}
}
