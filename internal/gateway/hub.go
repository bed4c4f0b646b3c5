// Package gateway fans completed analyses out to WebSocket dashboard
// clients. New clients get a replay of recent analyses, then live updates
// as they are produced. Slow clients drop messages rather than block the
// hub.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"stock-signals/internal/model"
)

// pubSubPrefix is the Redis channel prefix analyses travel on between
// processes (scanner to analyzer dashboards).
const pubSubPrefix = "pub:analysis:"

// Envelope is the wire frame sent to dashboard clients and published on
// Redis. Origin identifies the publishing hub so a subscriber can skip
// messages it broadcast itself.
type Envelope struct {
	Type     string             `json:"type"` // "analysis"
	Symbol   string             `json:"symbol"`
	Exchange string             `json:"exchange"`
	Price    float64            `json:"price"`
	Result   model.SignalResult `json:"result"`
	Origin   string             `json:"origin,omitempty"`
	Replayed bool               `json:"replayed,omitempty"`
	TS       time.Time          `json:"ts"`
}

// Hub manages WebSocket clients and analysis fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	replay  *ReplayBuffer
	id      string

	upgrader websocket.Upgrader

	// Optional: publish analyses to Redis for other processes, and
	// consume theirs via RunRedisFanIn.
	rdb *goredis.Client
}

// NewHub creates a hub replaying up to replayN recent analyses to each new
// client. rdb may be nil when cross-process fan-out is not wanted.
func NewHub(replayN int, rdb *goredis.Client) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		replay:  NewReplayBuffer(replayN),
		id:      fmt.Sprintf("%d-%d", os.Getpid(), time.Now().UnixNano()),
		rdb:     rdb,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Publish broadcasts a fresh analysis to local clients, records it for
// replay, and publishes the full envelope on Redis for other processes.
func (h *Hub) Publish(ctx context.Context, symbol, exchange string, price float64, res model.SignalResult) {
	env := Envelope{
		Type:     "analysis",
		Symbol:   symbol,
		Exchange: exchange,
		Price:    price,
		Result:   res,
		Origin:   h.id,
		TS:       time.Now().UTC(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[gateway] marshal envelope for %s: %v", symbol, err)
		return
	}

	h.broadcast(data)

	if h.rdb != nil {
		if err := h.rdb.Publish(ctx, pubSubPrefix+symbol, data).Err(); err != nil {
			log.Printf("[gateway] redis publish %s: %v", symbol, err)
		}
	}
}

// broadcast records an envelope for replay and sends it to all connected
// clients.
func (h *Hub) broadcast(data []byte) {
	h.replay.Push(data)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow client: drop rather than block the hub.
		}
	}
}

// RunRedisFanIn subscribes to analysis publishes from other processes and
// re-broadcasts them locally. Blocks until ctx is cancelled.
func (h *Hub) RunRedisFanIn(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	sub := h.rdb.PSubscribe(ctx, pubSubPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.consumeFanIn(msg.Channel, []byte(msg.Payload))
		}
	}
}

// consumeFanIn re-broadcasts one published envelope, dropping messages
// this hub published itself (Redis delivers publishes back to the
// publishing process's own subscription).
func (h *Hub) consumeFanIn(channel string, payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("[gateway] bad analysis payload on %s: %v", channel, err)
		return
	}
	if env.Origin == h.id {
		return
	}
	h.broadcast(payload)
}

// HandleWS upgrades the connection and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)

	client.sendReplay()
	go client.writePump()
	go client.readPump()
}

// removeClient unregisters a client; safe to call once per client.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
