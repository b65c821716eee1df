// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
	sendBuffer     = 32
)

// ErrNotConnected is returned for a direct message whose recipient has no
// open websocket.
var ErrNotConnected = errors.New("player has no open connection")

// subscriber is one websocket. It receives posts for its channel (when set)
// and direct messages for its player (when set).
type subscriber struct {
	conn    *websocket.Conn
	channel model.SessionKey
	player  model.PlayerID
	send    chan []byte
}

// Hub serves websocket subscriptions and delivers engine output to them.
type Hub struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  log.WithComponent("ws-hub"),
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades a subscription request. Query parameters: guild and
// channel select the channel feed, player selects direct messages.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sub := &subscriber{
		channel: model.SessionKey{GuildID: q.Get("guild"), ChannelID: q.Get("channel")},
		player:  model.PlayerID(q.Get("player")),
		send:    make(chan []byte, sendBuffer),
	}
	if sub.channel.Validate() != nil && sub.player == "" {
		http.Error(w, "guild and channel, or player, required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str(log.FieldEvent, "ws.upgrade_failed").Msg("websocket upgrade failed")
		return
	}
	sub.conn = conn

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[sub] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()
	hubClients.Inc()

	h.logger.Debug().
		Str(log.FieldEvent, "ws.connected").
		Str(log.FieldGuildID, sub.channel.GuildID).
		Str(log.FieldChannelID, sub.channel.ChannelID).
		Str(log.FieldPlayerID, string(sub.player)).
		Msg("websocket subscriber connected")

	go h.writePump(sub)
	go h.readPump(sub)
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for sub := range h.clients {
		h.dropLocked(sub)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hub) SendDirectMessage(_ context.Context, player model.PlayerID, content string) error {
	n := h.deliver(directEvent(player, content), func(s *subscriber) bool { return s.player == player })
	if n == 0 {
		deliveries.WithLabelValues("websocket", KindDirect, "error").Inc()
		return ErrNotConnected
	}
	deliveries.WithLabelValues("websocket", KindDirect, "ok").Inc()
	return nil
}

// PostToChannel broadcasts to the channel's subscribers. Nobody listening is
// not an error.
func (h *Hub) PostToChannel(_ context.Context, key model.SessionKey, content string) error {
	h.deliver(channelEvent(key, content), func(s *subscriber) bool { return s.channel == key })
	deliveries.WithLabelValues("websocket", KindChannel, "ok").Inc()
	return nil
}

// deliver queues ev for every matching subscriber and returns how many got
// it. A subscriber with a full buffer is dropped.
func (h *Hub) deliver(ev Event, match func(*subscriber) bool) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for sub := range h.clients {
		if !match(sub) {
			continue
		}
		select {
		case sub.send <- payload:
			n++
		default:
			hubDropped.Inc()
			h.dropLocked(sub)
		}
	}
	return n
}

// dropLocked unregisters sub and closes its queue, which ends the write
// pump and with it the connection. Caller holds h.mu.
func (h *Hub) dropLocked(sub *subscriber) {
	if _, ok := h.clients[sub]; !ok {
		return
	}
	delete(h.clients, sub)
	close(sub.send)
	hubClients.Dec()
}

func (h *Hub) writePump(sub *subscriber) {
	defer h.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() { _ = sub.conn.Close() }()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; it exists to process pongs and notice
// the peer going away.
func (h *Hub) readPump(sub *subscriber) {
	defer h.wg.Done()
	defer func() {
		h.mu.Lock()
		h.dropLocked(sub)
		h.mu.Unlock()
	}()

	sub.conn.SetReadLimit(maxInboundSize)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
