// Package websocket is the realtime gateway. It accepts WebSocket
// connections, binds them to users in the presence registry, broadcasts the
// online set and routes direct messages to the recipient's live connection.
// Uses github.com/coder/websocket.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/metrics"
	"github.com/talentnet/backend/internal/presence"
	"go.uber.org/zap"
)

const eventQueueSize = 1024

// PresenceObserver is told about every registry change the hub makes
type PresenceObserver interface {
	Online(entry presence.Entry)
	Offline(entry presence.Entry)
}

type eventKind int

const (
	eventConnect eventKind = iota
	eventFrame
	eventDisconnect
)

type hubEvent struct {
	kind    eventKind
	client  *Client
	message *Message
}

// Hub owns the live connections and is the only writer of the presence
// registry. Connect, frame and disconnect events from every client are
// handled one at a time, in arrival order, by Run.
type Hub struct {
	registry *presence.Registry
	observer PresenceObserver

	// Live clients by connection id. Written only by the event loop; the
	// lock is for readers on other goroutines.
	clients map[string]*Client
	mu      sync.RWMutex

	events chan hubEvent

	// Clients whose send buffer overflowed during the current event
	slow []*Client

	metrics *Metrics
	prom    *metrics.Metrics

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool

	rateLimitConfig RateLimitConfig
}

// Metrics tracks WebSocket statistics
type Metrics struct {
	TotalConnections   atomic.Int64
	ActiveConnections  atomic.Int64
	MessagesReceived   atomic.Int64
	MessagesDelivered  atomic.Int64
	MessagesDropped    atomic.Int64
	Broadcasts         atomic.Int64
	Errors             atomic.Int64
	ConnectionsDropped atomic.Int64
}

// RateLimitConfig defines per-connection inbound rate limiting
type RateLimitConfig struct {
	// MaxMessagesPerSecond per client
	MaxMessagesPerSecond int
	// BurstSize allows short bursts above the rate
	BurstSize int
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxMessagesPerSecond: 10,
		BurstSize:            20,
	}
}

// NewHub creates a hub that records presence in registry
func NewHub(registry *presence.Registry) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:        registry,
		clients:         make(map[string]*Client),
		events:          make(chan hubEvent, eventQueueSize),
		metrics:         &Metrics{},
		prom:            metrics.Get(),
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		rateLimitConfig: DefaultRateLimitConfig(),
	}
}

// SetObserver installs an observer for registry changes. Call before Run.
func (h *Hub) SetObserver(observer PresenceObserver) {
	h.observer = observer
}

// Registry returns the presence registry the hub writes to
func (h *Hub) Registry() *presence.Registry {
	return h.registry
}

// Run processes hub events until Shutdown is called
func (h *Hub) Run() {
	h.started.Store(true)
	defer close(h.done)

	logger.Log.Info("Realtime hub started", zap.String("presence_policy", h.registry.Policy().String()))

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return
		case ev := <-h.events:
			h.process(ev)
		}
	}
}

func (h *Hub) process(ev hubEvent) {
	switch ev.kind {
	case eventConnect:
		h.connect(ev.client)
	case eventFrame:
		h.handleFrame(ev.client, ev.message)
	case eventDisconnect:
		h.disconnect(ev.client)
	}
	h.reapSlow()
}

func (h *Hub) enqueue(ev hubEvent) {
	select {
	case h.events <- ev:
	case <-h.ctx.Done():
	}
}

// Register queues a newly accepted client
func (h *Hub) Register(client *Client) {
	h.enqueue(hubEvent{kind: eventConnect, client: client})
}

// Unregister queues a client's disconnect. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.enqueue(hubEvent{kind: eventDisconnect, client: client})
}

// Dispatch queues an inbound frame from client
func (h *Hub) Dispatch(client *Client, message *Message) {
	h.enqueue(hubEvent{kind: eventFrame, client: client, message: message})
}

func (h *Hub) connect(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.metrics.TotalConnections.Add(1)
	active := h.metrics.ActiveConnections.Add(1)
	h.prom.WSConnectionsTotal.Inc()
	h.prom.WSConnectionsActive.Inc()

	logger.Log.Debug("Client connected",
		logger.WithConnID(c.ID),
		logger.WithUserID(c.authUserID),
		zap.Int64("active", active),
	)

	h.sendTo(c, NewMessage(MessageTypeSystem, SystemPayload{
		Event:   "connected",
		Message: "Welcome to TalentNet!",
		Data: map[string]interface{}{
			"connection_id": c.ID,
			"user_id":       c.authUserID,
			"server_time":   time.Now().UTC().UnixMilli(),
		},
	}))
	h.sendTo(c, h.snapshotMessage())
}

func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	h.mu.Unlock()

	c.closeSend()

	active := h.metrics.ActiveConnections.Add(-1)
	h.prom.WSConnectionsActive.Dec()

	entry, removed := h.registry.Unregister(c.ID)
	if removed {
		h.notifyOffline(entry)
	}

	logger.Log.Debug("Client disconnected",
		logger.WithConnID(c.ID),
		logger.WithUserID(entry.UserID),
		zap.Int64("active", active),
	)

	h.broadcastSnapshot()
}

func (h *Hub) handleFrame(c *Client, msg *Message) {
	if !h.isLive(c) {
		return
	}

	h.metrics.MessagesReceived.Add(1)
	h.prom.WSMessagesReceived.WithLabelValues(frameLabel(msg.Type)).Inc()

	switch msg.Type {
	case MessageTypeAnnounce, MessageTypeLegacyAddUser:
		h.handleAnnounce(c, msg)
	case MessageTypeSendMessage, MessageTypeLegacySendMessage:
		h.handleSendMessage(c, msg)
	case MessageTypePing, MessageTypeHeartbeat:
		h.handlePing(c, msg)
	default:
		h.replyError(c, msg, ErrCodeUnknownType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Hub) handleAnnounce(c *Client, msg *Message) {
	var payload AnnouncePayload
	if msg.Payload != nil {
		if err := msg.ParsePayload(&payload); err != nil {
			h.replyError(c, msg, ErrCodeInvalidPayload, "announce payload must be a user id")
			return
		}
	}

	userID := strings.TrimSpace(payload.UserID)
	if authUserID := c.authUserID; authUserID != "" {
		if userID == "" {
			userID = authUserID
		} else if userID != authUserID {
			logger.Log.Warn("Announce rejected: identity does not match token",
				logger.WithConnID(c.ID),
				logger.WithUserID(authUserID),
				zap.String("claimed_user_id", userID),
			)
			h.replyError(c, msg, ErrCodeIdentityMismatch, "announced user does not match the authenticated user")
			return
		}
	}
	if userID == "" {
		h.replyError(c, msg, ErrCodeInvalidPayload, "user_id is required")
		return
	}

	previousUser, hadPrevious := h.registry.UserFor(c.ID)
	displacedConn, hadDisplaced := h.registry.Lookup(userID)

	if h.registry.Register(userID, c.ID) {
		if hadPrevious && previousUser != userID {
			h.notifyOffline(presence.Entry{UserID: previousUser, ConnectionID: c.ID})
		}
		if hadDisplaced && displacedConn != c.ID {
			h.mu.RLock()
			displaced := h.clients[displacedConn]
			h.mu.RUnlock()
			if displaced != nil {
				displaced.setIdentity(StateUnidentified, "")
			}
		}
		h.notifyOnline(presence.Entry{UserID: userID, ConnectionID: c.ID})
	}

	if bound, ok := h.registry.UserFor(c.ID); ok && bound == userID {
		c.setIdentity(StateIdentified, userID)
	} else {
		logger.Log.Debug("Announce ignored: user already online on another connection",
			logger.WithConnID(c.ID),
			logger.WithUserID(userID),
		)
	}

	h.broadcastSnapshot()
}

func (h *Hub) handleSendMessage(c *Client, msg *Message) {
	var payload SendMessagePayload
	if err := msg.ParsePayload(&payload); err != nil {
		h.replyError(c, msg, ErrCodeInvalidPayload, "send_message payload must be an object")
		return
	}
	if payload.ReceiverID == "" || payload.Text == "" {
		h.replyError(c, msg, ErrCodeInvalidPayload, "receiver_id and text are required")
		return
	}

	senderID := c.UserID()
	if senderID == "" {
		senderID = c.authUserID
	}
	if senderID == "" {
		// unauthenticated and unidentified: the sender is whatever the client claims
		senderID = payload.SenderID
	} else if payload.SenderID != "" && payload.SenderID != senderID {
		h.replyError(c, msg, ErrCodeIdentityMismatch, "sender_id does not match this connection's user")
		return
	}
	if senderID == "" {
		h.replyError(c, msg, ErrCodeInvalidPayload, "sender_id is required")
		return
	}

	h.route(senderID, payload.ReceiverID, payload.Text)
}

// route delivers text to the receiver's live connection or drops it
func (h *Hub) route(senderID, receiverID, text string) {
	connID, ok := h.registry.Lookup(receiverID)
	if !ok {
		h.dropMessage("recipient_offline", senderID, receiverID)
		return
	}

	h.mu.RLock()
	target := h.clients[connID]
	h.mu.RUnlock()
	if target == nil {
		h.dropMessage("stale_connection", senderID, receiverID)
		return
	}

	frame := NewMessage(MessageTypeDeliverMessage, DeliverMessagePayload{
		SenderID: senderID,
		Text:     text,
	})
	if !h.sendTo(target, frame) {
		h.dropMessage("send_failed", senderID, receiverID)
		return
	}

	h.metrics.MessagesDelivered.Add(1)
	h.prom.WSMessagesDelivered.Inc()
}

func (h *Hub) dropMessage(reason, senderID, receiverID string) {
	h.metrics.MessagesDropped.Add(1)
	h.prom.WSMessagesDropped.WithLabelValues(reason).Inc()
	logger.Log.Debug("Direct message dropped",
		zap.String("reason", reason),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID),
	)
}

func (h *Hub) handlePing(c *Client, msg *Message) {
	var ping PingPayload
	if msg.Payload != nil {
		if err := msg.ParsePayload(&ping); err != nil {
			ping.ClientTime = 0
		}
	}

	serverTime := time.Now().UnixMilli()
	var latency int64
	if ping.ClientTime > 0 {
		latency = serverTime - ping.ClientTime
	}

	h.sendTo(c, NewReply(msg, MessageTypePong, PongPayload{
		ClientTime: ping.ClientTime,
		ServerTime: serverTime,
		Latency:    latency,
	}))
}

func (h *Hub) replyError(c *Client, msg *Message, code, text string) {
	h.metrics.Errors.Add(1)
	h.sendTo(c, NewReply(msg, MessageTypeError, ErrorPayload{Code: code, Message: text}))
}

func (h *Hub) snapshotMessage() *Message {
	return NewMessage(MessageTypePresenceSnapshot, PresenceSnapshotPayload{Users: h.registry.Snapshot()})
}

// broadcastSnapshot pushes the full online set to every live connection
func (h *Hub) broadcastSnapshot() {
	data, err := json.Marshal(h.snapshotMessage())
	if err != nil {
		logger.ErrorWithFields("Failed to marshal presence snapshot", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, data)
	}

	h.metrics.Broadcasts.Add(1)
	h.prom.WSBroadcastsTotal.Inc()
}

func (h *Hub) sendTo(c *Client, msg *Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.ErrorWithFields("Failed to marshal frame", err)
		return false
	}
	return h.deliver(c, data)
}

// deliver queues data for c. A client whose buffer is full is disconnected
// once the current event finishes.
func (h *Hub) deliver(c *Client, data []byte) bool {
	err := c.enqueue(data)
	if err == nil {
		return true
	}
	if err == errSendBufferFull {
		h.metrics.ConnectionsDropped.Add(1)
		logger.Log.Warn("Dropping slow client", logger.WithConnID(c.ID), logger.WithUserID(c.UserID()))
		h.slow = append(h.slow, c)
	}
	return false
}

func (h *Hub) reapSlow() {
	for len(h.slow) > 0 {
		c := h.slow[0]
		h.slow = h.slow[1:]
		h.disconnect(c)
	}
}

func (h *Hub) notifyOnline(entry presence.Entry) {
	h.prom.PresenceOnlineUsers.Set(float64(h.registry.Len()))
	if h.observer != nil {
		h.observer.Online(entry)
	}
}

func (h *Hub) notifyOffline(entry presence.Entry) {
	h.prom.PresenceOnlineUsers.Set(float64(h.registry.Len()))
	if h.observer != nil {
		h.observer.Offline(entry)
	}
}

func (h *Hub) isLive(c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[c.ID]
	return ok
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ClientInfos returns information about every open connection
func (h *Hub) ClientInfos() []ClientInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	infos := make([]ClientInfo, 0, len(h.clients))
	for _, c := range h.clients {
		infos = append(infos, c.GetInfo())
	}
	return infos
}

// GetMetrics returns current WebSocket metrics
func (h *Hub) GetMetrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalConnections:   h.metrics.TotalConnections.Load(),
		ActiveConnections:  h.metrics.ActiveConnections.Load(),
		OnlineUsers:        int64(h.registry.Len()),
		MessagesReceived:   h.metrics.MessagesReceived.Load(),
		MessagesDelivered:  h.metrics.MessagesDelivered.Load(),
		MessagesDropped:    h.metrics.MessagesDropped.Load(),
		Broadcasts:         h.metrics.Broadcasts.Load(),
		Errors:             h.metrics.Errors.Load(),
		ConnectionsDropped: h.metrics.ConnectionsDropped.Load(),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	TotalConnections   int64 `json:"total_connections"`
	ActiveConnections  int64 `json:"active_connections"`
	OnlineUsers        int64 `json:"online_users"`
	MessagesReceived   int64 `json:"messages_received"`
	MessagesDelivered  int64 `json:"messages_delivered"`
	MessagesDropped    int64 `json:"messages_dropped"`
	Broadcasts         int64 `json:"broadcasts"`
	Errors             int64 `json:"errors"`
	ConnectionsDropped int64 `json:"connections_dropped"`
}

// String implements Stringer for MetricsSnapshot
func (m MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"connections=%d/%d online=%d messages=rx:%d/delivered:%d/dropped:%d errors=%d",
		m.ActiveConnections, m.TotalConnections, m.OnlineUsers,
		m.MessagesReceived, m.MessagesDelivered, m.MessagesDropped,
		m.Errors,
	)
}

// Shutdown stops the event loop, telling every client the server is going away
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()
	if !h.started.Load() {
		return nil
	}

	select {
	case <-h.done:
		logger.Log.Info("Realtime hub shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

func (h *Hub) shutdown() {
	data, _ := json.Marshal(NewMessage(MessageTypeSystem, SystemPayload{Event: "server_shutdown"}))

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.enqueue(data)
		c.closeSend()
		if entry, ok := h.registry.Unregister(c.ID); ok {
			h.notifyOffline(entry)
		}
	}

	h.metrics.ActiveConnections.Store(0)
	h.prom.WSConnectionsActive.Sub(float64(len(clients)))

	logger.Log.Info("Closed realtime connections during shutdown", zap.Int("count", len(clients)))
}

// SetRateLimitConfig updates the rate limit applied to new connections
func (h *Hub) SetRateLimitConfig(config RateLimitConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rateLimitConfig = config
}

// RateLimitConfig returns the current rate limit configuration
func (h *Hub) RateLimitConfig() RateLimitConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rateLimitConfig
}

func frameLabel(msgType string) string {
	switch msgType {
	case MessageTypeAnnounce, MessageTypeLegacyAddUser,
		MessageTypeSendMessage, MessageTypeLegacySendMessage,
		MessageTypePing, MessageTypeHeartbeat:
		return msgType
	default:
		return "unknown"
	}
}
