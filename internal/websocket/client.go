package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/talentnet/backend/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB

	// Send buffer size
	sendBufferSize = 256
)

var (
	errClientClosed   = errors.New("client connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// State is where a connection is in its lifecycle
type State int

const (
	// StateUnidentified is a live connection with no presence entry
	StateUnidentified State = iota
	// StateIdentified is a live connection bound to a user in the registry
	StateIdentified
	// StateClosed is terminal
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdentified:
		return "identified"
	case StateClosed:
		return "closed"
	default:
		return "unidentified"
	}
}

// Client represents a single WebSocket connection
type Client struct {
	// ID is the connection identifier used as the registry key
	ID string

	conn *websocket.Conn
	hub  *Hub

	// authUserID is the user proven by the upgrade token; empty when the
	// connection is unauthenticated
	authUserID string

	// Buffered channel of outbound frames, closed by the hub on disconnect
	send chan []byte

	ConnectedAt time.Time
	RemoteAddr  string
	UserAgent   string

	rateLimiter *RateLimiter

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	state      State
	userID     string
	lastPingAt time.Time
	sendClosed bool
	closed     bool
}

// RateLimiter implements a simple token bucket rate limiter
type RateLimiter struct {
	tokens    float64
	maxTokens float64
	refill    float64
	lastTime  time.Time
	mu        sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		tokens:    float64(burst),
		maxTokens: float64(burst),
		refill:    float64(maxPerSecond),
		lastTime:  time.Now(),
	}
}

// Allow checks if an action is allowed and consumes a token
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastTime).Seconds()
	r.lastTime = now

	r.tokens += elapsed * r.refill
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// NewClient creates a client for conn. authUserID may be empty.
func NewClient(hub *Hub, conn *websocket.Conn, authUserID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	config := hub.RateLimitConfig()

	return &Client{
		ID:          uuid.NewString(),
		hub:         hub,
		conn:        conn,
		authUserID:  authUserID,
		send:        make(chan []byte, sendBufferSize),
		ConnectedAt: time.Now(),
		rateLimiter: NewRateLimiter(config.MaxMessagesPerSecond, config.BurstSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ReadPump pumps frames from the connection to the hub until the peer goes away
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		readCtx, readCancel := context.WithTimeout(c.ctx, pongWait)
		_, data, err := c.conn.Read(readCtx)
		readCancel()

		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Log.Debug("Client disconnected normally", logger.WithConnID(c.ID))
			} else if c.ctx.Err() == nil {
				logger.Log.Debug("Read error for client", logger.WithConnID(c.ID), zap.Error(err))
				c.hub.metrics.Errors.Add(1)
			}
			return
		}

		if !c.rateLimiter.Allow() {
			_ = c.SendError(ErrCodeRateLimited, "Too many messages, please slow down")
			c.hub.metrics.Errors.Add(1)
			continue
		}

		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			logger.Log.Debug("WebSocket JSON parse error", logger.WithConnID(c.ID), zap.Error(err))
			_ = c.SendError(ErrCodeInvalidJSON, "Failed to parse message")
			continue
		}

		c.hub.Dispatch(c, &message)
	}
}

// WritePump pumps frames from the send queue to the connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case message, ok := <-c.send:
			if !ok {
				// hub closed the queue
				_ = c.conn.Close(websocket.StatusNormalClosure, "closing")
				return
			}

			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()

			if err != nil {
				logger.Log.Debug("Write error for client", logger.WithConnID(c.ID), zap.Error(err))
				c.hub.metrics.Errors.Add(1)
				return
			}

		case <-ticker.C:
			c.mu.Lock()
			c.lastPingAt = time.Now()
			c.mu.Unlock()

			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Ping(ctx)
			cancel()

			if err != nil {
				logger.Log.Debug("Ping failed for client", logger.WithConnID(c.ID), zap.Error(err))
				return
			}
		}
	}
}

// Send queues a message for this client without blocking
func (c *Client) Send(message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

// SendError sends an error frame to the client
func (c *Client) SendError(code, message string) error {
	return c.Send(NewErrorMessage(code, message))
}

func (c *Client) enqueue(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.sendClosed {
		return errClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// closeSend closes the outbound queue once; the write pump then closes the socket
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendClosed {
		return
	}
	c.sendClosed = true
	c.state = StateClosed
	close(c.send)
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()

	// the close handshake can take seconds, so it runs outside the lock
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "closing")
	}
}

// State returns the connection's lifecycle state
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// UserID returns the user this connection is identified as, if any
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// AuthUserID returns the user proven by the upgrade token, if any
func (c *Client) AuthUserID() string {
	return c.authUserID
}

func (c *Client) setIdentity(state State, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = state
	c.userID = userID
}

// GetInfo returns client information
func (c *Client) GetInfo() ClientInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ClientInfo{
		ConnectionID: c.ID,
		UserID:       c.userID,
		State:        c.state.String(),
		ConnectedAt:  c.ConnectedAt,
		LastPingAt:   c.lastPingAt,
		RemoteAddr:   c.RemoteAddr,
		UserAgent:    c.UserAgent,
	}
}

// ClientInfo represents public client information
type ClientInfo struct {
	ConnectionID string    `json:"connection_id"`
	UserID       string    `json:"user_id,omitempty"`
	State        string    `json:"state"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastPingAt   time.Time `json:"last_ping_at"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
}
