package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/talentnet/backend/internal/cli/logger"
)

const writeWait = 10 * time.Second

// ErrClosed is returned when writing to a closed session
var ErrClosed = errors.New("session closed")

// HandshakeError is returned when the server answers the upgrade with an
// HTTP error instead of switching protocols
type HandshakeError struct {
	StatusCode int
	Status     string
}

func (e *HandshakeError) Error() string {
	return "handshake rejected: " + e.Status
}

// Config holds realtime client settings
type Config struct {
	URL               string
	Token             string
	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
}

// Stats counts frames in both directions
type Stats struct {
	Received int64
	Sent     int64
}

// Session is one live connection to the gateway
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	events chan Frame
	done   chan struct{}

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error

	received atomic.Int64
	sent     atomic.Int64
}

// Dial opens a session. The token travels as ?token= so it also works
// through proxies that strip Authorization on upgrades.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}
	if cfg.Token != "" {
		q := u.Query()
		q.Set("token", cfg.Token)
		u.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &HandshakeError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
		return nil, err
	}

	s := &Session{
		conn:   conn,
		events: make(chan Frame, 64),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	if cfg.HeartbeatInterval > 0 {
		go s.heartbeatLoop(cfg.HeartbeatInterval)
	}

	logger.Debug("WebSocket connected", "host", u.Host)
	return s, nil
}

// Events delivers every inbound frame; it is closed when the session ends
func (s *Session) Events() <-chan Frame {
	return s.events
}

// Done is closed when the session ends
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session ended, nil after a clean Close
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Stats returns frame counters
func (s *Session) Stats() Stats {
	return Stats{Received: s.received.Load(), Sent: s.sent.Load()}
}

// Announce binds this connection to userID
func (s *Session) Announce(userID string) error {
	return s.write(TypeAnnounce, map[string]string{"user_id": userID})
}

// SendMessage asks the gateway to route text to receiverID
func (s *Session) SendMessage(receiverID, text string) error {
	return s.write(TypeSendMessage, map[string]string{
		"receiver_id": receiverID,
		"text":        text,
	})
}

// Ping asks the gateway for a pong
func (s *Session) Ping() error {
	return s.write(TypePing, map[string]int64{"client_time": time.Now().UnixMilli()})
}

// Close sends a normal closure and releases the connection
func (s *Session) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()

	s.finish(nil)
	return nil
}

func (s *Session) write(msgType string, payload interface{}) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := s.conn.WriteJSON(outbound{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	s.sent.Add(1)
	return nil
}

func (s *Session) readLoop() {
	defer close(s.events)

	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			s.finish(err)
			return
		}
		s.received.Add(1)

		select {
		case s.events <- frame:
		case <-s.done:
			return
		}
	}
}

func (s *Session) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

// finish records the first terminal error and tears the connection down once
func (s *Session) finish(err error) {
	s.closeOnce.Do(func() {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
		if err != nil {
			logger.Error("WebSocket read error", "error", err)
		}
		close(s.done)
		_ = s.conn.Close()
	})
}

// Backoff computes reconnect delays: doubling from Base, capped at Max,
// with up to one second of jitter
type Backoff struct {
	Base     time.Duration
	Max      time.Duration
	Attempts int // negative means unlimited
}

// DefaultBackoff is what talentctl chat uses
func DefaultBackoff() Backoff {
	return Backoff{Base: 2 * time.Second, Max: 30 * time.Second, Attempts: 5}
}

// Delay returns the wait before attempt n (zero-based)
func (b Backoff) Delay(n int) time.Duration {
	d := time.Duration(math.Min(
		float64(b.Base)*math.Pow(2, float64(n)),
		float64(b.Max),
	))
	return d + time.Duration(rand.Int63n(int64(time.Second)))
}

// Allowed reports whether attempt n may run
func (b Backoff) Allowed(n int) bool {
	return b.Attempts < 0 || n < b.Attempts
}
