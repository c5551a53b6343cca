// Package chat is the talentctl realtime client: it announces the logged-in
// user, sends direct messages and surfaces presence snapshots.
package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frame types exchanged with the gateway
const (
	TypeAnnounce         = "announce"
	TypeSendMessage      = "send_message"
	TypePing             = "ping"
	TypePresenceSnapshot = "presence_snapshot"
	TypeDeliverMessage   = "deliver_message"
	TypePong             = "pong"
	TypeSystem           = "system"
	TypeError            = "error"
)

// Frame is an inbound frame with its payload left raw until a typed
// accessor decodes it
type Frame struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ID        string          `json:"id,omitempty"`
	ReplyTo   string          `json:"reply_to,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// outbound frames carry Unix millisecond timestamps
type outbound struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	ID        string      `json:"id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// OnlineUser is one entry of a presence snapshot
type OnlineUser struct {
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}

// Delivery is a direct message received from another user
type Delivery struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}

// ErrorInfo is the body of an error frame
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SystemEvent is the body of a system frame
type SystemEvent struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Pong is the reply to a ping
type Pong struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

func (f Frame) decode(want string, target interface{}) error {
	if f.Type != want {
		return fmt.Errorf("frame is %q, not %q", f.Type, want)
	}
	if len(f.Payload) == 0 {
		return fmt.Errorf("%s frame has no payload", f.Type)
	}
	return json.Unmarshal(f.Payload, target)
}

// Snapshot decodes a presence_snapshot frame
func (f Frame) Snapshot() ([]OnlineUser, error) {
	var p struct {
		Users []OnlineUser `json:"users"`
	}
	err := f.decode(TypePresenceSnapshot, &p)
	return p.Users, err
}

// Delivery decodes a deliver_message frame
func (f Frame) Delivery() (Delivery, error) {
	var d Delivery
	err := f.decode(TypeDeliverMessage, &d)
	return d, err
}

// ErrorBody decodes an error frame
func (f Frame) ErrorBody() (ErrorInfo, error) {
	var e ErrorInfo
	err := f.decode(TypeError, &e)
	return e, err
}

// System decodes a system frame
func (f Frame) System() (SystemEvent, error) {
	var s SystemEvent
	err := f.decode(TypeSystem, &s)
	return s, err
}

// Pong decodes a pong frame
func (f Frame) Pong() (Pong, error) {
	var p Pong
	err := f.decode(TypePong, &p)
	return p, err
}

// PresenceDiff compares two snapshots and returns who came online and who left
func PresenceDiff(before, after []OnlineUser) (joined, left []string) {
	prev := make(map[string]bool, len(before))
	for _, u := range before {
		prev[u.UserID] = true
	}
	next := make(map[string]bool, len(after))
	for _, u := range after {
		next[u.UserID] = true
		if !prev[u.UserID] {
			joined = append(joined, u.UserID)
		}
	}
	for _, u := range before {
		if !next[u.UserID] {
			left = append(left, u.UserID)
		}
	}
	return joined, left
}
