package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/talentnet/backend/internal/presence"
)

// FlexibleTime handles both Unix millisecond timestamps and RFC3339 strings
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		ft.Time = time.UnixMilli(ms)
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("timestamp must be Unix milliseconds (integer) or RFC3339 string")
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// MarshalJSON always outputs RFC3339
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time)
}

// Frame types
const (
	// Inbound
	MessageTypeAnnounce    = "announce"
	MessageTypeSendMessage = "send_message"
	MessageTypePing        = "ping"
	MessageTypeHeartbeat   = "heartbeat"

	// Event names used by older web clients
	MessageTypeLegacyAddUser     = "addUser"
	MessageTypeLegacySendMessage = "sendMessage"

	// Outbound
	MessageTypePresenceSnapshot = "presence_snapshot"
	MessageTypeDeliverMessage   = "deliver_message"
	MessageTypePong             = "pong"
	MessageTypeSystem           = "system"
	MessageTypeError            = "error"
)

// Error codes carried in error frames
const (
	ErrCodeInvalidJSON      = "invalid_json"
	ErrCodeInvalidPayload   = "invalid_payload"
	ErrCodeIdentityMismatch = "identity_mismatch"
	ErrCodeUnknownType      = "unknown_type"
	ErrCodeRateLimited      = "rate_limited"
)

// Message is the envelope for every frame in both directions
type Message struct {
	// Type identifies the message type for routing
	Type string `json:"type"`

	// Payload contains the message-specific data
	Payload interface{} `json:"payload,omitempty"`

	// ID is an optional client-chosen identifier echoed in replies
	ID string `json:"id,omitempty"`

	// ReplyTo references the original message ID for responses
	ReplyTo string `json:"reply_to,omitempty"`

	// Timestamp when the message was created (accepts Unix ms or RFC3339)
	Timestamp FlexibleTime `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewReply creates a reply message to an original message
func NewReply(original *Message, msgType string, payload interface{}) *Message {
	msg := NewMessage(msgType, payload)
	if original != nil {
		msg.ReplyTo = original.ID
	}
	return msg
}

// NewErrorMessage creates an error message
func NewErrorMessage(code string, message string) *Message {
	return NewMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
}

// ParsePayload unmarshals the payload into target
func (m *Message) ParsePayload(target interface{}) error {
	if m.Payload == nil {
		return fmt.Errorf("missing payload")
	}

	data, err := json.Marshal(m.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// ErrorPayload represents an error message payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PingPayload represents a ping message payload
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload represents a pong message payload
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

// SystemPayload represents system event payloads
type SystemPayload struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// AnnouncePayload declares which user a connection belongs to.
// Accepts {"user_id": "..."}, {"userId": "..."} or a bare JSON string.
type AnnouncePayload struct {
	UserID string `json:"user_id"`
}

// UnmarshalJSON implements the lenient announce formats
func (p *AnnouncePayload) UnmarshalJSON(b []byte) error {
	var bare string
	if err := json.Unmarshal(b, &bare); err == nil {
		p.UserID = bare
		return nil
	}

	var raw struct {
		UserID       string `json:"user_id"`
		LegacyUserID string `json:"userId"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.UserID = firstNonEmpty(raw.UserID, raw.LegacyUserID)
	return nil
}

// SendMessagePayload asks the gateway to route text to receiver_id
type SendMessagePayload struct {
	SenderID   string `json:"sender_id,omitempty"`
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
}

// UnmarshalJSON also accepts the camelCase keys sent by older clients
func (p *SendMessagePayload) UnmarshalJSON(b []byte) error {
	var raw struct {
		SenderID         string `json:"sender_id"`
		ReceiverID       string `json:"receiver_id"`
		Text             string `json:"text"`
		LegacySenderID   string `json:"senderId"`
		LegacyReceiverID string `json:"receiverId"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.SenderID = firstNonEmpty(raw.SenderID, raw.LegacySenderID)
	p.ReceiverID = firstNonEmpty(raw.ReceiverID, raw.LegacyReceiverID)
	p.Text = raw.Text
	return nil
}

// DeliverMessagePayload is what the recipient connection receives
type DeliverMessagePayload struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}

// PresenceSnapshotPayload is the full online set
type PresenceSnapshotPayload struct {
	Users []presence.Entry `json:"users"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
