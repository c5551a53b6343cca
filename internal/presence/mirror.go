package presence

import (
	"context"
	"sync"
	"time"

	"github.com/talentnet/backend/internal/logger"
	"go.uber.org/zap"
)

// MirrorKey is the Redis hash holding user id -> connection id for online users
const MirrorKey = "presence:online"

const (
	mirrorQueueSize = 1024
	mirrorOpTimeout = 2 * time.Second
)

// HashStore is the subset of the Redis client the mirror writes through
type HashStore interface {
	HSet(ctx context.Context, key string, values ...interface{}) error
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
}

type mirrorOp struct {
	online bool
	entry  Entry
}

// RedisMirror copies registry changes into a Redis hash so other services can
// read who is online. Writes are applied in order by a single goroutine and
// never block the caller; a full queue drops the update with a warning.
type RedisMirror struct {
	store HashStore
	key   string
	ops   chan mirrorOp
	done  chan struct{}

	mu      sync.RWMutex
	stopped bool
}

// NewRedisMirror creates a mirror writing to MirrorKey
func NewRedisMirror(store HashStore) *RedisMirror {
	return &RedisMirror{
		store: store,
		key:   MirrorKey,
		ops:   make(chan mirrorOp, mirrorQueueSize),
		done:  make(chan struct{}),
	}
}

// Start clears any entries left by a previous process and begins applying
// updates. Presence is never carried across restarts.
func (m *RedisMirror) Start(ctx context.Context) {
	clearCtx, cancel := context.WithTimeout(ctx, mirrorOpTimeout)
	if err := m.store.Del(clearCtx, m.key); err != nil {
		logger.WarnWithFields("Failed to clear presence mirror", err)
	}
	cancel()

	go m.run()
}

// Online queues an entry to be written to the mirror
func (m *RedisMirror) Online(e Entry) {
	m.enqueue(mirrorOp{online: true, entry: e})
}

// Offline queues an entry to be removed from the mirror
func (m *RedisMirror) Offline(e Entry) {
	m.enqueue(mirrorOp{online: false, entry: e})
}

func (m *RedisMirror) enqueue(op mirrorOp) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return
	}

	select {
	case m.ops <- op:
	default:
		logger.Log.Warn("Presence mirror queue full, dropping update",
			logger.WithUserID(op.entry.UserID),
			zap.Bool("online", op.online),
		)
	}
}

// Stop drains queued updates and waits for the worker to exit. Updates
// arriving after Stop are discarded.
func (m *RedisMirror) Stop() {
	m.mu.Lock()
	if !m.stopped {
		m.stopped = true
		close(m.ops)
	}
	m.mu.Unlock()
	<-m.done
}

func (m *RedisMirror) run() {
	defer close(m.done)
	for op := range m.ops {
		m.apply(op)
	}
}

func (m *RedisMirror) apply(op mirrorOp) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorOpTimeout)
	defer cancel()

	var err error
	if op.online {
		err = m.store.HSet(ctx, m.key, op.entry.UserID, op.entry.ConnectionID)
	} else {
		err = m.store.HDel(ctx, m.key, op.entry.UserID)
	}
	if err != nil {
		logger.Log.Warn("Presence mirror write failed",
			logger.WithUserID(op.entry.UserID),
			zap.Bool("online", op.online),
			zap.Error(err),
		)
	}
}
