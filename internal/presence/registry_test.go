package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	return ids
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirstWins, p)

	p, err = ParsePolicy("LAST_WINS")
	require.NoError(t, err)
	assert.Equal(t, PolicyLastWins, p)
	assert.Equal(t, "last_wins", p.String())

	_, err = ParsePolicy("random")
	assert.Error(t, err)
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)

	assert.True(t, r.Register("alice", "c1"))
	assert.False(t, r.Register("alice", "c1"))

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []Entry{{UserID: "alice", ConnectionID: "c1"}}, r.Snapshot())
}

func TestRegisterRejectsEmptyIdentifiers(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)

	assert.False(t, r.Register("", "c1"))
	assert.False(t, r.Register("alice", ""))
	assert.Equal(t, 0, r.Len())
}

func TestFirstRegistrationWins(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)

	require.True(t, r.Register("alice", "c1"))
	assert.False(t, r.Register("alice", "c2"))

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", connID)

	// c2 never got an entry, so closing it changes nothing
	_, removed := r.Unregister("c2")
	assert.False(t, removed)
	assert.True(t, r.IsOnline("alice"))
}

func TestLastRegistrationWins(t *testing.T) {
	r := NewRegistry(PolicyLastWins)

	require.True(t, r.Register("alice", "c1"))
	require.True(t, r.Register("alice", "c2"))

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c2", connID)
	assert.Equal(t, 1, r.Len())

	// the stale connection closing must not evict the new binding
	_, removed := r.Unregister("c1")
	assert.False(t, removed)
	connID, ok = r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c2", connID)
}

func TestConnectionRebindsToAnotherUser(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)

	require.True(t, r.Register("alice", "c1"))
	require.True(t, r.Register("bob", "c1"))

	assert.False(t, r.IsOnline("alice"))
	userID, ok := r.UserFor("c1")
	require.True(t, ok)
	assert.Equal(t, "bob", userID)
	assert.Equal(t, []string{"bob"}, userIDs(r.Snapshot()))
}

func TestUnregisterCleansUp(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)
	require.True(t, r.Register("alice", "c1"))

	entry, ok := r.Unregister("c1")
	require.True(t, ok)
	assert.Equal(t, Entry{UserID: "alice", ConnectionID: "c1"}, entry)

	_, found := r.Lookup("alice")
	assert.False(t, found)
	assert.Empty(t, r.Snapshot())
}

func TestUnregisterUnknownConnection(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)
	require.True(t, r.Register("alice", "c1"))
	before := r.Snapshot()

	entry, ok := r.Unregister("never-announced")
	assert.False(t, ok)
	assert.Equal(t, Entry{}, entry)
	assert.Equal(t, before, r.Snapshot())
}

func TestSnapshotTracksLiveEntries(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)

	r.Register("u3", "c3")
	r.Register("u1", "c1")
	r.Register("u2", "c2")
	r.Unregister("c3")
	r.Register("u4", "c4")
	r.Unregister("c1")

	assert.Equal(t, []string{"u2", "u4"}, userIDs(r.Snapshot()))

	snap := r.Snapshot()
	snap[0].UserID = "mutated"
	assert.True(t, r.IsOnline("u2"), "snapshot must be a copy")
}

func TestRegisterThenUnregisterLeavesEmptySet(t *testing.T) {
	r := NewRegistry(PolicyFirstWins)
	r.Register("u1", "c1")
	r.Unregister("c1")

	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 0, r.Len())
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	r := NewRegistry(PolicyLastWins)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			r.Register(fmt.Sprintf("u%d", i%10), connID)
			if i%2 == 0 {
				r.Unregister(connID)
			}
		}(i)
	}
	wg.Wait()

	// every remaining entry must be consistent in both directions
	seen := make(map[string]bool)
	for _, e := range r.Snapshot() {
		assert.False(t, seen[e.ConnectionID], "connection %s listed twice", e.ConnectionID)
		seen[e.ConnectionID] = true

		userID, ok := r.UserFor(e.ConnectionID)
		require.True(t, ok)
		assert.Equal(t, e.UserID, userID)
	}
	assert.LessOrEqual(t, r.Len(), 10)
}
