// Package presence tracks which users currently hold a live realtime
// connection. The Registry is the only owner of the online set; everything
// else reads it through Lookup and Snapshot.
package presence

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Entry binds a user to the connection that announced it
type Entry struct {
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}

// Policy decides what happens when a user announces from a second connection
type Policy int

const (
	// PolicyFirstWins keeps the existing binding until its connection closes
	PolicyFirstWins Policy = iota
	// PolicyLastWins rebinds the user to the newest connection
	PolicyLastWins
)

func (p Policy) String() string {
	switch p {
	case PolicyLastWins:
		return "last_wins"
	default:
		return "first_wins"
	}
}

// ParsePolicy converts a configuration value into a Policy. Empty means first_wins.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_wins", "first":
		return PolicyFirstWins, nil
	case "last_wins", "last":
		return PolicyLastWins, nil
	default:
		return PolicyFirstWins, fmt.Errorf("unknown presence policy %q", s)
	}
}

// Registry is an in-memory table of online users.
//
// A connection id appears in at most one entry and a user id maps to at
// most one connection id. byUser and byConn are always inverse maps.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]string // user id -> connection id
	byConn map[string]string // connection id -> user id
	policy Policy
}

// NewRegistry creates an empty registry
func NewRegistry(policy Policy) *Registry {
	return &Registry{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
		policy: policy,
	}
}

// Policy returns the duplicate-announce policy in effect
func (r *Registry) Policy() Policy {
	return r.policy
}

// Register binds userID to connectionID and reports whether the table changed.
//
// Announcing again for an already bound user is a no-op under
// PolicyFirstWins. If the connection is currently bound to a different user
// that binding is dropped first.
func (r *Registry) Register(userID, connectionID string) bool {
	if userID == "" || connectionID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.byUser[userID]; ok {
		if current == connectionID || r.policy == PolicyFirstWins {
			return false
		}
		// last wins: forget the older connection's binding
		delete(r.byConn, current)
	}

	if previousUser, ok := r.byConn[connectionID]; ok && previousUser != userID {
		delete(r.byUser, previousUser)
	}

	r.byUser[userID] = connectionID
	r.byConn[connectionID] = userID
	return true
}

// Unregister removes whatever entry is bound to connectionID. Unknown
// connections are ignored.
func (r *Registry) Unregister(connectionID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connectionID]
	if !ok {
		return Entry{}, false
	}
	delete(r.byConn, connectionID)
	if r.byUser[userID] == connectionID {
		delete(r.byUser, userID)
	}
	return Entry{UserID: userID, ConnectionID: connectionID}, true
}

// Lookup returns the connection currently bound to userID
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byUser[userID]
	return connID, ok
}

// UserFor returns the user bound to a connection
func (r *Registry) UserFor(connectionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connectionID]
	return userID, ok
}

// IsOnline reports whether userID has a live entry
func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Len returns the number of online users
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Snapshot returns a copy of the online set ordered by user id.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.byUser))
	for userID, connID := range r.byUser {
		entries = append(entries, Entry{UserID: userID, ConnectionID: connID})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}
