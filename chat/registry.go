// Package chat implements the live group channel: admission, connection
// registry, history replay and the broadcast router.
package chat

import (
	"sync"

	"group-chat/contract"
	"group-chat/domain"
	"group-chat/errors"
)

// Registry tracks every live connection and its session. It is the only
// mutable structure shared between connection handlers; all access goes
// through the lock so a snapshot never observes a half-inserted entry.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.Handle]contract.Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.Handle]contract.Entry)}
}

// Insert registers an admitted session. A duplicate handle is a
// programming error surfaced to the caller, never silently overwritten.
func (r *Registry) Insert(handle domain.Handle, session domain.Session, sink contract.Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[handle]; ok {
		return errors.ErrDuplicateHandle
	}
	r.entries[handle] = contract.Entry{Session: session, Sink: sink}
	return nil
}

// Remove evicts a connection. Idempotent: removing an absent handle is a
// no-op, so close paths may race without harm.
func (r *Registry) Remove(handle domain.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, handle)
}

// SnapshotForGroup returns every currently registered entry of one group,
// taken atomically with respect to Insert and Remove.
func (r *Registry) SnapshotForGroup(groupID domain.GroupID) []contract.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var snapshot []contract.Entry
	for _, entry := range r.entries {
		if entry.Session.GroupID == groupID {
			snapshot = append(snapshot, entry)
		}
	}
	return snapshot
}

// Len reports the number of live connections, for telemetry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
