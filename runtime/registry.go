package runtime

import (
	"sync"

	"shop-lab/contract"
	"shop-lab/domain"
	"shop-lab/errors"
)

type session struct {
	user domain.User
	sink contract.EventSink
}

// Registry is the in-memory mapping from live connection id to the
// authenticated identity bound to it. It is mutated from many
// independent connection lifecycles plus the broadcaster's read path,
// so every access goes through the mutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]session
	order    []string // connection ids in registration order
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]session)}
}

// Register binds a connection id to an authenticated user.
// Re-registering an id overwrites its previous binding. A single user
// may hold many simultaneous registrations (multi-device).
func (r *Registry) Register(connectionID string, user domain.User, sink contract.EventSink) error {
	if !user.IsActive {
		return errors.ErrUserInactive
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connectionID]; !exists {
		r.order = append(r.order, connectionID)
	}
	r.sessions[connectionID] = session{user: user, sink: sink}
	return nil
}

// Remove is idempotent; removing an unknown id is a no-op.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connectionID]; !exists {
		return
	}
	delete(r.sessions, connectionID)
	for i, id := range r.order {
		if id == connectionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ConnectedClients returns a point-in-time snapshot of connection ids in
// registration order, not a live view.
func (r *Registry) ConnectedClients() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]string, len(r.order))
	copy(snapshot, r.order)
	return snapshot
}

func (r *Registry) Lookup(connectionID string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connectionID]
	return s.user, ok
}

// Sinks snapshots the receiving end of every live connection, in
// registration order, for the broadcaster.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.order))
	for _, id := range r.order {
		sinks = append(sinks, r.sessions[id].sink)
	}
	return sinks
}
