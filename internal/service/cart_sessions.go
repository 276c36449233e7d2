package service

import (
	"context"
	"sync"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

// StorageKey is the key a session's cart is persisted under.
func StorageKey(namespace, sessionID string) string {
	if sessionID == "" {
		return namespace
	}
	return namespace + ":" + sessionID
}

type cartSession struct {
	mu    sync.Mutex
	store *CartStore
	// evicted is set under mu once the entry left the registry; holders must look it up again.
	evicted bool
}

// SessionRegistry owns one CartStore per session and is the single writer for each of
// them: calls for the same session run one at a time, different sessions run in parallel.
// Stores are loaded on first use and live as long as the registry.
type SessionRegistry struct {
	namespace   string
	deps        CartStoreDeps
	notifierFor func(sessionID string) repository.Notifier

	mu       sync.Mutex
	sessions map[string]*cartSession
}

// NewSessionRegistry uses notifierFor to build each session's notifier; when it is nil
// every session shares deps.Notifier.
func NewSessionRegistry(namespace string, deps CartStoreDeps, notifierFor func(sessionID string) repository.Notifier) *SessionRegistry {
	return &SessionRegistry{
		namespace:   namespace,
		deps:        deps,
		notifierFor: notifierFor,
		sessions:    make(map[string]*cartSession),
	}
}

// Do runs fn with the session's store, loading the store first if needed. A session
// whose store cannot be loaded is forgotten, so the next call starts over.
func (r *SessionRegistry) Do(ctx context.Context, sessionID string, fn func(store *CartStore) error) error {
	for {
		sess := r.session(sessionID)
		sess.mu.Lock()
		if sess.evicted {
			sess.mu.Unlock()
			continue
		}
		err := r.run(ctx, sessionID, sess, fn)
		sess.mu.Unlock()
		return err
	}
}

// Len reports how many sessions the registry currently holds.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// run expects sess.mu to be held.
func (r *SessionRegistry) run(ctx context.Context, sessionID string, sess *cartSession, fn func(store *CartStore) error) error {
	if sess.store == nil {
		deps := r.deps
		if r.notifierFor != nil {
			deps.Notifier = r.notifierFor(sessionID)
		}
		store, err := NewCartStore(ctx, StorageKey(r.namespace, sessionID), deps)
		if err != nil {
			r.evict(sessionID, sess)
			return err
		}
		sess.store = store
		r.deps.Metrics.SessionOpened()
	}
	return fn(sess.store)
}

func (r *SessionRegistry) session(sessionID string) *cartSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		sess = &cartSession{}
		r.sessions[sessionID] = sess
	}
	return sess
}

func (r *SessionRegistry) evict(sessionID string, sess *cartSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess.evicted = true
	if r.sessions[sessionID] == sess {
		delete(r.sessions, sessionID)
	}
}
