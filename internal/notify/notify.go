// Package notify provides change notification for settings updates.
//
// A ChangeToken describes one raw-configuration change. The Notifier
// fans tokens out to observers, either globally or per scope key; the
// Debouncer collapses bursts of tokens into a single delivery.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeToken is an opaque description of a raw-configuration change.
type ChangeToken struct {
	// ID uniquely identifies this change.
	ID string

	// Namespace is the top-level settings namespace that changed,
	// e.g. "python". Empty for whole-store reloads.
	Namespace string

	// Key is the full dotted key that changed, when known.
	Key string

	// Scope is the workspace scope key the change applies to.
	// Empty means the change affects every scope.
	Scope string

	// Time is when the change was observed.
	Time time.Time
}

// NewChangeToken creates a token for a change in the given namespace.
func NewChangeToken(namespace, key, scope string) ChangeToken {
	return ChangeToken{
		ID:        uuid.New().String(),
		Namespace: namespace,
		Key:       key,
		Scope:     scope,
		Time:      time.Now(),
	}
}

// AffectsScope reports whether the token applies to the given scope key.
// A token with an empty scope affects all scopes.
func (t ChangeToken) AffectsScope(scope string) bool {
	return t.Scope == "" || t.Scope == scope
}

// Observer is called when a change is delivered.
type Observer func(token ChangeToken)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages change subscriptions and delivers tokens.
type Notifier struct {
	mu sync.RWMutex

	// Observers that receive every token.
	global map[uint64]Observer

	// Observers keyed by scope. A token whose scope is empty is
	// delivered to every scoped observer as well.
	scoped map[string]map[uint64]Observer

	nextID uint64
	closed bool
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		global: make(map[uint64]Observer),
		scoped: make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(obs Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global[id] = obs

	return &Subscription{id: id, notifier: n}
}

// SubscribeScope registers an observer for changes affecting one scope.
// Tokens with an empty scope are delivered too, since they affect every
// scope.
func (n *Notifier) SubscribeScope(scope string, obs Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.scoped[scope] == nil {
		n.scoped[scope] = make(map[uint64]Observer)
	}
	n.scoped[scope][id] = obs

	return &Subscription{id: id, notifier: n}
}

// Notify delivers a token to all matching observers. Observers are called
// outside the lock, one at a time, on the caller's goroutine.
func (n *Notifier) Notify(token ChangeToken) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}

	var observers []Observer
	for _, obs := range n.global {
		observers = append(observers, obs)
	}
	if token.Scope == "" {
		for _, set := range n.scoped {
			for _, obs := range set {
				observers = append(observers, obs)
			}
		}
	} else if set, ok := n.scoped[token.Scope]; ok {
		for _, obs := range set {
			observers = append(observers, obs)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(token)
	}
}

// Close drops all subscriptions and ignores further Notify calls.
// Safe to call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	n.global = make(map[uint64]Observer)
	n.scoped = make(map[string]map[uint64]Observer)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for scope, set := range n.scoped {
		delete(set, id)
		if len(set) == 0 {
			delete(n.scoped, scope)
		}
	}
}
