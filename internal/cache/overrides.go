package cache

import "sync"

// Overrides holds optimistic edits that the API has not confirmed yet. Edits
// are keyed by the entity's stable identity, never by a display name, so
// renames and name collisions cannot cross-apply.
type Overrides[T any] struct {
	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingEdit[T]
}

type pendingEdit[T any] struct {
	value T
	token uint64
}

// Token identifies one Apply call.
type Token struct {
	id  string
	seq uint64
}

func NewOverrides[T any]() *Overrides[T] {
	return &Overrides[T]{pending: make(map[string]pendingEdit[T])}
}

// Apply records value for id and returns the token that resolves it. A newer
// Apply for the same id supersedes older tokens.
func (o *Overrides[T]) Apply(id string, value T) Token {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	o.pending[id] = pendingEdit[T]{value: value, token: o.seq}
	return Token{id: id, seq: o.seq}
}

// Resolve drops the edit of tok, after either confirmation (the refetched
// server value now carries it) or failure (the server value is kept). It is a
// no-op when tok was superseded.
func (o *Overrides[T]) Resolve(tok Token) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if p, ok := o.pending[tok.id]; ok && p.token == tok.seq {
		delete(o.pending, tok.id)
	}
}

// Get returns the pending value of id.
func (o *Overrides[T]) Get(id string) (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, ok := o.pending[id]
	return p.value, ok
}

// Len reports the number of unresolved edits.
func (o *Overrides[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Merge returns items with pending edits overlaid. items is not modified.
func Merge[T any](o *Overrides[T], items []T, idOf func(T) string) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i, item := range out {
		if v, ok := o.Get(idOf(item)); ok {
			out[i] = v
		}
	}
	return out
}
