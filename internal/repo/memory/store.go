package memory

import "sync"

// Store is an in-process map of session-scoped values. Nothing survives a
// restart.
type Store[V any] struct {
	m sync.Map
}

func NewStore[V any]() *Store[V] {
	return &Store[V]{}
}

func (r *Store[V]) Save(id string, v V) {
	r.m.Store(id, v)
}

func (r *Store[V]) Get(id string) (V, bool) {
	v, ok := r.m.Load(id)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Take removes and returns the value stored under id.
func (r *Store[V]) Take(id string) (V, bool) {
	v, ok := r.m.LoadAndDelete(id)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

func (r *Store[V]) Range(fn func(id string, v V) bool) {
	r.m.Range(func(k, v any) bool {
		return fn(k.(string), v.(V))
	})
}
