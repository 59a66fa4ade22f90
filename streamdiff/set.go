// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package streamdiff

// keyedSet is a deduplicated snapshot. keys remembers first-seen order so
// that iteration is repeatable; callers must not rely on that order.
type keyedSet[T any, K comparable] struct {
	keys  []K
	elems map[K]T
}

func newKeyedSet[T any, K comparable](snap []T, key func(T) K) *keyedSet[T, K] {
	s := &keyedSet[T, K]{
		keys:  make([]K, 0, len(snap)),
		elems: make(map[K]T, len(snap)),
	}
	for _, v := range snap {
		k := key(v)
		if _, dup := s.elems[k]; dup {
			continue
		}
		s.keys = append(s.keys, k)
		s.elems[k] = v
	}
	return s
}

func (s *keyedSet[T, K]) len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

func (s *keyedSet[T, K]) has(k K) bool {
	if s == nil {
		return false
	}
	_, ok := s.elems[k]
	return ok
}

func (s *keyedSet[T, K]) values() []T {
	out := make([]T, 0, s.len())
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		out = append(out, s.elems[k])
	}
	return out
}

// transition appends to batch the actions that take a consumer holding prev
// to next: all removals first, then all additions. Elements whose key survives
// keep the instance already held by prev so that a later Remove carries what
// the consumer was actually given.
func transition[T any, K comparable](prev, next *keyedSet[T, K], batch []Action[T]) []Action[T] {
	if prev != nil {
		for _, k := range prev.keys {
			if !next.has(k) {
				batch = append(batch, RemoveOf(prev.elems[k]))
			}
		}
	}
	for _, k := range next.keys {
		if old, ok := prev.get(k); ok {
			next.elems[k] = old
			continue
		}
		batch = append(batch, AddOf(next.elems[k]))
	}
	return batch
}

func (s *keyedSet[T, K]) get(k K) (T, bool) {
	if s == nil {
		var zero T
		return zero, false
	}
	v, ok := s.elems[k]
	return v, ok
}

// Diff returns the actions that turn prev into next, removals first. Both
// inputs may contain duplicates.
func Diff[T comparable](prev, next []T) []Action[T] {
	return DiffKeyed(prev, next, Identity[T])
}

// DiffKeyed is Diff with an explicit element key.
func DiffKeyed[T any, K comparable](prev, next []T, key func(T) K) []Action[T] {
	return transition(newKeyedSet(prev, key), newKeyedSet(next, key), nil)
}
