// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package streamdiff

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// State is the lifecycle position of a Differ.
type State uint8

const (
	// AwaitingSource means the queue is empty and the next call pulls the
	// source.
	AwaitingSource State = iota
	// Draining means buffered actions remain from the last snapshot.
	Draining
	// Exhausted is terminal: the source ended or the Differ was closed.
	Exhausted
	// Faulted is terminal: the source returned an error other than io.EOF.
	Faulted
)

func (s State) String() string {
	switch s {
	case AwaitingSource:
		return "awaiting-source"
	case Draining:
		return "draining"
	case Exhausted:
		return "exhausted"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Differ is the diff adapter. It is not safe for concurrent use; exactly one
// consumer pulls from it.
type Differ[T any, K comparable] struct {
	src  Source[T]
	key  func(T) K
	prev *keyedSet[T, K]

	queue []Action[T]
	head  int

	terminal State
	err      error
	closed   bool
}

// New returns a Differ over src that compares elements by value.
func New[T comparable](src Source[T]) *Differ[T, T] {
	return NewKeyed(src, Identity[T])
}

// NewKeyed returns a Differ over src that treats two elements as the same
// when key returns the same value for both. When a snapshot carries several
// elements with one key, the first wins.
func NewKeyed[T any, K comparable](src Source[T], key func(T) K) *Differ[T, K] {
	return &Differ[T, K]{
		src:      src,
		key:      key,
		terminal: AwaitingSource,
	}
}

// Next returns the next action. It returns io.EOF once the source is
// exhausted and the queue is empty, and keeps returning io.EOF afterwards. A
// source fault is returned as is and repeated on every later call; the source
// is never pulled again after it faulted or ended.
func (d *Differ[T, K]) Next(ctx context.Context) (Action[T], error) {
	for {
		if a, ok := d.pop(); ok {
			return a, nil
		}

		switch d.terminal {
		case Exhausted:
			return Action[T]{}, io.EOF
		case Faulted:
			return Action[T]{}, d.err
		}

		snap, err := d.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			d.terminal = Exhausted
			d.prev = nil
			return Action[T]{}, io.EOF
		}
		if err != nil {
			d.terminal = Faulted
			d.err = err
			return Action[T]{}, err
		}

		d.update(snap)
	}
}

// State reports where the Differ is in its lifecycle.
func (d *Differ[T, K]) State() State {
	if d.Pending() > 0 {
		return Draining
	}
	return d.terminal
}

// Pending returns the number of buffered actions.
func (d *Differ[T, K]) Pending() int {
	return len(d.queue) - d.head
}

// Current returns the elements of the most recently pulled snapshot, i.e. the
// set a consumer holds once the pending actions are drained. Order is
// unspecified.
func (d *Differ[T, K]) Current() []T {
	return d.prev.values()
}

// Close drops buffered actions and releases the source, closing it when it
// implements io.Closer. The Differ reports io.EOF afterwards. Close is
// idempotent.
func (d *Differ[T, K]) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	clear(d.queue)
	d.queue, d.head = nil, 0
	d.prev = nil
	if d.terminal != Faulted {
		d.terminal = Exhausted
	}

	if c, ok := d.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (d *Differ[T, K]) pop() (Action[T], bool) {
	if d.head >= len(d.queue) {
		return Action[T]{}, false
	}
	a := d.queue[d.head]
	d.queue[d.head] = Action[T]{}
	d.head++
	if d.head == len(d.queue) {
		d.queue, d.head = d.queue[:0], 0
	}
	return a, true
}

func (d *Differ[T, K]) update(snap []T) {
	next := newKeyedSet(snap, d.key)
	d.queue = transition(d.prev, next, d.queue[:0])
	d.head = 0
	d.prev = next
}
