// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package streamdiff

import (
	"context"
	"io"
)

// Source produces snapshots one at a time. Next returns io.EOF once there are
// no further snapshots; the slice returned alongside io.EOF is ignored. Any
// other error is a fault and is handed to the consumer untouched. A nil or
// empty slice is a valid, empty snapshot.
//
// Next is the only place a Differ may block. Sources that wait on timers,
// files or the network should honour ctx.
type Source[T any] interface {
	Next(ctx context.Context) ([]T, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context) ([]T, error)

// Next calls f(ctx).
func (f SourceFunc[T]) Next(ctx context.Context) ([]T, error) {
	return f(ctx)
}

// FromSlices returns a Source that yields each of snaps in turn. The slices
// are handed out as they are and never modified.
func FromSlices[T any](snaps ...[]T) Source[T] {
	return &sliceSource[T]{snaps: snaps}
}

type sliceSource[T any] struct {
	snaps [][]T
	pos   int
}

func (s *sliceSource[T]) Next(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.snaps) {
		return nil, io.EOF
	}
	snap := s.snaps[s.pos]
	s.pos++
	return snap, nil
}
