// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package streamdiff

import (
	"context"
	"errors"
	"io"
	"iter"
)

// All ranges over the remaining actions. It stops quietly at io.EOF; a fault
// is yielded once as a zero action paired with the error.
func (d *Differ[T, K]) All(ctx context.Context) iter.Seq2[Action[T], error] {
	return func(yield func(Action[T], error) bool) {
		for {
			a, err := d.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(a, err)
				return
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

// Collect drains the Differ. On a fault it returns the actions delivered so
// far together with the error.
func (d *Differ[T, K]) Collect(ctx context.Context) ([]Action[T], error) {
	var out []Action[T]
	for a, err := range d.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, a)
	}
	return out, nil
}
