// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-tfe"

	"github.com/tfctl/tfdelta/internal/backend"
	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/state"
)

// DefaultMaxFailures is how many polls in a row may fail before Watch gives
// up.
const DefaultMaxFailures = 3

// Watch polls a backend and returns each new state version as a snapshot. The
// first snapshot is the current version.
type Watch struct {
	be          backend.Backend
	interval    time.Duration
	opts        Options
	MaxFailures int

	started  bool
	last     *tfe.StateVersion
	pending  []*tfe.StateVersion
	seen     int
	failures int

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatch returns a source polling be every interval.
func NewWatch(be backend.Backend, interval time.Duration, opts Options) *Watch {
	return &Watch{
		be:          be,
		interval:    interval,
		opts:        opts,
		MaxFailures: DefaultMaxFailures,
		done:        make(chan struct{}),
	}
}

// Next blocks until a version newer than the last one returned appears, ctx
// is done, or Close is called. After Close it returns io.EOF.
func (w *Watch) Next(ctx context.Context) ([]state.Resource, error) {
	for {
		select {
		case <-w.done:
			w.stop()
			return nil, io.EOF
		default:
		}

		if len(w.pending) > 0 {
			sv := w.pending[0]
			w.pending = w.pending[1:]
			return w.load(ctx, sv)
		}

		if w.started {
			if err := w.wait(ctx); err != nil {
				w.stop()
				return nil, err
			}
		}
		w.started = true

		if err := w.poll(ctx); err != nil {
			w.stop()
			return nil, err
		}
	}
}

func (w *Watch) wait(ctx context.Context) error {
	if w.ticker == nil {
		w.ticker = time.NewTicker(w.interval)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return io.EOF
	case <-w.ticker.C:
		return nil
	}
}

// poll queues versions newer than the last one returned, oldest first. On the
// first poll only the current version is queued.
func (w *Watch) poll(ctx context.Context) error {
	versions, err := w.be.StateVersions(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.failures++
		if w.failures >= w.MaxFailures {
			return fmt.Errorf("polling %s failed %d times: %w", w.be, w.failures, err)
		}
		log.WithError(err).Warnf("polling %s failed, retrying in %s", w.be, w.interval)
		return nil
	}
	w.failures = 0

	if len(versions) == 0 {
		log.Debugf("no state versions in %s yet", w.be)
		return nil
	}
	if w.last == nil {
		w.pending = append(w.pending, versions[0])
		return nil
	}

	var fresh []*tfe.StateVersion
	for _, sv := range versions {
		if !newer(sv, w.last) {
			break
		}
		fresh = append(fresh, sv)
	}
	slices.Reverse(fresh)
	if len(fresh) > 0 {
		log.Debugf("%d new state versions in %s", len(fresh), w.be)
	}
	w.pending = append(w.pending, fresh...)
	return nil
}

func (w *Watch) load(ctx context.Context, sv *tfe.StateVersion) ([]state.Resource, error) {
	w.last = sv
	w.seen++

	resources, err := load(ctx, w.be, sv, w.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(sv), err)
	}
	if w.opts.OnVersion != nil {
		w.opts.OnVersion(Event{Index: w.seen, Version: sv, Resources: len(resources)})
	}
	return resources, nil
}

// newer orders by serial, falling back to creation time for backends that
// cannot report one. Local versions keep their file name across writes, so
// the ID alone says nothing.
func newer(sv, last *tfe.StateVersion) bool {
	if sv.Serial != 0 || last.Serial != 0 {
		return sv.Serial > last.Serial
	}
	return sv.CreatedAt.After(last.CreatedAt)
}

func (w *Watch) stop() {
	if w.ticker != nil {
		w.ticker.Stop()
		w.ticker = nil
	}
}

// Close stops polling. It may be called from another goroutine; a blocked
// Next then returns io.EOF.
func (w *Watch) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}
