// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-tfe"

	"github.com/tfctl/tfdelta/internal/backend"
	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/state"
)

// History replays versions, oldest first, one version per Next.
type History struct {
	be       backend.Backend
	versions []*tfe.StateVersion
	opts     Options
	next     int
}

// NewHistory returns a source over versions, which must be ordered oldest
// first as returned by svutil.Range.
func NewHistory(be backend.Backend, versions []*tfe.StateVersion, opts Options) *History {
	return &History{be: be, versions: versions, opts: opts}
}

// Next loads the next version. It returns io.EOF after the last one.
func (h *History) Next(ctx context.Context) ([]state.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.next >= len(h.versions) {
		return nil, io.EOF
	}

	sv := h.versions[h.next]
	h.next++

	resources, err := load(ctx, h.be, sv, h.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(sv), err)
	}
	log.Debugf("loaded %s: %d resources", describe(sv), len(resources))

	if h.opts.OnVersion != nil {
		h.opts.OnVersion(Event{
			Index:     h.next,
			Total:     len(h.versions),
			Version:   sv,
			Resources: len(resources),
		})
	}
	return resources, nil
}

// Remaining is the number of versions not yet loaded.
func (h *History) Remaining() int {
	return len(h.versions) - h.next
}
