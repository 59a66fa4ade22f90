// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"context"

	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/streamdiff"
)

// Run renders every action of d until the source is exhausted. It returns the
// first source fault or render error. Actions delivered before a fault have
// already been rendered.
func Run[T any, K comparable](ctx context.Context, d *streamdiff.Differ[T, K], r *output.Renderer[T]) error {
	defer d.Close()

	for a, err := range d.All(ctx) {
		if err != nil {
			log.Debugf("differ stopped in state %s: %v", d.State(), err)
			return err
		}
		if err := r.Render(a); err != nil {
			return err
		}
	}
	log.Debugf("differ %s", d.State())
	return nil
}
