// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-tfe"

	"github.com/tfctl/tfdelta/internal/backend"
	"github.com/tfctl/tfdelta/internal/filters"
	"github.com/tfctl/tfdelta/internal/state"
	"github.com/tfctl/tfdelta/internal/svutil"
)

// Event describes the state version behind the snapshot just returned.
type Event struct {
	// Index is the 1-based position of the version in the replay.
	Index int
	// Total is the number of versions in the replay, 0 when unbounded.
	Total     int
	Version   *tfe.StateVersion
	Resources int
}

// Options are shared by History and Watch.
type Options struct {
	// Passphrase decrypts OpenTofu encrypted state. Nil makes encrypted state
	// an error.
	Passphrase state.PassphraseFunc
	// Filter drops resources before diffing. Nil keeps everything.
	Filter *filters.Filter
	// OnVersion is called after each version is loaded and before its
	// snapshot is returned.
	OnVersion func(Event)
}

// load downloads, decrypts and flattens one version.
func load(ctx context.Context, be backend.Backend, sv *tfe.StateVersion, opts Options) ([]state.Resource, error) {
	var (
		body []byte
		err  error
	)
	switch path, ok := svutil.LocalPath(sv); {
	case ok:
		body, err = os.ReadFile(path)
	case be != nil:
		body, err = be.StateBody(ctx, sv)
	default:
		err = fmt.Errorf("no backend to read %s", sv.ID)
	}
	if err != nil {
		return nil, err
	}

	plain, err := state.Decode(body, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	resources, err := state.Resources(plain)
	if err != nil {
		return nil, err
	}
	return opts.Filter.Apply(resources)
}

func describe(sv *tfe.StateVersion) string {
	if sv.Serial > 0 {
		return fmt.Sprintf("state version %s (serial %d)", sv.ID, sv.Serial)
	}
	return "state version " + sv.ID
}
