// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/hashicorp/go-tfe"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/backend"
	"github.com/tfctl/tfdelta/internal/differ"
	"github.com/tfctl/tfdelta/internal/meta"
	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/internal/svutil"
	"github.com/tfctl/tfdelta/streamdiff"
)

// replayCommandAction is the action handler for the "replay" subcommand. It
// resolves a range of state versions and renders the resource events that
// turn each version into the next.
func replayCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	identity, err := Identity(cmd)
	if err != nil {
		return err
	}
	opts, err := SnapshotOptions(cmd)
	if err != nil {
		return err
	}
	ropts, err := RenderOptions(cmd)
	if err != nil {
		return err
	}

	be, versions, err := replayVersions(ctx, cmd)
	if err != nil {
		return err
	}
	log.Debugf("replaying %d state versions", len(versions))

	r := output.NewResourceRenderer(writer(cmd), ropts)
	opts.OnVersion = r.Version

	d := streamdiff.NewKeyed(snapshot.NewHistory(be, versions, opts), identity.KeyFunc())
	err = differ.Run(ctx, d, r)
	summarize(cmd, r)
	return err
}

// replayVersions returns the backend and the versions to replay, oldest
// first. Two state files given as --from and --to need no backend.
func replayVersions(ctx context.Context, cmd *cli.Command) (backend.Backend, []*tfe.StateVersion, error) {
	from, to := cmd.String("from"), cmd.String("to")
	if isFile(from) && isFile(to) && !cmd.Bool("pick") {
		versions, err := svutil.Range(nil, from, to)
		return nil, versions, err
	}

	be, err := NewBackend(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	all, err := be.StateVersions(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, svutil.ErrNoVersions
	}

	if cmd.Bool("pick") {
		oldest, newest, err := differ.Pick(all)
		if err != nil {
			return nil, nil, err
		}
		versions, err := svutil.Between(all, oldest, newest)
		return be, versions, err
	}

	versions, err := svutil.Range(all, from, to)
	return be, versions, err
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// replayCommandBuilder constructs the cli.Command for "replay", wiring
// metadata, flags, and action handlers.
func replayCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "first state version to replay. Defaults to the oldest",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "last state version to replay. Defaults to the current one",
		},
		&cli.BoolFlag{
			Name:  "pick",
			Usage: "pick the first and last state versions interactively",
		},
		limitFlag(),
	}
	flags = append(flags, NewStateFlags("replay", meta.Config.Source)...)
	flags = append(flags, NewDiffFlags("replay", meta.Config.Source)...)
	flags = append(flags, NewOutputFlags("replay", meta.Config.Source)...)

	return (&CommandBuilder{
		Name:      "replay",
		Usage:     "replay state history as resource events",
		UsageText: "tfdelta replay [RootDir[::env]] [--from SPEC] [--to SPEC] [options]",
		Flags:     flags,
		Action:    replayCommandAction,
		Meta:      meta,
	}).Build()
}
