// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/config"
	"github.com/tfctl/tfdelta/internal/differ"
	"github.com/tfctl/tfdelta/internal/meta"
	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/streamdiff"
)

// DefaultInterval is how often watch polls the backend.
const DefaultInterval = 30 * time.Second

// watchCommandAction is the action handler for the "watch" subcommand. It
// renders the current state as adds and then the events of every new state
// version until interrupted.
func watchCommandAction(ctx context.Context, cmd *cli.Command) error {
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

	be, err := NewBackend(ctx, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := output.NewResourceRenderer(writer(cmd), ropts)
	opts.OnVersion = r.Version

	interval := cmd.Duration("interval")
	w := snapshot.NewWatch(be, interval, opts)
	if n, err := config.GetInt("max_failures", snapshot.DefaultMaxFailures); err == nil && n > 0 {
		w.MaxFailures = n
	}
	log.Infof("watching %s every %s", be, interval)

	err = differ.Run(ctx, streamdiff.NewKeyed(w, identity.KeyFunc()), r)
	summarize(cmd, r)
	if interrupted(err) {
		log.Debugf("watch interrupted")
		return nil
	}
	return err
}

// watchCommandBuilder constructs the cli.Command for "watch", wiring metadata,
// flags, and action handlers.
func watchCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		withConfig("watch", meta.Config.Source, &cli.DurationFlag{
			Name:    "interval",
			Usage:   "how often to poll for new state versions",
			Value:   DefaultInterval,
			Sources: cli.EnvVars("TFDELTA_INTERVAL"),
			Validator: func(value time.Duration) error {
				return FlagValidators(value, IntervalValidator)
			},
		}),
		limitFlag(),
	}
	flags = append(flags, NewStateFlags("watch", meta.Config.Source)...)
	flags = append(flags, NewDiffFlags("watch", meta.Config.Source)...)
	flags = append(flags, NewOutputFlags("watch", meta.Config.Source)...)

	return (&CommandBuilder{
		Name:      "watch",
		Usage:     "stream resource events as new state versions appear",
		UsageText: "tfdelta watch [RootDir[::env]] [--interval D] [options]",
		Flags:     flags,
		Action:    watchCommandAction,
		Meta:      meta,
	}).Build()
}
