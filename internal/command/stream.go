// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/differ"
	"github.com/tfctl/tfdelta/internal/meta"
	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/streamdiff"
)

// streamCommandAction is the action handler for the "stream" subcommand. It
// reads snapshots of strings from a file or stdin and renders the events
// between consecutive snapshots.
func streamCommandAction(ctx context.Context, cmd *cli.Command) error {
	format, err := snapshot.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	ropts, err := RenderOptions(cmd)
	if err != nil {
		return err
	}

	input, err := openInput(cmd)
	if err != nil {
		return err
	}
	defer input.Close()

	r := output.NewRenderer(writer(cmd), ropts, streamdiff.Identity[string])
	lines := snapshot.NewLines(input, format)

	n := 0
	src := streamdiff.SourceFunc[string](func(ctx context.Context) ([]string, error) {
		snap, err := lines.Next(ctx)
		if err != nil {
			return nil, err
		}
		n++
		r.Version(snapshot.Event{Index: n, Resources: len(snap)})
		return snap, nil
	})

	err = differ.Run(ctx, streamdiff.New(src), r)
	log.Debugf("stream read %d snapshots", n)
	summarize(cmd, r)
	return err
}

// openInput opens the FILE argument, or stdin when it is missing or "-".
// FILE must be the last argument: flags after "-" are not parsed, so anything
// left over is an error rather than silently ignored.
func openInput(cmd *cli.Command) (io.ReadCloser, error) {
	if cmd.Args().Len() > 1 {
		return nil, fmt.Errorf("unexpected arguments after %s: %v (options go before FILE)",
			cmd.Args().First(), cmd.Args().Tail())
	}

	name := cmd.Args().First()
	if name == "" || name == "-" {
		if r := cmd.Root().Reader; r != nil {
			return io.NopCloser(r), nil
		}
		return io.NopCloser(os.Stdin), nil
	}

	if info, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("snapshot stream does not exist: %s", name)
	} else if info.IsDir() {
		return nil, fmt.Errorf("snapshot stream cannot be a directory: %s", name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot stream: %w", err)
	}
	return f, nil
}

// streamCommandBuilder constructs the cli.Command for "stream", wiring
// metadata, flags, and action handlers.
func streamCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{streamFormatFlag("stream", meta.Config.Source)}
	flags = append(flags, NewDiffFlags("stream", meta.Config.Source)...)
	flags = append(flags, NewOutputFlags("stream", meta.Config.Source)...)

	return (&CommandBuilder{
		Name:      "stream",
		Usage:     "diff a stream of string snapshots",
		UsageText: "tfdelta stream [--format json|yaml] [options] [FILE|-]",
		Flags:     flags,
		Action:    streamCommandAction,
		Meta:      meta,
	}).Build()
}
