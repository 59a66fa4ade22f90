// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/config"
	"github.com/tfctl/tfdelta/internal/meta"
)

// CommandBuilder constructs the cli.Command of a subcommand using a
// consistent pattern. It wires metadata, adds the tldr flag, sorts flags for
// --help and points config lookups at the command's namespace before the
// action runs.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	flags := append(slices.Clone(cb.Flags), tldrFlag)
	slices.SortFunc(flags, func(a, b cli.Flag) int {
		return strings.Compare(a.Names()[0], b.Names()[0])
	})

	name := cb.Name
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			config.Config.Namespace = name
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if ShortCircuitTLDR(ctx, c, name) {
				return nil
			}
			return cb.Action(ctx, c)
		},
	}
}
