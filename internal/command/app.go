// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/config"
	"github.com/tfctl/tfdelta/internal/meta"
	"github.com/tfctl/tfdelta/internal/util"
)

// rootDirCommands take an optional RootDir[::env] as their first argument.
var rootDirCommands = []string{"replay", "watch", "versions"}

// InitApp builds the tfdelta application for args, where args[0] is the
// binary and args[1] the subcommand.
func InitApp(args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary is the subcommand and also
	// the namespace key used when retrieving config values. It could be
	// -h/--help, so ignore it if it appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns) //nolint
	m := meta.Meta{
		Args:        args,
		Config:      cfg,
		StartingDir: sd,
	}

	// See if the arg immediately following the command is a directory spec.
	// If it starts with - it is a flag and the CWD is the root directory.
	m.RootDir = sd
	if slices.Contains(rootDirCommands, ns) && len(args) > 2 && !strings.HasPrefix(args[2], "-") {
		wd, env, err := util.ParseRootDir(args[2])
		if err != nil {
			return nil, fmt.Errorf("failed to parse rootDir (%s): %w", args[2], err)
		}
		m.RootDir = wd
		m.Env = env
	}

	app := &cli.Command{
		Name:  "tfdelta",
		Usage: "Terraform state history as resource events",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "tfdelta version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		replayCommandBuilder(m),
		watchCommandBuilder(m),
		streamCommandBuilder(m),
		versionsCommandBuilder(m),
		completionCommandBuilder(m),
	)

	return app, nil
}
