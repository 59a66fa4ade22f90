// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/backend"
	"github.com/tfctl/tfdelta/internal/config"
	"github.com/tfctl/tfdelta/internal/filters"
	"github.com/tfctl/tfdelta/internal/meta"
	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/internal/state"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewBackend detects the backend of the command's root directory and applies
// the --host, --org, --workspace and --limit overrides.
func NewBackend(ctx context.Context, cmd *cli.Command) (backend.Backend, error) {
	m := GetMeta(cmd)
	rootDir := m.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	be, err := backend.NewBackend(ctx, backend.Options{
		RootDir:   rootDir,
		Env:       m.Env,
		Host:      cmd.String("host"),
		Org:       cmd.String("org"),
		Workspace: cmd.String("workspace"),
		Limit:     int(cmd.Int("limit")),
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("backend: %s %s", be.Type(), be)
	return be, nil
}

// SnapshotOptions builds the passphrase and --where filter shared by the
// state sources. Without --where the config file's where list applies.
func SnapshotOptions(cmd *cli.Command) (snapshot.Options, error) {
	where := cmd.StringSlice("where")
	if len(where) == 0 {
		var err error
		if where, err = config.GetStringSlice("where", nil); err != nil {
			return snapshot.Options{}, err
		}
	}

	filter, err := filters.Compile(where...)
	if err != nil {
		return snapshot.Options{}, fmt.Errorf("--where: %w", err)
	}
	if filter != nil {
		log.Debugf("filter: %s", filter)
	}
	return snapshot.Options{
		Passphrase: state.PassphraseFrom(cmd.String("passphrase")),
		Filter:     filter,
	}, nil
}

// RenderOptions builds output.Options from the output and diff flags.
func RenderOptions(cmd *cli.Command) (output.Options, error) {
	format, err := output.ParseFormat(cmd.String("output"))
	if err != nil {
		return output.Options{}, err
	}

	f, _ := writer(cmd).(*os.File)
	return output.Options{
		Format:  format,
		Color:   format == output.FormatText && output.Colorize(f, cmd.Bool("color")),
		Headers: cmd.Bool("headers"),
		Detail:  cmd.Bool("detail"),
		Show:    cmd.StringSlice("show"),
	}, nil
}

// Identity parses --identity and warns when --detail cannot take effect.
func Identity(cmd *cli.Command) (state.Identity, error) {
	identity, err := state.ParseIdentity(cmd.String("identity"))
	if err != nil {
		return "", err
	}
	if cmd.Bool("detail") && identity == state.IdentityAddress {
		log.Warnf("--detail has no effect with --identity %s", identity)
	}
	return identity, nil
}

// summarize writes the totals to stderr when --summary is set.
func summarize[T any](cmd *cli.Command, r *output.Renderer[T]) {
	if cmd.Bool("summary") {
		fmt.Fprintln(errWriter(cmd), r.Summary())
	}
}

// interrupted reports whether err only says the command was cancelled.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr tfdelta <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "tfdelta", subcmd)
			c.Stdout = writer(cmd)
			c.Stderr = errWriter(cmd)
			_ = c.Run()
		}
		return true
	}
	return false
}
