// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/jsonapi"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/meta"
	"github.com/tfctl/tfdelta/internal/output"
)

// versionsColumns are the columns of the versions listing, in order. csv is
// the CSV~N spec that selects the row.
var versionsColumns = []string{"csv", "serial", "id", "created-at", "age"}

// versionsCommandAction is the action handler for the "versions" subcommand.
// It lists the state versions of the backend, newest first, so that users
// can choose --from and --to specs.
func versionsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	format, err := output.ParseFormat(cmd.String("output"))
	if err != nil {
		return err
	}

	be, err := NewBackend(ctx, cmd)
	if err != nil {
		return err
	}
	versions, err := be.StateVersions(ctx)
	if err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := jsonapi.MarshalPayload(&raw, versions); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if cmd.Bool("raw") {
		_, err := writer(cmd).Write(raw.Bytes())
		return err
	}

	rows := versionRows(gjson.GetBytes(raw.Bytes(), "data"), time.Now())
	output.SortRows(rows, cmd.String("sort"))

	f, _ := writer(cmd).(*os.File)
	opts := output.TableOptions{
		Format: format,
		Color:  format == output.FormatText && output.Colorize(f, cmd.Bool("color")),
		Titles: cmd.Bool("titles"),
	}
	if opts.Color {
		opts.Palette = output.DefaultPalette()
	}
	return output.WriteTable(writer(cmd), versionsColumns, rows, opts)
}

// versionRows flattens the JSON:API data array into table rows. Rows keep the
// payload order, which is newest first.
func versionRows(data gjson.Result, now time.Time) []output.Row {
	var rows []output.Row
	for i, item := range data.Array() {
		row := output.Row{
			"csv":    fmt.Sprintf("CSV~%d", i),
			"id":     item.Get("id").String(),
			"serial": item.Get("attributes.serial").Int(),
		}
		if created := item.Get("attributes.created-at"); created.Exists() {
			if t, err := time.Parse(time.RFC3339, created.String()); err == nil && !t.IsZero() {
				row["created-at"] = t
				row["age"] = humanize.RelTime(t, now, "ago", "from now")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// versionsCommandBuilder constructs the cli.Command for "versions", wiring
// metadata, flags, and action handlers.
func versionsCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "dump the JSON:API payload",
		},
		withConfig("versions", meta.Config.Source, &cli.StringFlag{
			Name:  "sort",
			Usage: "comma-separated list of columns to sort by, - for descending",
		}),
		withConfig("versions", meta.Config.Source, &cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
		}),
		limitFlag(),
		NewHostFlag(),
		NewOrgFlag(),
		workspaceFlag(),
	}
	flags = append(flags, NewOutputFlags("versions", meta.Config.Source)...)

	return (&CommandBuilder{
		Name:      "versions",
		Usage:     "list state versions",
		UsageText: "tfdelta versions [RootDir[::env]] [options]",
		Flags:     flags,
		Action:    versionsCommandAction,
		Meta:      meta,
	}).Build()
}
