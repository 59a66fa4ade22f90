// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/internal/state"
)

var tldrFlag *cli.BoolFlag = &cli.BoolFlag{
	Name:        "tldr",
	Usage:       "show tldr page",
	Hidden:      !pathHas("tldr"),
	HideDefault: true,
}

// NewOutputFlags returns the flags shared by every command that renders,
// sourced from TFDELTA_* variables and the config file at cfgPath.
func NewOutputFlags(ns string, cfgPath string) []cli.Flag {
	formats := make([]string, 0, len(output.Formats))
	for _, f := range output.Formats {
		formats = append(formats, string(f))
	}

	return []cli.Flag{
		withConfig(ns, cfgPath, &cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "force colored text output",
			Sources: cli.EnvVars("TFDELTA_COLOR"),
		}),
		withConfig(ns, cfgPath, &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format, one of " + strings.Join(formats, ", "),
			Value:   string(output.FormatText),
			Sources: cli.EnvVars("TFDELTA_OUTPUT"),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		}),
	}
}

// NewDiffFlags returns the flags shared by replay, watch and stream.
func NewDiffFlags(ns string, cfgPath string) []cli.Flag {
	return []cli.Flag{
		withConfig(ns, cfgPath, &cli.BoolFlag{
			Name:  "headers",
			Usage: "print a line naming each snapshot before its events",
			Value: true,
		}),
		withConfig(ns, cfgPath, &cli.BoolFlag{
			Name:    "summary",
			Aliases: []string{"s"},
			Usage:   "print totals to stderr when done",
		}),
	}
}

// NewStateFlags returns the flags shared by replay and watch.
func NewStateFlags(ns string, cfgPath string) []cli.Flag {
	identities := make([]string, 0, len(state.Identities))
	for _, i := range state.Identities {
		identities = append(identities, string(i))
	}

	return []cli.Flag{
		withConfig(ns, cfgPath, &cli.StringFlag{
			Name:    "identity",
			Aliases: []string{"i"},
			Usage:   "what makes two resources the same, one of " + strings.Join(identities, ", "),
			Value:   string(state.IdentityAddress),
			Validator: func(value string) error {
				return FlagValidators(value, IdentityValidator)
			},
		}),
		&cli.StringSliceFlag{
			Name:    "where",
			Aliases: []string{"f"},
			Usage:   "HCL expression a resource must satisfy, may be repeated",
		},
		&cli.BoolFlag{
			Name:  "detail",
			Usage: "show attribute changes of replaced resources (with --identity content)",
		},
		&cli.StringSliceFlag{
			Name:  "show",
			Usage: "attribute path to print with each resource, for example tags.env, may be repeated",
		},
		&cli.StringFlag{
			Name:    "passphrase",
			Usage:   "encrypted state passphrase",
			Sources: cli.EnvVars("TFDELTA_PASSPHRASE"),
		},
		NewHostFlag(),
		NewOrgFlag(),
		workspaceFlag(),
	}
}

func workspaceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "workspace",
		Aliases: []string{"w"},
		Usage:   "workspace to use. Overrides the backend",
		Sources: cli.EnvVars("TFDELTA_WORKSPACE"),
	}
}

func limitFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "limit state versions considered, newest first. 0 means all",
	}
}

func streamFormatFlag(ns string, cfgPath string) *cli.StringFlag {
	return withConfig(ns, cfgPath, &cli.StringFlag{
		Name:  "format",
		Usage: "snapshot stream format, json (one array per line) or yaml (one sequence per document)",
		Value: string(snapshot.FormatJSON),
		Validator: func(value string) error {
			return FlagValidators(value, StreamFormatValidator)
		},
	})
}

// NewHostFlag constructs a cli.StringFlag for the "host" flag. Note that no
// value is inferred from the config file for state commands; the host comes
// from the backend or the explicit flag.
func NewHostFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "host",
		Usage: "TFE/HCP host. Overrides the backend",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFDELTA_HOST"),
			cli.EnvVar("TF_CLOUD_HOSTNAME"),
		),
	}
}

// NewOrgFlag constructs a cli.StringFlag for the "org" flag. Like host, it is
// never read from the config file.
func NewOrgFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "org",
		Usage: "TFE/HCP organization. Overrides the backend",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFDELTA_ORG"),
			cli.EnvVar("TF_CLOUD_ORGANIZATION"),
		),
	}
}

// configurable is a flag whose value sources can be extended.
type configurable interface {
	*cli.StringFlag | *cli.BoolFlag | *cli.IntFlag | *cli.DurationFlag
}

// withConfig appends the namespaced and global config file sources to the
// flag's Sources chain, after any environment variables.
func withConfig[F configurable](ns string, path string, flag F) F {
	if path == "" {
		return flag
	}

	var (
		name    string
		sources *cli.ValueSourceChain
	)
	switch f := any(flag).(type) {
	case *cli.StringFlag:
		name, sources = f.Name, &f.Sources
	case *cli.BoolFlag:
		name, sources = f.Name, &f.Sources
	case *cli.IntFlag:
		name, sources = f.Name, &f.Sources
	case *cli.DurationFlag:
		name, sources = f.Name, &f.Sources
	}

	sources.Chain = append(sources.Chain,
		yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)),
		yaml.YAML(name, altsrc.StringSourcer(path)),
	)
	return flag
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
