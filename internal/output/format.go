// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"golang.org/x/term"

	"github.com/tfctl/tfdelta/internal/config"
)

// Format selects how actions and tables are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat validates s. The empty string means FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %v)", s, Formats)
	}
}

// Colorize reports whether output to f should be coloured. force wins, then
// NO_COLOR, then whether f is a terminal.
func Colorize(f *os.File, force bool) bool {
	if force {
		return true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Palette holds the colours used for text output.
type Palette struct {
	Add    color.Color
	Remove color.Color
	Header color.Color
}

// DefaultPalette reads colors.add, colors.remove and colors.header from the
// config, falling back to defaults picked for the terminal background.
func DefaultPalette() Palette {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolve := func(key string, light string, dark string) color.Color {
		if c, err := config.GetString("colors." + key); err == nil && c != "" {
			return lipgloss.Color(c)
		}
		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	return Palette{
		Add:    resolve("add", "#22863a", "#85e89d"),
		Remove: resolve("remove", "#cb2431", "#f97583"),
		Header: resolve("header", "#b08800", "#f6be00"),
	}
}
