// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a Lines stream.
type Format string

const (
	// FormatJSON is one JSON array of strings per line.
	FormatJSON Format = "json"
	// FormatYAML is one YAML sequence of strings per document.
	FormatYAML Format = "yaml"
)

// Formats lists the accepted stream formats.
var Formats = []Format{FormatJSON, FormatYAML}

// ParseFormat validates s. The empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown stream format %q (want one of %v)", s, Formats)
	}
}

const maxLine = 16 << 20

// Lines reads snapshots of strings from a reader. Blank lines and lines
// starting with # are skipped in JSON streams; an empty YAML document is an
// empty snapshot. Malformed input fails with the offending line or document
// number.
type Lines struct {
	format  Format
	scanner *bufio.Scanner
	dec     *yaml.Decoder
	n       int
}

// NewLines returns a source reading r in format.
func NewLines(r io.Reader, format Format) *Lines {
	l := &Lines{format: format}
	if format == FormatYAML {
		l.dec = yaml.NewDecoder(r)
	} else {
		l.scanner = bufio.NewScanner(r)
		l.scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	}
	return l
}

// Next returns the next snapshot or io.EOF at the end of the input.
func (l *Lines) Next(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.format == FormatYAML {
		return l.nextDocument()
	}
	return l.nextLine()
}

func (l *Lines) nextLine() ([]string, error) {
	for l.scanner.Scan() {
		l.n++
		line := strings.TrimSpace(l.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		snap, err := parseJSONArray(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", l.n, err)
		}
		return snap, nil
	}
	if err := l.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", l.n+1, err)
	}
	return nil, io.EOF
}

func parseJSONArray(line string) ([]string, error) {
	if !gjson.Valid(line) {
		return nil, errors.New("invalid JSON")
	}
	arr := gjson.Parse(line)
	if !arr.IsArray() {
		return nil, errors.New("want a JSON array of strings")
	}

	elems := arr.Array()
	snap := make([]string, 0, len(elems))
	for i, el := range elems {
		if el.Type != gjson.String {
			return nil, fmt.Errorf("element %d is %s, not a string", i, el.Type)
		}
		snap = append(snap, el.String())
	}
	return snap, nil
}

func (l *Lines) nextDocument() ([]string, error) {
	var node yaml.Node
	err := l.dec.Decode(&node)
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	l.n++
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", l.n, err)
	}

	var snap []string
	if err := node.Decode(&snap); err != nil {
		return nil, fmt.Errorf("document %d: %w", l.n, err)
	}
	if snap == nil {
		snap = []string{}
	}
	return snap, nil
}
