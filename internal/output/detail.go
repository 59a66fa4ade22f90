// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Delta returns an ASCII delta between two JSON objects, or "" when they are
// equal.
func Delta(before, after string, color bool) (string, error) {
	if before == "" {
		before = "{}"
	}
	if after == "" {
		after = "{}"
	}

	delta, err := gojsondiff.New().Compare([]byte(before), []byte(after))
	if err != nil {
		return "", fmt.Errorf("failed to compare attributes: %w", err)
	}
	if !delta.Modified() {
		return "", nil
	}

	var left map[string]interface{}
	if err := json.Unmarshal([]byte(before), &left); err != nil {
		return "", fmt.Errorf("failed to unmarshal attributes: %w", err)
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	}
	out, err := formatter.NewAsciiFormatter(left, config).Format(delta)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
