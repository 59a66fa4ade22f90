// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Row is one record of a table, keyed by column name.
type Row map[string]any

// SortRows sorts rows in place by spec, a comma separated list of column
// names. A leading - sorts that column descending and a leading ! compares
// strings case sensitively. The sort is stable.
func SortRows(rows []Row, spec string) {
	if strings.TrimSpace(spec) == "" {
		return
	}
	fields := strings.Split(spec, ",")

	slices.SortStableFunc(rows, func(one, two Row) int {
		for _, field := range fields {
			field = strings.TrimSpace(field)
			descending := strings.HasPrefix(field, "-")
			field = strings.TrimPrefix(field, "-")
			caseSensitive := strings.HasPrefix(field, "!")
			field = strings.TrimPrefix(field, "!")

			c := compareValues(one[field], two[field], caseSensitive)
			if c == 0 {
				continue
			}
			if descending {
				return -c
			}
			return c
		}
		return 0
	})
}

func compareValues(a, b any, caseSensitive bool) int {
	switch a := a.(type) {
	case int64:
		if b, ok := b.(int64); ok {
			return cmp.Compare(a, b)
		}
	case int:
		if b, ok := b.(int); ok {
			return cmp.Compare(a, b)
		}
	case float64:
		if b, ok := b.(float64); ok {
			return cmp.Compare(a, b)
		}
	case time.Time:
		if b, ok := b.(time.Time); ok {
			return a.Compare(b)
		}
	}

	// Fall back to string comparison which also handles bools and nils.
	as, bs := Stringify(a), Stringify(b)
	if !caseSensitive {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}

// Stringify renders a cell value. Nil renders as empty, times as RFC 3339.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
