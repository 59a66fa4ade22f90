// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var segment = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(\[(\d+|\*)?\])?$`)

// Drill follows path through the JSON document doc. Each segment is a key,
// optionally followed by [N] to pick one array element or by [] or [*] to keep
// the whole array. A bare key holding a single-element array unwraps it,
// which suits the nested blocks providers store as one-item lists. An invalid
// segment or an out of range index yields a result that does not exist.
func Drill(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)

	for p := range strings.SplitSeq(path, ".") {
		m := segment.FindStringSubmatch(p)
		if m == nil {
			return gjson.Result{}
		}

		val := current.Get(gjson.Escape(m[1]))
		if !val.Exists() {
			return gjson.Result{}
		}

		if val.IsArray() {
			arr := val.Array()
			switch index := m[3]; {
			case m[2] == "" && len(arr) == 1:
				val = arr[0]
			case m[2] == "" || index == "" || index == "*":
				// Keep the whole list.
			default:
				i, err := strconv.Atoi(index)
				if err != nil || i >= len(arr) {
					return gjson.Result{}
				}
				val = arr[i]
			}
		}

		current = val
	}

	return current
}

// Value renders the value at path for display: strings as they are and
// anything else as compact JSON. ok is false when the path does not resolve.
func Value(doc string, path string) (value string, ok bool) {
	r := Drill(doc, path)
	if !r.Exists() {
		return "", false
	}
	if r.Type == gjson.String {
		return r.String(), true
	}
	return r.Raw, true
}
