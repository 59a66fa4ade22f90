// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders add and remove actions as text, NDJSON or YAML, and
// lists tabular data such as state versions.
package output
