// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ drives a streamdiff.Differ into an output renderer and lets
// users pick a range of state versions interactively.
package differ
