// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snapshot provides the snapshot sources fed to a streamdiff.Differ.
//
// History replays a fixed list of state versions, Watch polls a backend for
// new ones, and Lines reads arbitrary snapshots of strings from a reader. All
// three return io.EOF once they have nothing more to give.
package snapshot
