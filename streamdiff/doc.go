// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package streamdiff turns a pull-based sequence of whole-state snapshots
// into a pull-based sequence of Add and Remove actions.
//
// A Differ wraps a Source. Each call to Differ.Next either pops a buffered
// action or, when the buffer is empty, pulls exactly one snapshot from the
// source, diffs it against the set that has already been communicated to the
// consumer and refills the buffer. Within the batch produced by one snapshot
// every Remove comes before every Add. The order inside each half is not part
// of the contract.
//
// Snapshots that are set-identical to their predecessor produce no actions and
// are skipped without returning to the consumer. The end of the source is
// reported as io.EOF and any other source error is passed through unchanged.
//
// Element identity is either the element itself (New, for comparable types)
// or a caller supplied key (NewKeyed). The key function must be stable and
// consistent with the notion of sameness the caller wants; an inconsistent key
// yields an undefined diff.
package streamdiff
