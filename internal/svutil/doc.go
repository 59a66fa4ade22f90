// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package svutil resolves user supplied state version specs against a
// backend's version list and selects the range of versions to replay.
//
// Version lists are always newest first, the order backends return them in.
// Ranges are returned oldest first, the order they are replayed in.
package svutil
