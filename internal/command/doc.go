// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command wires the tfdelta subcommands (replay, watch, stream,
// versions and completion) into a urfave/cli application.
package command
