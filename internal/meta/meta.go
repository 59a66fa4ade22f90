// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"github.com/tfctl/tfdelta/internal/config"
)

// RootDirSpec holds the resolved root directory and optional workspace
// override parsed from a "dir::env" argument.
type RootDirSpec struct {
	RootDir string
	Env     string
}

// Meta contains runtime metadata shared by commands: the CLI arguments, the
// loaded configuration, the resolved root directory and the starting working
// directory.
type Meta struct {
	Args   []string
	Config config.Type
	RootDirSpec
	StartingDir string
}
