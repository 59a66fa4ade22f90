// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for tfdelta's user
// configuration. The configuration is a YAML document located in the user's
// configuration directory, typically:
//   - Linux: $XDG_CONFIG_HOME/tfdelta.yaml or $HOME/.config/tfdelta.yaml
//   - macOS: $HOME/Library/Application Support/tfdelta.yaml
//   - Windows: %APPDATA%/tfdelta.yaml
//
// TFDELTA_CFG_FILE overrides the location.
package config
