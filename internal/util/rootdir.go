// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// ParseRootDir splits a "dir[::env]" argument into an absolute directory and
// an optional workspace override. The directory must exist. An empty argument
// means the current directory.
func ParseRootDir(rootDir string) (string, string, error) {
	if rootDir == "" {
		rootDir = "."
	}

	dir, env, _ := strings.Cut(rootDir, "::")
	if dir == "" {
		return "", "", os.ErrInvalid
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}
	if !info.IsDir() {
		return "", "", os.ErrInvalid
	}

	return abs, env, nil
}

// Workspace returns override when set, otherwise the workspace selected in
// rootDir/.terraform/environment. The default workspace is "".
func Workspace(rootDir, override string) string {
	if override != "" {
		return override
	}
	data, err := os.ReadFile(filepath.Join(rootDir, ".terraform", "environment"))
	if err != nil {
		return ""
	}
	env := string(bytes.TrimSpace(data))
	if env == "default" {
		return ""
	}
	return env
}
