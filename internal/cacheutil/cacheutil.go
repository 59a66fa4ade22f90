// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cacheutil keeps immutable state version bodies on disk so that
// replaying a history a second time does not download it again.
package cacheutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tfctl/tfdelta/internal/log"
)

// Entry is a cached state body.
type Entry struct {
	Key  string
	Path string
	Data []byte
}

// Dir resolves the cache root: TFDELTA_CACHE_DIR when set, otherwise
// os.UserCacheDir()/tfdelta. It returns false when neither can be resolved.
func Dir() (string, bool) {
	if c := os.Getenv("TFDELTA_CACHE_DIR"); c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "tfdelta"), true
	}
	return "", false
}

// Enabled is false only when TFDELTA_CACHE is "0" or "false".
func Enabled() bool {
	switch os.Getenv("TFDELTA_CACHE") {
	case "0", "false":
		return false
	default:
		return true
	}
}

// path returns where key lives beneath subdirs. Keys are hashed so that
// object versions and URLs become safe file names.
func path(subdirs []string, key string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	parts := append([]string{base}, subdirs...)
	return filepath.Join(append(parts, encodeKey(key))...), true
}

// Read returns the entry for key, if caching is enabled and it exists.
func Read(subdirs []string, key string) (*Entry, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := path(subdirs, key)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	log.Tracef("cache hit: key=%s", key)
	return &Entry{Key: key, Path: p, Data: b}, true
}

// Write stores data for key beneath subdirs. It is a no-op when caching is
// disabled.
func Write(subdirs []string, key string, data []byte) error {
	if !Enabled() {
		return nil
	}
	p, ok := path(subdirs, key)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Tracef("cache write: key=%s", key)
	return nil
}

// Fetch returns the cached body for key or calls load and caches what it
// returns. A failed cache write is logged and otherwise ignored.
func Fetch(
	ctx context.Context,
	subdirs []string,
	key string,
	load func(context.Context) ([]byte, error),
) ([]byte, error) {
	if e, ok := Read(subdirs, key); ok {
		return e.Data, nil
	}

	data, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := Write(subdirs, key, data); err != nil {
		log.WithError(err).Warnf("cache write failed for %s", key)
	}
	return data, nil
}

// Purge removes cached files older than maxAge. A zero or negative maxAge
// disables purging.
func Purge(maxAge time.Duration) error {
	if maxAge <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}

	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(p); err != nil {
				log.WithError(err).Warnf("failed to remove cache file %s", p)
			} else {
				log.Debugf("removed cache file %s", p)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

func encodeKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
