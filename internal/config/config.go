// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// EnvFile names the variable that overrides the config file location.
const EnvFile = "TFDELTA_CFG_FILE"

// ErrNotFound is returned by the getters when no candidate key exists.
var ErrNotFound = errors.New("config key not found")

// Type is a loaded config file. Namespace, usually the running command, makes
// "<namespace>.<key>" win over "<key>".
type Type struct {
	Source    string
	Namespace string
	Data      map[string]any
}

// Config is the process wide configuration, loaded on first use.
var Config Type

// GetInt returns the integer at key, or the single default when key is absent.
func GetInt(key string, defaultValue ...int) (int, error) {
	return get(key, defaultValue, func(v any) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), true
		}
		return 0, false
	}, "an int")
}

// GetString returns the string at key, or the single default when key is
// absent.
func GetString(key string, defaultValue ...string) (string, error) {
	return get(key, defaultValue, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	}, "a string")
}

// GetDuration returns the duration at key. Strings go through
// time.ParseDuration and bare numbers are seconds.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	return get(key, defaultValue, func(v any) (time.Duration, bool) {
		switch d := v.(type) {
		case string:
			parsed, err := time.ParseDuration(d)
			return parsed, err == nil
		case int:
			return time.Duration(d) * time.Second, true
		case float64:
			return time.Duration(d * float64(time.Second)), true
		}
		return 0, false
	}, "a duration")
}

// GetStringSlice returns the list of strings at key. A lone string is a list
// of one.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	return get(key, defaultValue, func(v any) ([]string, bool) {
		switch l := v.(type) {
		case string:
			return []string{l}, true
		case []any:
			out := make([]string, 0, len(l))
			for _, item := range l {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, s)
			}
			return out, true
		}
		return nil, false
	}, "a list of strings")
}

func get[T any](key string, defaults []T, convert func(any) (T, bool), want string) (T, error) {
	var zero T

	if len(Config.Data) == 0 {
		_, _ = Load(Config.Namespace)
	}

	raw, err := Config.lookup(key)
	if err != nil {
		if len(defaults) == 1 {
			return defaults[0], nil
		}
		return zero, err
	}

	v, ok := convert(raw)
	if !ok {
		return zero, fmt.Errorf("%s: value is not %s", key, want)
	}
	return v, nil
}

// lookup walks the dotted key through Data, trying the namespaced form first.
func (cfg *Type) lookup(key string) (any, error) {
	candidates := []string{key}
	if cfg.Namespace != "" {
		candidates = []string{cfg.Namespace + "." + key, key}
	}

next:
	for _, candidate := range candidates {
		var node any = cfg.Data
		for part := range strings.SplitSeq(candidate, ".") {
			m, ok := node.(map[string]any)
			if !ok {
				continue next
			}
			if node, ok = m[part]; !ok {
				continue next
			}
		}
		return node, nil
	}

	return nil, fmt.Errorf("%w: tried %v", ErrNotFound, candidates)
}

// Load reads the config file into Config and returns it. namespace, when
// given, is remembered for later lookups.
func Load(namespace ...string) (Type, error) {
	path, err := File()
	if err != nil {
		return Type{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	cfg := Type{Source: path}
	if err := yaml.Unmarshal(raw, &cfg.Data); err != nil {
		return Type{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(namespace) > 0 {
		cfg.Namespace = namespace[0]
	}

	Config = cfg
	return Config, nil
}

// File locates the config file: $TFDELTA_CFG_FILE when set, otherwise
// tfdelta.yaml in os.UserConfigDir.
func File() (string, error) {
	if path := os.Getenv(EnvFile); path != "" {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			return "", fmt.Errorf("config file not found at %s path: %s", EnvFile, path)
		case info.IsDir():
			return "", fmt.Errorf("%s points to a directory: %s", EnvFile, path)
		}
		log.Debugf("using config file from %s: %s", EnvFile, path)
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "tfdelta.yaml")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		log.Debugf("using config file: %s", path)
		return path, nil
	}

	return "", errors.New("no config file found in standard locations")
}
