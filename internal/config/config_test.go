// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig sets TFDELTA_CFG_FILE to point to a test config file and
// resets the global Config so the next getter reloads it.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("TFDELTA_CFG_FILE", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "address", cfg.Data["identity"])
				cache, ok := cfg.Data["cache"].(map[string]interface{})
				require.True(t, ok, "cache should be a map")
				assert.Equal(t, 48, cache["clean"])
			},
		},
		{
			name:     "namespaced sections",
			testFile: "namespaced.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				watch, ok := cfg.Data["watch"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, "2m", watch["interval"])
			},
		},
		{
			name:     "invalid yaml",
			testFile: "invalid.yaml",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("TFDELTA_CFG_FILE", "/nonexistent/path/tfdelta.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_CfgFileIsDirectory(t *testing.T) {
	t.Setenv("TFDELTA_CFG_FILE", "testdata")
	Config = Type{}

	_, err := Load()
	assert.ErrorContains(t, err, "points to a directory")
}

func TestGetters(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	clean, err := GetInt("cache.clean")
	require.NoError(t, err)
	assert.Equal(t, 48, clean)

	identity, err := GetString("identity")
	require.NoError(t, err)
	assert.Equal(t, "address", identity)

	interval, err := GetDuration("interval")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, interval)

	_, err = GetString("cache")
	assert.ErrorContains(t, err, "not a string")

	_, err = GetInt("identity")
	assert.ErrorContains(t, err, "not an int")

	missing, err := GetString("nope", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", missing)

	_, err = GetString("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetters_Namespace(t *testing.T) {
	setupTestConfig(t, "namespaced.yaml")
	_, err := Load("watch")
	require.NoError(t, err)

	identity, err := GetString("identity")
	require.NoError(t, err)
	assert.Equal(t, "instance", identity, "namespaced key wins")

	interval, err := GetDuration("interval")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, interval)

	poll, err := GetDuration("poll")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, poll, "bare numbers are seconds")

	Config.Namespace = "replay"
	where, err := GetStringSlice("where")
	require.NoError(t, err)
	assert.Equal(t, []string{`type == "aws_instance"`, `startswith(address, "module.net")`}, where)

	def, err := GetStringSlice("missing", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, def)
}
