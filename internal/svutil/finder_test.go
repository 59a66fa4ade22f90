// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package svutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-tfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeStateVersions returns four versions, newest first.
func makeStateVersions() []*tfe.StateVersion {
	return []*tfe.StateVersion{
		{ID: "sv-004", Serial: 104},
		{ID: "sv-003", Serial: 103},
		{ID: "sv-002", Serial: 102},
		{ID: "sv-alpha-001", Serial: 101},
	}
}

func ids(versions []*tfe.StateVersion) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.ID)
	}
	return out
}

func TestResolve(t *testing.T) {
	versions := makeStateVersions()

	tests := []struct {
		name    string
		specs   []string
		wantIDs []string
		errMsg  string
	}{
		{name: "no specs is current", wantIDs: []string{"sv-004"}},
		{name: "csv", specs: []string{"CSV~0", "csv~2"}, wantIDs: []string{"sv-004", "sv-002"}},
		{name: "relative", specs: []string{"0", "-1", "-3"}, wantIDs: []string{"sv-004", "sv-003", "sv-alpha-001"}},
		{name: "serial", specs: []string{"102"}, wantIDs: []string{"sv-002"}},
		{name: "id prefix", specs: []string{"sv-alpha"}, wantIDs: []string{"sv-alpha-001"}},
		{name: "csv out of range", specs: []string{"CSV~9"}, errMsg: "out of range"},
		{name: "csv negative", specs: []string{"CSV~-1"}, errMsg: "out of range"},
		{name: "csv malformed", specs: []string{"CSV~1~2"}, errMsg: "invalid CSV spec format"},
		{name: "csv not numeric", specs: []string{"CSV~x"}, errMsg: "invalid CSV index"},
		{name: "relative out of range", specs: []string{"-4"}, errMsg: "out of range"},
		{name: "unknown serial", specs: []string{"999"}, errMsg: "serial 999"},
		{name: "unknown id", specs: []string{"sv-zzz"}, errMsg: "ID prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(versions, tt.specs...)
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	_, err := Resolve(nil)
	assert.ErrorIs(t, err, ErrNoVersions)
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terraform.tfstate")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":4,"serial":42}`), 0o600))

	got, err := Resolve(makeStateVersions(), path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, path, got[0].ID)
	assert.Equal(t, int64(42), got[0].Serial)

	p, ok := LocalPath(got[0])
	assert.True(t, ok)
	assert.Equal(t, path, p)

	_, ok = LocalPath(&tfe.StateVersion{JSONDownloadURL: "https://archivist.example/sv"})
	assert.False(t, ok)
	_, ok = LocalPath(nil)
	assert.False(t, ok)
}

func TestRange(t *testing.T) {
	versions := makeStateVersions()

	tests := []struct {
		name    string
		from    string
		to      string
		wantIDs []string
		errMsg  string
	}{
		{name: "defaults span everything", wantIDs: []string{"sv-alpha-001", "sv-002", "sv-003", "sv-004"}},
		{name: "from serial", from: "102", wantIDs: []string{"sv-002", "sv-003", "sv-004"}},
		{name: "bounded", from: "CSV~2", to: "-1", wantIDs: []string{"sv-002", "sv-003"}},
		{name: "single", from: "103", to: "103", wantIDs: []string{"sv-003"}},
		{name: "reversed", from: "CSV~0", to: "CSV~2", errMsg: "newer than"},
		{name: "bad end", to: "nope", errMsg: "ID prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Range(versions, tt.from, tt.to)
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestRange_Files(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tfstate")
	b := filepath.Join(dir, "b.tfstate")
	require.NoError(t, os.WriteFile(a, []byte(`{"serial":1}`), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(`{"serial":2}`), 0o600))

	got, err := Range(nil, a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, ids(got))

	_, err = Range(nil, "", "")
	assert.ErrorIs(t, err, ErrNoVersions)
}

func TestBetween(t *testing.T) {
	versions := makeStateVersions()

	got, err := Between(versions, versions[2], versions[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"sv-002", "sv-003"}, ids(got))

	_, err = Between(versions, versions[0], versions[2])
	assert.ErrorContains(t, err, "sv-004 (serial 104) is newer than sv-002")

	outside := FileVersion(filepath.Join(t.TempDir(), "x.tfstate"))
	got, err = Between(versions, outside, versions[0])
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
