// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func root(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return dir
}

func TestPeek(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		files   map[string]string
		want    string
		wantErr bool
	}{
		{name: "empty", files: nil, want: ""},
		{name: "bare state", files: map[string]string{"terraform.tfstate": "{}"}, want: "local"},
		{name: "workspace dir", files: map[string]string{"terraform.tfstate.d/qa/terraform.tfstate": "{}"}, want: "local"},
		{name: "s3", files: map[string]string{".terraform/terraform.tfstate": `{"backend":{"type":"s3"}}`}, want: "s3"},
		{name: "cloud", files: map[string]string{".terraform/terraform.tfstate": `{"backend":{"type":"cloud"}}`}, want: "cloud"},
		{name: "providers only", files: map[string]string{".terraform/terraform.tfstate": `{"version":3}`}, want: "local"},
		{name: "garbage", files: map[string]string{".terraform/terraform.tfstate": `{`}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Peek(root(t, tt.files))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewBackend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	be, err := NewBackend(ctx, Options{RootDir: root(t, map[string]string{"terraform.tfstate": `{"serial":1}`})})
	require.NoError(t, err)
	assert.Equal(t, "local", be.Type())

	be, err = NewBackend(ctx, Options{RootDir: root(t, map[string]string{
		".terraform/terraform.tfstate": `{"backend":{"type":"s3","config":{"bucket":"b","key":"k"}}}`,
	})})
	require.NoError(t, err)
	assert.Equal(t, "s3", be.Type())

	be, err = NewBackend(ctx, Options{RootDir: t.TempDir(), Org: "acme", Workspace: "net", Host: "tfe.example"})
	require.NoError(t, err)
	assert.Equal(t, "remote", be.Type())
	assert.Equal(t, "tfe.example/acme/net", be.String())

	_, err = NewBackend(ctx, Options{RootDir: root(t, map[string]string{
		".terraform/terraform.tfstate": `{"backend":{"type":"consul"}}`,
	})})
	assert.ErrorIs(t, err, ErrUnsupported)
}
