// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hashicorp/go-tfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	versions []types.ObjectVersion
	markers  []types.DeleteMarkerEntry
	bodies   map[string]string
	gets     int
}

func (f *fakeS3) ListObjectVersions(_ context.Context, in *s3v2.ListObjectVersionsInput, _ ...func(*s3v2.Options)) (*s3v2.ListObjectVersionsOutput, error) {
	var out s3v2.ListObjectVersionsOutput
	for _, v := range f.versions {
		if strings.HasPrefix(awsv2.ToString(v.Key), awsv2.ToString(in.Prefix)) {
			out.Versions = append(out.Versions, v)
		}
	}
	for _, d := range f.markers {
		if strings.HasPrefix(awsv2.ToString(d.Key), awsv2.ToString(in.Prefix)) {
			out.DeleteMarkers = append(out.DeleteMarkers, d)
		}
	}
	out.IsTruncated = awsv2.Bool(false)
	return &out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.gets++
	body, ok := f.bodies[awsv2.ToString(in.VersionId)]
	if !ok {
		return nil, fmt.Errorf("no such version %s", awsv2.ToString(in.VersionId))
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func version(key, id string, at time.Time) types.ObjectVersion {
	return types.ObjectVersion{Key: awsv2.String(key), VersionId: awsv2.String(id), LastModified: awsv2.Time(at)}
}

func newRoot(t *testing.T, config string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".terraform"), 0o755))
	doc := `{"version":3,"terraform_version":"1.9.5","backend":{"type":"s3","config":` + config + `}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".terraform", "terraform.tfstate"), []byte(doc), 0o600))
	return root
}

func TestStateVersions(t *testing.T) {
	t.Setenv("TFDELTA_CACHE", "0")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	key := "net/terraform.tfstate"

	fake := &fakeS3{
		versions: []types.ObjectVersion{
			version(key, "v1", base),
			version(key, "v3", base.Add(2*time.Hour)),
			version(key, "v2", base.Add(time.Hour)),
			version(key+".tflock", "lock", base.Add(3*time.Hour)),
			version(key, "v0", base.Add(-time.Hour)),
		},
		markers: []types.DeleteMarkerEntry{
			{Key: awsv2.String(key), LastModified: awsv2.Time(base.Add(-30 * time.Minute))},
			{Key: awsv2.String(key + ".tflock"), LastModified: awsv2.Time(base.Add(4 * time.Hour))},
		},
		bodies: map[string]string{
			"v0": `{"serial":99}`,
			"v1": `{"serial":1}`,
			"v2": `{"serial":2}`,
			"v3": `{"serial":3}`,
		},
	}

	root := newRoot(t, `{"bucket":"acme-state","key":"net/terraform.tfstate","region":"us-east-1","endpoints":null}`)
	be, err := NewBackendS3(root, WithClient(fake))
	require.NoError(t, err)
	assert.Equal(t, "s3", be.Type())
	assert.Equal(t, "s3://acme-state/net/terraform.tfstate", be.String())

	versions, err := be.StateVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, want := range []struct {
		id     string
		serial int64
	}{{"v3", 3}, {"v2", 2}, {"v1", 1}} {
		assert.Equal(t, want.id, versions[i].ID)
		assert.Equal(t, want.serial, versions[i].Serial)
	}

	fake.gets = 0
	limited, err := NewBackendS3(root, WithClient(fake), WithLimit(1))
	require.NoError(t, err)
	versions, err = limited.StateVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, fake.gets, "only versions inside the limit are downloaded")
}

func TestStateBody_Cached(t *testing.T) {
	t.Setenv("TFDELTA_CACHE_DIR", t.TempDir())
	t.Setenv("TFDELTA_CACHE", "")

	fake := &fakeS3{bodies: map[string]string{"v1": `{"serial":1}`}}
	be, err := NewBackendS3(newRoot(t, `{"bucket":"b","key":"k"}`), WithClient(fake))
	require.NoError(t, err)

	versions, err := be.StateVersions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)

	sv := versionStub("v1")
	for range 2 {
		body, err := be.StateBody(context.Background(), sv)
		require.NoError(t, err)
		assert.JSONEq(t, `{"serial":1}`, string(body))
	}
	assert.Equal(t, 1, fake.gets)

	_, err = be.StateBody(context.Background(), versionStub("missing"))
	assert.ErrorContains(t, err, "s3://b/k@missing")
}

func TestObjectKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		config string
		env    string
		want   string
	}{
		{name: "default workspace", config: `{"bucket":"b","key":"app.tfstate"}`, want: "app.tfstate"},
		{name: "default prefix", config: `{"bucket":"b","key":"app.tfstate"}`, env: "prod", want: "env:/prod/app.tfstate"},
		{name: "custom prefix", config: `{"bucket":"b","key":"app.tfstate","workspace_key_prefix":"ws"}`, env: "qa", want: "ws/qa/app.tfstate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			be, err := NewBackendS3(newRoot(t, tt.config), WithEnvOverride(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, be.ObjectKey())
		})
	}
}

func TestNewBackendS3_Errors(t *testing.T) {
	t.Parallel()
	_, err := NewBackendS3(t.TempDir())
	assert.ErrorContains(t, err, "failed to read backend config")

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".terraform"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".terraform", "terraform.tfstate"),
		[]byte(`{"backend":{"type":"remote"}}`), 0o600))
	_, err = NewBackendS3(root)
	assert.ErrorContains(t, err, "not s3")
}

func versionStub(id string) *tfe.StateVersion {
	return &tfe.StateVersion{ID: id}
}
