// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package state

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources(t *testing.T) {
	t.Parallel()
	doc, err := os.ReadFile("testdata/state.json")
	require.NoError(t, err)

	got, err := Resources(doc)
	require.NoError(t, err)

	var addrs []string
	for _, r := range got {
		addrs = append(addrs, r.Address)
	}
	assert.Equal(t, []string{
		"aws_s3_bucket.logs",
		"data.aws_caller_identity.current",
		`module.net.aws_subnet.private["a"]`,
		`module.net.aws_subnet.private["b"]`,
		"aws_instance.web[0]",
		"aws_instance.web[1]",
	}, addrs)

	bucket := got[0]
	assert.Equal(t, "managed", bucket.Mode)
	assert.Equal(t, "aws_s3_bucket", bucket.Type)
	assert.Equal(t, "logs", bucket.Name)
	assert.Equal(t, "acme-logs", bucket.ID)
	assert.Equal(t, `{"bucket":"acme-logs","id":"acme-logs","tags":{"app":"web","env":"prod"}}`, bucket.Attributes)

	subnet := got[2]
	assert.Equal(t, "module.net", subnet.Module)
	assert.Equal(t, `"a"`, subnet.IndexKey)
	assert.Equal(t, "0", got[4].IndexKey)
}

func TestResources_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: "nope"},
		{name: "no version", doc: `{"resources":[]}`},
		{name: "legacy version", doc: `{"version":3,"modules":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resources([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrNotState)
		})
	}
}

func TestResources_Empty(t *testing.T) {
	t.Parallel()
	got, err := Resources([]byte(`{"version":4,"serial":1,"resources":[]}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCanonicalIgnoresKeyOrder(t *testing.T) {
	t.Parallel()
	a, err := Resources([]byte(`{"version":4,"resources":[{"mode":"managed","type":"t","name":"n","instances":[{"attributes":{"b":1,"a":{"y":2,"x":1}}}]}]}`))
	require.NoError(t, err)
	b, err := Resources([]byte(`{"version":4,"resources":[{"mode":"managed","type":"t","name":"n","instances":[{"attributes":{"a":{"x":1,"y":2},"b":1}}]}]}`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestReadMeta(t *testing.T) {
	t.Parallel()
	doc, err := os.ReadFile("testdata/state.json")
	require.NoError(t, err)

	meta, err := ReadMeta(doc)
	require.NoError(t, err)
	assert.Equal(t, int64(12), meta.Serial)
	assert.Equal(t, "1.9.5", meta.TerraformVersion)
	assert.Equal(t, int64(4), meta.Version)

	_, err = ReadMeta([]byte(`[]`))
	assert.ErrorIs(t, err, ErrNotState)
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	r := Resource{Address: "aws_instance.web[0]", ID: "i-000", Attributes: `{"id":"i-000"}`}
	replaced := r
	replaced.ID = "i-999"
	retagged := r
	retagged.Attributes = `{"id":"i-000","tags":{"a":"b"}}`

	tests := []struct {
		identity     Identity
		sameReplaced bool
		sameRetagged bool
	}{
		{IdentityAddress, true, true},
		{IdentityInstance, false, true},
		{IdentityContent, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.identity), func(t *testing.T) {
			key := tt.identity.KeyFunc()
			assert.Equal(t, tt.sameReplaced, key(r) == key(replaced))
			assert.Equal(t, tt.sameRetagged, key(r) == key(retagged))
		})
	}
}

func TestParseIdentity(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "address", "ADDRESS"} {
		got, err := ParseIdentity(in)
		require.NoError(t, err)
		assert.Equal(t, IdentityAddress, got)
	}

	got, err := ParseIdentity("content")
	require.NoError(t, err)
	assert.Equal(t, IdentityContent, got)

	_, err = ParseIdentity("serial")
	assert.ErrorContains(t, err, "unknown identity")
}
