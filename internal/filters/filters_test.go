// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/tfdelta/internal/state"
)

var (
	web = state.Resource{
		Address:    "aws_instance.web[0]",
		Mode:       "managed",
		Type:       "aws_instance",
		Name:       "web",
		IndexKey:   "0",
		ID:         "i-000",
		Attributes: `{"id":"i-000","instance_type":"t3.micro","tags":{"env":"prod"}}`,
	}
	subnet = state.Resource{
		Address:    `module.net.aws_subnet.private["a"]`,
		Module:     "module.net",
		Mode:       "managed",
		Type:       "aws_subnet",
		Name:       "private",
		IndexKey:   `"a"`,
		ID:         "subnet-0a",
		Attributes: `{"id":"subnet-0a","cidr_block":"10.0.1.0/24"}`,
	}
	caller = state.Resource{
		Address:    "data.aws_caller_identity.current",
		Mode:       "data",
		Type:       "aws_caller_identity",
		Name:       "current",
		ID:         "123456789012",
		Attributes: `{"id":"123456789012"}`,
	}
)

func TestMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr string
		want []bool // web, subnet, caller
	}{
		{`type == "aws_instance"`, []bool{true, false, false}},
		{`mode == "data"`, []bool{false, false, true}},
		{`startswith(address, "module.net.")`, []bool{false, true, false}},
		{`endswith(type, "_identity")`, []bool{false, false, true}},
		{`strcontains(lower(name), "RIV") || strcontains(upper(name), "RIV")`, []bool{false, true, false}},
		{`matches(id, "^(i|subnet)-0")`, []bool{true, true, false}},
		{`index == "a"`, []bool{false, true, false}},
		{`index == "0"`, []bool{true, false, false}},
		{`module == ""`, []bool{true, false, true}},
		{`try(attrs.tags.env, "") == "prod"`, []bool{true, false, false}},
		{`attrs.tags.env == "prod"`, []bool{true, false, false}},
		{`attrs.tags["env"] == "prod"`, []bool{true, false, false}},
		{`attrs.cidr_block == "10.0.1.0/24"`, []bool{false, true, false}},
		{`can(regex("^10\\.", attrs.cidr_block))`, []bool{false, true, false}},
		{`contains(["web", "current"], name)`, []bool{true, false, true}},
		{`"true"`, []bool{true, true, true}},
		{`null`, []bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			f, err := Compile(tt.expr)
			require.NoError(t, err)
			for i, r := range []state.Resource{web, subnet, caller} {
				got, err := f.Match(r)
				require.NoError(t, err)
				assert.Equal(t, tt.want[i], got, r.Address)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr    string
		wantErr string
	}{
		{`type ==`, "invalid filter"},
		{`resource == "x"`, `unknown variable "resource"`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			f, err := Compile(tt.expr)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Nil(t, f)
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	t.Parallel()
	f, err := Compile(`upper(name)`)
	require.NoError(t, err)
	_, err = f.Match(web)
	assert.ErrorContains(t, err, "not bool")

	f, err = Compile(`name + 1 == 2`)
	require.NoError(t, err)
	_, err = f.Match(subnet)
	assert.ErrorContains(t, err, subnet.Address)

	f, err = Compile(`matches(name, "(")`)
	require.NoError(t, err)
	_, err = f.Match(web)
	assert.Error(t, err)
}

func TestNilFilter(t *testing.T) {
	t.Parallel()
	f, err := Compile("", "  ")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, "true", f.String())

	ok, err := f.Match(web)
	require.NoError(t, err)
	assert.True(t, ok)

	all := []state.Resource{web, subnet}
	got, err := f.Apply(all)
	require.NoError(t, err)
	assert.Equal(t, all, got)
}

func TestApply(t *testing.T) {
	t.Parallel()
	f, err := Compile(`mode == "managed"`, `!startswith(address, "module.")`)
	require.NoError(t, err)
	assert.Equal(t, `mode == "managed" && !startswith(address, "module.")`, f.String())

	got, err := f.Apply([]state.Resource{web, subnet, caller})
	require.NoError(t, err)
	assert.Equal(t, []state.Resource{web}, got)
}
