// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotState is returned when a document is not a Terraform state.
var ErrNotState = errors.New("document is not a terraform state")

// Resource is one resource instance in a state document. All fields are
// strings so that Resource is comparable and can be diffed directly.
type Resource struct {
	Address  string `json:"address" yaml:"address"`
	Module   string `json:"module,omitempty" yaml:"module,omitempty"`
	Mode     string `json:"mode" yaml:"mode"`
	Type     string `json:"type" yaml:"type"`
	Name     string `json:"name" yaml:"name"`
	IndexKey string `json:"index_key,omitempty" yaml:"index_key,omitempty"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	// Attributes is the instance attribute object as compact JSON with sorted
	// keys.
	Attributes string `json:"-" yaml:"-"`
}

func (r Resource) String() string {
	return r.Address
}

// Meta is the header of a state document.
type Meta struct {
	Version          int64
	TerraformVersion string
	Serial           int64
	Lineage          string
}

// ReadMeta extracts the document header.
func ReadMeta(doc []byte) (Meta, error) {
	if !gjson.ValidBytes(doc) {
		return Meta{}, ErrNotState
	}
	root := gjson.ParseBytes(doc)
	if !root.Get("version").Exists() {
		return Meta{}, ErrNotState
	}
	return Meta{
		Version:          root.Get("version").Int(),
		TerraformVersion: root.Get("terraform_version").String(),
		Serial:           root.Get("serial").Int(),
		Lineage:          root.Get("lineage").String(),
	}, nil
}

// Resources flattens resources[].instances[] of a plaintext state document
// into one Resource per instance, in document order.
func Resources(doc []byte) ([]Resource, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNotState)
	}
	root := gjson.ParseBytes(doc)
	if !root.Get("version").Exists() {
		return nil, fmt.Errorf("%w: missing version", ErrNotState)
	}
	if root.Get("version").Int() < 4 {
		return nil, fmt.Errorf("%w: unsupported state version %d", ErrNotState, root.Get("version").Int())
	}

	var out []Resource
	for _, resource := range root.Get("resources").Array() {
		common := Resource{
			Module: resource.Get("module").String(),
			Mode:   resource.Get("mode").String(),
			Type:   resource.Get("type").String(),
			Name:   resource.Get("name").String(),
		}
		if common.Mode == "" {
			common.Mode = "managed"
		}

		for _, instance := range resource.Get("instances").Array() {
			r := common
			r.IndexKey = indexKey(instance.Get("index_key"))
			r.Address = address(r)
			r.ID = instance.Get("attributes.id").String()
			r.Attributes = canonical(instance.Get("attributes"))
			out = append(out, r)
		}
	}

	return out, nil
}

// address renders a Terraform resource instance address, e.g.
// module.net.data.aws_subnet.private["a"].
func address(r Resource) string {
	var b strings.Builder
	if r.Module != "" {
		b.WriteString(r.Module)
		b.WriteByte('.')
	}
	if r.Mode == "data" {
		b.WriteString("data.")
	}
	b.WriteString(r.Type)
	b.WriteByte('.')
	b.WriteString(r.Name)
	if r.IndexKey != "" {
		b.WriteByte('[')
		b.WriteString(r.IndexKey)
		b.WriteByte(']')
	}
	return b.String()
}

// indexKey renders count indexes bare and for_each keys quoted.
func indexKey(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		return strconv.FormatInt(v.Int(), 10)
	case gjson.String:
		return strconv.Quote(v.String())
	default:
		return ""
	}
}

// canonical returns v as compact JSON with object keys sorted, so equal
// attribute sets compare equal regardless of how they were written.
func canonical(v gjson.Result) string {
	if !v.Exists() {
		return ""
	}
	pretty := gjson.Get(v.Raw, `@pretty:{"sortKeys":true}`)
	return gjson.Get(pretty.Raw, "@ugly").Raw
}
