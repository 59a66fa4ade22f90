// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/state"
)

// variables lists the names an expression may reference.
var variables = []string{"address", "module", "mode", "type", "name", "index", "id", "attrs"}

// Filter is a compiled set of expressions. A nil *Filter matches everything.
type Filter struct {
	sources  []string
	exprs    []hclsyntax.Expression
	useAttrs bool
}

// Compile parses exprs. Blank expressions are ignored, and when nothing
// remains Compile returns nil.
func Compile(exprs ...string) (*Filter, error) {
	f := &Filter{}
	for _, src := range exprs {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}

		expr, diags := hclsyntax.ParseExpression([]byte(src), "where", hcl.Pos{Line: 1, Column: 1})
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid filter %q: %s", src, diags.Error())
		}

		for _, traversal := range expr.Variables() {
			root := traversal.RootName()
			if !known(root) {
				return nil, fmt.Errorf("invalid filter %q: unknown variable %q (want one of %s)",
					src, root, strings.Join(variables, ", "))
			}
			if root == "attrs" {
				f.useAttrs = true
			}
		}

		f.sources = append(f.sources, src)
		f.exprs = append(f.exprs, expr)
	}

	if len(f.exprs) == 0 {
		return nil, nil
	}
	return f, nil
}

// String returns the expressions joined with &&.
func (f *Filter) String() string {
	if f == nil {
		return "true"
	}
	return strings.Join(f.sources, " && ")
}

// Match reports whether r satisfies every expression.
func (f *Filter) Match(r state.Resource) (bool, error) {
	if f == nil {
		return true, nil
	}

	ctx := &hcl.EvalContext{
		Variables: f.vars(r),
		Functions: functions(),
	}

	for i, expr := range f.exprs {
		val, diags := expr.Value(ctx)
		if diags.HasErrors() && absent(diags) {
			return false, nil
		}
		if diags.HasErrors() {
			return false, fmt.Errorf("filter %q on %s: %s", f.sources[i], r.Address, diags.Error())
		}
		if val.IsNull() || !val.IsWhollyKnown() {
			return false, nil
		}

		b, err := convert.Convert(val, cty.Bool)
		if err != nil {
			return false, fmt.Errorf("filter %q on %s: result is %s, not bool",
				f.sources[i], r.Address, val.Type().FriendlyName())
		}
		if b.False() {
			return false, nil
		}
	}
	return true, nil
}

// Apply returns the resources in rs that match, preserving order.
func (f *Filter) Apply(rs []state.Resource) ([]state.Resource, error) {
	if f == nil {
		return rs, nil
	}

	out := make([]state.Resource, 0, len(rs))
	for _, r := range rs {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	log.Tracef("filter %s kept %d of %d", f, len(out), len(rs))
	return out, nil
}

func (f *Filter) vars(r state.Resource) map[string]cty.Value {
	vars := map[string]cty.Value{
		"address": cty.StringVal(r.Address),
		"module":  cty.StringVal(r.Module),
		"mode":    cty.StringVal(r.Mode),
		"type":    cty.StringVal(r.Type),
		"name":    cty.StringVal(r.Name),
		"index":   cty.StringVal(unquote(r.IndexKey)),
		"id":      cty.StringVal(r.ID),
		"attrs":   cty.EmptyObjectVal,
	}
	if f.useAttrs && r.Attributes != "" {
		vars["attrs"] = attrsValue(r)
	}
	return vars
}

// attrsValue decodes the attribute JSON into a cty value. Undecodable
// attributes become null, which every comparison treats as a non-match.
func attrsValue(r state.Resource) cty.Value {
	raw := []byte(r.Attributes)
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		log.Debugf("attrs of %s: %v", r.Address, err)
		return cty.NullVal(cty.DynamicPseudoType)
	}
	val, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		log.Debugf("attrs of %s: %v", r.Address, err)
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return val
}

// absentSummaries are the diagnostics HCL raises when an attribute path does
// not exist on a resource.
var absentSummaries = map[string]bool{
	"Unsupported attribute":                   true,
	"Invalid index":                           true,
	"Attempt to get attribute from null value": true,
}

// absent reports whether every error in diags is a missing attribute path. A
// path that is not there reads as null, so the resource does not match.
func absent(diags hcl.Diagnostics) bool {
	for _, d := range diags.Errs() {
		var diag *hcl.Diagnostic
		if !errors.As(d, &diag) || !absentSummaries[diag.Summary] {
			return false
		}
	}
	return true
}

func unquote(key string) string {
	if s, err := strconv.Unquote(key); err == nil {
		return s
	}
	return key
}

func known(name string) bool {
	for _, v := range variables {
		if v == name {
			return true
		}
	}
	return false
}
