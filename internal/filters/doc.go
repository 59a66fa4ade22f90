// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects the resources that take part in a replay.
//
// A filter is an HCL expression evaluated once per resource. It must produce a
// bool; null and unknown results are treated as false. The expression sees
// these variables:
//
//   - address : the full instance address, e.g. module.net.aws_subnet.a["x"]
//   - module  : the module path, "" for the root module
//   - mode    : "managed" or "data"
//   - type    : the resource type
//   - name    : the resource name
//   - index   : the count index or for_each key, "" when neither
//   - id      : the provider id attribute
//   - attrs   : the instance attributes as an object
//
// Besides the usual HCL operators, the Terraform style functions lower, upper,
// contains, length, regex, try and can are available along with
// startswith(s, prefix), endswith(s, suffix), strcontains(s, sub) and
// matches(s, pattern).
//
// Examples:
//
//   - type == "aws_instance"
//   - startswith(address, "module.net.")
//   - mode == "managed" && !endswith(type, "_policy")
//   - try(attrs.tags.env, "") == "prod"
//
// Several expressions can be given; a resource must match all of them.
package filters
