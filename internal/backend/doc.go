// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package backend finds the state history of an IaC root directory. It reads
// the backend block Terraform saved in .terraform/terraform.tfstate and hands
// back a Backend for local files, versioned S3 buckets or HCP Terraform.
package backend
