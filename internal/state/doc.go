// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package state turns Terraform and OpenTofu state documents into comparable
// Resource values, decrypting encrypted OpenTofu state when needed, and
// defines the identity modes used to decide when two resources are the same.
package state
