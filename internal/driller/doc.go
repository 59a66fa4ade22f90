// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller picks values out of resource attribute documents with
// dotted paths such as "tags.env" or "ebs_block_device[0].volume_size".
package driller
