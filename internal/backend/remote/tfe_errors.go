// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"errors"
	"fmt"
	"strings"

	tfe "github.com/hashicorp/go-tfe"
)

// ErrorContext names what was being attempted when an API call failed.
type ErrorContext struct {
	Host      string
	Org       string
	Workspace string
	Operation string
}

// FriendlyTFE turns go-tfe sentinel errors into actionable messages. The
// original error stays reachable through errors.Is.
func FriendlyTFE(err error, ctx ErrorContext) error {
	if err == nil {
		return nil
	}

	op := nonEmpty(ctx.Operation, "request")
	host := nonEmpty(ctx.Host, "<unknown>")

	switch {
	case errors.Is(err, tfe.ErrUnauthorized):
		return fmt.Errorf("%s on %s: authentication failed, set %s or TF_TOKEN: %w",
			op, host, hostEnvKey(ctx.Host), err)
	case errors.Is(err, tfe.ErrResourceNotFound) && ctx.Workspace != "":
		return fmt.Errorf("%s: workspace %q not found in organization %q on %s: %w",
			op, ctx.Workspace, nonEmpty(ctx.Org, "<unknown>"), host, err)
	case errors.Is(err, tfe.ErrResourceNotFound):
		return fmt.Errorf("%s: organization %q not found on %s: %w",
			op, nonEmpty(ctx.Org, "<unknown>"), host, err)
	}

	return fmt.Errorf("%s on %s for org=%q workspace=%q: %w", op, host, ctx.Org, ctx.Workspace, err)
}

func hostEnvKey(host string) string {
	if host == "" {
		return "TF_TOKEN_<host>"
	}
	return "TF_TOKEN_" + strings.ReplaceAll(strings.ReplaceAll(host, "-", "__"), ".", "_")
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
