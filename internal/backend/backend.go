// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-tfe"
	"github.com/tidwall/gjson"

	"github.com/tfctl/tfdelta/internal/backend/local"
	"github.com/tfctl/tfdelta/internal/backend/remote"
	"github.com/tfctl/tfdelta/internal/backend/s3"
	"github.com/tfctl/tfdelta/internal/log"
)

// ErrUnsupported is returned for backend types without a history reader.
var ErrUnsupported = errors.New("unsupported backend type")

// Backend lists and downloads state versions.
type Backend interface {
	// StateVersions returns the available versions, newest first.
	StateVersions(ctx context.Context) ([]*tfe.StateVersion, error)
	// StateBody returns the raw state document of sv.
	StateBody(ctx context.Context, sv *tfe.StateVersion) ([]byte, error)
	String() string
	Type() string
}

// Options are the command line overrides applied to every backend.
type Options struct {
	RootDir   string
	Env       string
	Host      string
	Org       string
	Workspace string
	Limit     int
}

// NewBackend detects the backend configured for opts.RootDir. A directory
// with no .terraform but a terraform.tfstate is local. A directory with
// neither is a bare remote when --workspace was given.
func NewBackend(ctx context.Context, opts Options) (Backend, error) {
	typ, perr := Peek(opts.RootDir)
	if perr != nil {
		return nil, perr
	}
	log.Debugf("backend type %q in %s", typ, opts.RootDir)

	var (
		be  Backend
		err error
	)
	switch typ {
	case "local":
		be, err = asBackend(local.NewBackendLocal(opts.RootDir,
			local.WithEnvOverride(opts.Env),
			local.WithLimit(opts.Limit),
		))
	case "s3":
		be, err = asBackend(s3.NewBackendS3(opts.RootDir,
			s3.WithEnvOverride(opts.Env),
			s3.WithLimit(opts.Limit),
		))
	case "remote", "cloud", "":
		remoteOpts := []remote.Option{
			remote.WithEnvOverride(opts.Env),
			remote.WithHost(opts.Host),
			remote.WithOrganization(opts.Org),
			remote.WithWorkspace(opts.Workspace),
			remote.WithLimit(opts.Limit),
		}
		if typ == "" {
			remoteOpts = append(remoteOpts, remote.Bare())
		}
		be, err = asBackend(remote.NewBackendRemote(opts.RootDir, remoteOpts...))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, typ)
	}
	return be, err
}

// asBackend keeps a failed constructor's typed nil out of the interface.
func asBackend[B Backend](be B, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return be, nil
}

// Peek returns the backend type configured in rootDir. It is "local" for a
// root with only terraform.tfstate and "" for a root with no state at all.
func Peek(rootDir string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(rootDir, ".terraform", "terraform.tfstate"))
	if err == nil {
		if !gjson.ValidBytes(raw) {
			return "", fmt.Errorf("can't peek: invalid %s", filepath.Join(".terraform", "terraform.tfstate"))
		}
		if typ := gjson.GetBytes(raw, "backend.type").String(); typ != "" {
			return typ, nil
		}
		return "local", nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("can't peek: %w", err)
	}

	if exists(filepath.Join(rootDir, "terraform.tfstate")) ||
		exists(filepath.Join(rootDir, ".terraform", "environment")) ||
		exists(filepath.Join(rootDir, "terraform.tfstate.d")) {
		return "local", nil
	}
	return "", nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
