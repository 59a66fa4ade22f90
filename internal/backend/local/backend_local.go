// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tfe "github.com/hashicorp/go-tfe"
	"github.com/tidwall/gjson"

	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/svutil"
	"github.com/tfctl/tfdelta/internal/util"
)

// BackendLocal reads state history from terraform.tfstate and its backups.
// https://developer.hashicorp.com/terraform/language/backend/local
type BackendLocal struct {
	RootDir          string `json:"-"`
	EnvOverride      string `json:"-"`
	Limit            int    `json:"-"`
	Version          int    `json:"version"`
	TerraformVersion string `json:"terraform_version"`
	Backend          struct {
		Type   string `json:"type"`
		Config struct {
			Path         string `json:"path"`
			WorkspaceDir string `json:"workspace_dir"`
		} `json:"config"`
	} `json:"backend"`
}

// Option configures a BackendLocal.
type Option = func(be *BackendLocal) error

// NewBackendLocal builds a local backend rooted at rootDir. A missing
// .terraform/terraform.tfstate is an empty backend {} block and is not an
// error.
func NewBackendLocal(rootDir string, options ...Option) (*BackendLocal, error) {
	be := &BackendLocal{RootDir: rootDir, Version: 4}
	be.Backend.Type = "local"

	if err := be.load(); err != nil {
		return nil, err
	}
	for _, opt := range options {
		if err := opt(be); err != nil {
			return nil, err
		}
	}
	return be, nil
}

// WithEnvOverride selects a workspace other than the one in
// .terraform/environment.
func WithEnvOverride(env string) Option {
	return func(be *BackendLocal) error {
		be.EnvOverride = env
		return nil
	}
}

// WithLimit caps the number of versions returned, newest first.
func WithLimit(limit int) Option {
	return func(be *BackendLocal) error {
		be.Limit = limit
		return nil
	}
}

func (be *BackendLocal) load() error {
	data, err := os.ReadFile(filepath.Join(be.RootDir, ".terraform", "terraform.tfstate"))
	if os.IsNotExist(err) {
		log.Debugf("no backend config in %s, assuming local", be.RootDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read backend config: %w", err)
	}

	if err := json.Unmarshal(data, be); err != nil {
		return fmt.Errorf("failed to unmarshal backend config: %w", err)
	}
	if be.Backend.Type != "local" {
		return fmt.Errorf("backend type is not local: %s", be.Backend.Type)
	}
	return nil
}

// stateDir is where the selected workspace keeps its state files.
func (be *BackendLocal) stateDir() (string, string) {
	base := be.RootDir
	if p := be.Backend.Config.Path; p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(be.RootDir, p)
		}
		base = filepath.Dir(p)
	}

	env := util.Workspace(be.RootDir, be.EnvOverride)
	if env == "" {
		return base, be.stateFile()
	}

	wsDir := be.Backend.Config.WorkspaceDir
	if wsDir == "" {
		wsDir = "terraform.tfstate.d"
	}
	if !filepath.IsAbs(wsDir) {
		wsDir = filepath.Join(be.RootDir, wsDir)
	}
	return filepath.Join(wsDir, env), "terraform.tfstate"
}

func (be *BackendLocal) stateFile() string {
	if p := be.Backend.Config.Path; p != "" {
		return filepath.Base(p)
	}
	return "terraform.tfstate"
}

// StateVersions returns the state file and its backups, newest serial first.
// Files that are not state documents are skipped.
func (be *BackendLocal) StateVersions(ctx context.Context) ([]*tfe.StateVersion, error) {
	dir, name := be.stateDir()
	files, err := filepath.Glob(filepath.Join(dir, name+"*"))
	if err != nil {
		return nil, err
	}

	var versions []*tfe.StateVersion
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if info, err := os.Stat(f); err != nil || info.IsDir() {
			continue
		}
		doc, err := os.ReadFile(f)
		if err != nil || !gjson.ValidBytes(doc) {
			log.Debugf("skipping %s", f)
			continue
		}
		if !gjson.GetBytes(doc, "serial").Exists() && !gjson.GetBytes(doc, "encrypted_data").Exists() {
			continue
		}

		sv := svutil.FileVersion(f)
		sv.ID = filepath.Base(f)
		versions = append(versions, sv)
	}

	sort.SliceStable(versions, func(i, j int) bool {
		if versions[i].Serial != versions[j].Serial {
			return versions[i].Serial > versions[j].Serial
		}
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})

	if be.Limit > 0 && len(versions) > be.Limit {
		versions = versions[:be.Limit]
	}
	return versions, nil
}

// StateBody reads the file behind sv.
func (be *BackendLocal) StateBody(_ context.Context, sv *tfe.StateVersion) ([]byte, error) {
	path, ok := svutil.LocalPath(sv)
	if !ok {
		dir, _ := be.stateDir()
		path = filepath.Join(dir, sv.ID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return data, nil
}

func (be *BackendLocal) String() string {
	dir, name := be.stateDir()
	return strings.TrimPrefix(filepath.Join(dir, name), be.RootDir+string(filepath.Separator))
}

func (be *BackendLocal) Type() string {
	return be.Backend.Type
}
