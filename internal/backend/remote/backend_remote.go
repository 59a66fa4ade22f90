// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-tfe"

	"github.com/tfctl/tfdelta/internal/cacheutil"
	"github.com/tfctl/tfdelta/internal/config"
	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/util"
)

// DefaultHost is used when neither flags, the backend block nor the config
// file name a host.
const DefaultHost = "app.terraform.io"

var (
	ErrOrganizationNotSet            = errors.New("organization is not set")
	ErrWorkspaceNotSet               = errors.New("workspace is not set")
	ErrWorkspaceNameAndPrefixBothSet = errors.New("both workspace name and prefix are set")
	ErrNoDownloadURL                 = errors.New("state version has no download URL")
)

// BackendRemote reads state history from HCP Terraform or Terraform
// Enterprise. It serves both remote and cloud blocks.
type BackendRemote struct {
	RootDir           string `json:"-"`
	EnvOverride       string `json:"-"`
	HostOverride      string `json:"-"`
	OrgOverride       string `json:"-"`
	WorkspaceOverride string `json:"-"`
	Limit             int    `json:"-"`
	Version           int    `json:"version"`
	TerraformVersion  string `json:"terraform_version"`
	Backend           struct {
		Type   string `json:"type"`
		Config struct {
			Hostname     string `json:"hostname"`
			Organization string `json:"organization"`
			Token        any    `json:"token"`
			Workspaces   struct {
				Name    string `json:"name"`
				Prefix  string `json:"prefix"`
				Project string `json:"project"`
			} `json:"workspaces"`
		} `json:"config"`
	} `json:"backend"`

	bare bool
	svc  tfe.StateVersions
}

// Option configures a BackendRemote.
type Option = func(be *BackendRemote) error

// NewBackendRemote builds a remote backend from
// rootDir/.terraform/terraform.tfstate, unless Bare is given.
func NewBackendRemote(rootDir string, options ...Option) (*BackendRemote, error) {
	be := &BackendRemote{RootDir: rootDir}
	be.Backend.Type = "remote"

	for _, opt := range options {
		if err := opt(be); err != nil {
			return nil, err
		}
	}
	if be.bare {
		return be, nil
	}
	if err := be.load(); err != nil {
		return nil, err
	}
	return be, nil
}

// Bare skips the backend block. Host, organization and workspace then come
// from overrides and the config file.
func Bare() Option {
	return func(be *BackendRemote) error {
		be.bare = true
		return nil
	}
}

// WithEnvOverride selects the workspace suffix used with a prefix block.
func WithEnvOverride(env string) Option {
	return func(be *BackendRemote) error {
		be.EnvOverride = env
		return nil
	}
}

// WithHost overrides the backend hostname.
func WithHost(host string) Option {
	return func(be *BackendRemote) error {
		be.HostOverride = host
		return nil
	}
}

// WithOrganization overrides the backend organization.
func WithOrganization(org string) Option {
	return func(be *BackendRemote) error {
		be.OrgOverride = org
		return nil
	}
}

// WithWorkspace overrides the workspace name outright.
func WithWorkspace(name string) Option {
	return func(be *BackendRemote) error {
		be.WorkspaceOverride = name
		return nil
	}
}

// WithLimit caps the number of versions listed, newest first.
func WithLimit(limit int) Option {
	return func(be *BackendRemote) error {
		be.Limit = limit
		return nil
	}
}

// WithStateVersions injects the state version service instead of building a
// client.
func WithStateVersions(svc tfe.StateVersions) Option {
	return func(be *BackendRemote) error {
		be.svc = svc
		return nil
	}
}

func (be *BackendRemote) load() error {
	data, err := os.ReadFile(filepath.Join(be.RootDir, ".terraform", "terraform.tfstate"))
	if err != nil {
		return fmt.Errorf("failed to read backend config: %w", err)
	}
	if err := json.Unmarshal(data, be); err != nil {
		return fmt.Errorf("failed to unmarshal backend config: %w", err)
	}
	if t := be.Backend.Type; t != "remote" && t != "cloud" {
		return fmt.Errorf("backend type is not remote or cloud: %s", t)
	}
	return nil
}

// Host resolves the hostname: --host, the backend block, the config file,
// then DefaultHost.
func (be *BackendRemote) Host() string {
	if be.HostOverride != "" {
		return be.HostOverride
	}
	if h := be.Backend.Config.Hostname; h != "" {
		return h
	}
	if h, err := config.GetString("host"); err == nil && h != "" {
		return h
	}
	return DefaultHost
}

// Organization resolves the organization: --org, the backend block, then the
// config file.
func (be *BackendRemote) Organization() (string, error) {
	if be.OrgOverride != "" {
		return be.OrgOverride, nil
	}
	if o := be.Backend.Config.Organization; o != "" {
		return o, nil
	}
	if o, err := config.GetString("org"); err == nil && o != "" {
		return o, nil
	}
	return "", fmt.Errorf("set --org or organization in the backend block: %w", ErrOrganizationNotSet)
}

// WorkspaceName resolves the workspace: --workspace, the block's name, or its
// prefix joined with the selected environment.
func (be *BackendRemote) WorkspaceName() (string, error) {
	if be.WorkspaceOverride != "" {
		return be.WorkspaceOverride, nil
	}

	ws := be.Backend.Config.Workspaces
	switch {
	case ws.Name != "" && ws.Prefix != "":
		return "", ErrWorkspaceNameAndPrefixBothSet
	case ws.Name != "":
		return ws.Name, nil
	case ws.Prefix != "":
		env := util.Workspace(be.RootDir, be.EnvOverride)
		if env == "" {
			return "", fmt.Errorf("prefix %q needs a selected workspace: %w", ws.Prefix, ErrWorkspaceNotSet)
		}
		return ws.Prefix + env, nil
	}

	// A cloud block selecting by tags still has a current workspace.
	if env := util.Workspace(be.RootDir, be.EnvOverride); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("set --workspace or workspaces.name in the backend block: %w", ErrWorkspaceNotSet)
}

// Token resolves the API token: TF_TOKEN_<host>, TF_TOKEN, the backend block,
// then ~/.terraform.d/credentials.tfrc.json.
func (be *BackendRemote) Token() (string, error) {
	host := be.Host()
	envHost := strings.ReplaceAll(strings.ReplaceAll(host, "-", "__"), ".", "_")
	for _, key := range []string{"TF_TOKEN_" + envHost, "TF_TOKEN"} {
		if token := os.Getenv(key); token != "" {
			return token, nil
		}
	}

	if token, _ := be.Backend.Config.Token.(string); token != "" {
		return token, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(home, ".terraform.d", "credentials.tfrc.json"))
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds struct {
		Credentials map[string]struct {
			Token string `json:"token"`
		} `json:"credentials"`
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("failed to unmarshal credentials file: %w", err)
	}
	if cred, ok := creds.Credentials[host]; ok {
		return cred.Token, nil
	}
	return "", fmt.Errorf("no token for %s", host)
}

func (be *BackendRemote) api() (tfe.StateVersions, error) {
	if be.svc != nil {
		return be.svc, nil
	}

	token, err := be.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	client, err := tfe.NewClient(&tfe.Config{
		Address: "https://" + be.Host(),
		Token:   token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TFE client: %w", err)
	}
	be.svc = client.StateVersions
	return be.svc, nil
}

// StateVersions pages through the workspace's state versions, newest first,
// stopping at the limit.
func (be *BackendRemote) StateVersions(ctx context.Context) ([]*tfe.StateVersion, error) {
	org, err := be.Organization()
	if err != nil {
		return nil, err
	}
	workspace, err := be.WorkspaceName()
	if err != nil {
		return nil, err
	}
	svc, err := be.api()
	if err != nil {
		return nil, err
	}

	pageSize := 100
	if be.Limit > 0 && be.Limit < pageSize {
		pageSize = be.Limit
	}
	options := tfe.StateVersionListOptions{
		Organization: org,
		Workspace:    workspace,
		ListOptions:  tfe.ListOptions{PageNumber: 1, PageSize: pageSize},
	}

	var results []*tfe.StateVersion
	for {
		page, err := svc.List(ctx, &options)
		if err != nil {
			return nil, FriendlyTFE(err, ErrorContext{
				Host:      be.Host(),
				Org:       org,
				Workspace: workspace,
				Operation: "list state versions",
			})
		}
		results = append(results, page.Items...)

		if be.Limit > 0 && len(results) >= be.Limit {
			results = results[:be.Limit]
			break
		}
		if page.Pagination == nil || page.Pagination.NextPage == 0 {
			break
		}
		log.Debugf("page: %d, total: %d", page.Pagination.CurrentPage, len(results))
		options.ListOptions.PageNumber = page.Pagination.NextPage
	}

	return results, nil
}

// StateBody downloads the raw state of sv. Bodies are cached by state
// version ID.
func (be *BackendRemote) StateBody(ctx context.Context, sv *tfe.StateVersion) ([]byte, error) {
	if sv.DownloadURL == "" {
		return nil, fmt.Errorf("%s: %w", sv.ID, ErrNoDownloadURL)
	}
	svc, err := be.api()
	if err != nil {
		return nil, err
	}
	org, _ := be.Organization()

	return cacheutil.Fetch(ctx, []string{"remote", be.Host(), org}, sv.ID,
		func(ctx context.Context) ([]byte, error) {
			body, err := svc.Download(ctx, sv.DownloadURL)
			if err != nil {
				return nil, FriendlyTFE(err, ErrorContext{
					Host:      be.Host(),
					Org:       org,
					Operation: "download state version " + sv.ID,
				})
			}
			return body, nil
		})
}

func (be *BackendRemote) String() string {
	org, _ := be.Organization()
	ws, _ := be.WorkspaceName()
	return fmt.Sprintf("%s/%s/%s", be.Host(), org, ws)
}

func (be *BackendRemote) Type() string {
	return be.Backend.Type
}
