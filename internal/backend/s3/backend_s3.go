// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hashicorp/go-tfe"
	"github.com/tidwall/gjson"

	awsx "github.com/tfctl/tfdelta/internal/aws"
	"github.com/tfctl/tfdelta/internal/cacheutil"
	"github.com/tfctl/tfdelta/internal/log"
	"github.com/tfctl/tfdelta/internal/util"
)

// API is the slice of the S3 client the backend uses.
type API interface {
	s3v2.ListObjectVersionsAPIClient
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// BackendS3 reads state history from the object versions of a versioned
// bucket.
// https://developer.hashicorp.com/terraform/language/backend/s3
type BackendS3 struct {
	RootDir          string `json:"-"`
	EnvOverride      string `json:"-"`
	Limit            int    `json:"-"`
	Version          int    `json:"version"`
	TerraformVersion string `json:"terraform_version"`
	Backend          struct {
		Type   string `json:"type"`
		Config struct {
			Bucket         string `json:"bucket"`
			Key            string `json:"key"`
			Prefix         string `json:"workspace_key_prefix"`
			Region         string `json:"region"`
			Profile        string `json:"profile"`
			Endpoint       string `json:"endpoint"`
			ForcePathStyle bool   `json:"force_path_style"`
			UsePathStyle   bool   `json:"use_path_style"`
			MaxRetries     int    `json:"max_retries"`
			Endpoints      struct {
				S3 string `json:"s3"`
			} `json:"endpoints"`
		} `json:"config"`
	} `json:"backend"`

	client API
}

// Option configures a BackendS3.
type Option = func(be *BackendS3) error

// NewBackendS3 builds an s3 backend from rootDir/.terraform/terraform.tfstate.
func NewBackendS3(rootDir string, options ...Option) (*BackendS3, error) {
	be := &BackendS3{RootDir: rootDir}
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
	return func(be *BackendS3) error {
		be.EnvOverride = env
		return nil
	}
}

// WithLimit caps the number of versions returned, newest first.
func WithLimit(limit int) Option {
	return func(be *BackendS3) error {
		be.Limit = limit
		return nil
	}
}

// WithClient injects the S3 client instead of building one from the backend
// block.
func WithClient(client API) Option {
	return func(be *BackendS3) error {
		be.client = client
		return nil
	}
}

func (be *BackendS3) load() error {
	data, err := os.ReadFile(filepath.Join(be.RootDir, ".terraform", "terraform.tfstate"))
	if err != nil {
		return fmt.Errorf("failed to read backend config: %w", err)
	}
	if err := json.Unmarshal(data, be); err != nil {
		return fmt.Errorf("failed to unmarshal backend config: %w", err)
	}
	if be.Backend.Type != "s3" {
		return fmt.Errorf("backend type is not s3: %s", be.Backend.Type)
	}
	return nil
}

// ObjectKey is the key holding the selected workspace's state. Non-default
// workspaces live under workspace_key_prefix, which defaults to "env:".
func (be *BackendS3) ObjectKey() string {
	cfg := be.Backend.Config
	env := util.Workspace(be.RootDir, be.EnvOverride)
	if env == "" {
		return cfg.Key
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "env:"
	}
	return path.Join(prefix, env, cfg.Key)
}

func (be *BackendS3) api(ctx context.Context) (API, error) {
	if be.client != nil {
		return be.client, nil
	}

	cfg := be.Backend.Config
	endpoint := cfg.Endpoints.S3
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	client, err := awsx.Client(ctx,
		awsx.WithProfile(cfg.Profile),
		awsx.WithRegion(cfg.Region),
		awsx.WithMaxAttempts(cfg.MaxRetries),
		awsx.WithEndpoint(endpoint),
		awsx.WithPathStyle(cfg.UsePathStyle || cfg.ForcePathStyle),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	be.client = client
	return client, nil
}

// StateVersions lists the object versions of the state key, newest first.
// Versions older than the most recent delete marker belong to a previous
// incarnation of the workspace and are dropped.
func (be *BackendS3) StateVersions(ctx context.Context) ([]*tfe.StateVersion, error) {
	client, err := be.api(ctx)
	if err != nil {
		return nil, err
	}

	key := be.ObjectKey()
	paginator := s3v2.NewListObjectVersionsPaginator(client, &s3v2.ListObjectVersionsInput{
		Bucket: awsv2.String(be.Backend.Config.Bucket),
		Prefix: awsv2.String(key),
	})

	var versions []types.ObjectVersion
	var lastDelete *types.DeleteMarkerEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list object versions: %w", err)
		}
		// The prefix also matches lock and sibling objects.
		for i, d := range page.DeleteMarkers {
			if awsv2.ToString(d.Key) != key || d.LastModified == nil {
				continue
			}
			if lastDelete == nil || d.LastModified.After(*lastDelete.LastModified) {
				lastDelete = &page.DeleteMarkers[i]
			}
		}
		for _, v := range page.Versions {
			if awsv2.ToString(v.Key) == key && v.VersionId != nil && v.LastModified != nil {
				versions = append(versions, v)
			}
		}
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].LastModified.After(*versions[j].LastModified)
	})

	var result []*tfe.StateVersion
	for _, v := range versions {
		if lastDelete != nil && v.LastModified.Before(*lastDelete.LastModified) {
			log.Debugf("dropping %s: older than delete marker", awsv2.ToString(v.VersionId))
			break
		}
		if be.Limit > 0 && len(result) >= be.Limit {
			break
		}

		sv := &tfe.StateVersion{
			ID:        awsv2.ToString(v.VersionId),
			CreatedAt: *v.LastModified,
		}
		body, err := be.StateBody(ctx, sv)
		if err != nil {
			return nil, err
		}
		sv.Serial = gjson.GetBytes(body, "serial").Int()
		result = append(result, sv)
	}

	return result, nil
}

// StateBody downloads one object version. Bodies are cached by version ID.
func (be *BackendS3) StateBody(ctx context.Context, sv *tfe.StateVersion) ([]byte, error) {
	client, err := be.api(ctx)
	if err != nil {
		return nil, err
	}

	key := be.ObjectKey()
	return cacheutil.Fetch(ctx, []string{"s3", be.Backend.Config.Bucket, key}, sv.ID,
		func(ctx context.Context) ([]byte, error) {
			out, err := client.GetObject(ctx, &s3v2.GetObjectInput{
				Bucket:    awsv2.String(be.Backend.Config.Bucket),
				Key:       awsv2.String(key),
				VersionId: awsv2.String(sv.ID),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get s3://%s/%s@%s: %w", be.Backend.Config.Bucket, key, sv.ID, err)
			}
			defer out.Body.Close()

			data, err := io.ReadAll(out.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read S3 object body: %w", err)
			}
			return data, nil
		})
}

func (be *BackendS3) String() string {
	return "s3://" + be.Backend.Config.Bucket + "/" + be.ObjectKey()
}

func (be *BackendS3) Type() string {
	return be.Backend.Type
}
