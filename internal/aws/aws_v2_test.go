// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	t.Parallel()
	o := apply([]Option{
		WithProfile("ops"),
		WithRegion("eu-west-1"),
		WithMaxAttempts(5),
		WithEndpoint("http://localhost:9000"),
		WithPathStyle(true),
	})

	assert.Equal(t, options{
		profile:     "ops",
		region:      "eu-west-1",
		maxAttempts: 5,
		endpoint:    "http://localhost:9000",
		pathStyle:   true,
	}, o)

	assert.Equal(t, options{}, apply(nil))
}

func TestS3Options(t *testing.T) {
	t.Parallel()
	var so s3v2.Options
	s3Options(options{endpoint: "http://localhost:9000", pathStyle: true})(&so)
	assert.Equal(t, "http://localhost:9000", awsv2.ToString(so.BaseEndpoint))
	assert.True(t, so.UsePathStyle)

	so = s3v2.Options{}
	s3Options(options{})(&so)
	assert.Nil(t, so.BaseEndpoint)
	assert.False(t, so.UsePathStyle)
}

func TestLoadAWSConfig(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("us-west-2"), WithMaxAttempts(2))
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
	require.NotNil(t, cfg.Retryer)
	assert.Equal(t, 2, cfg.Retryer().MaxAttempts())

	client := NewS3(cfg, WithEndpoint("http://localhost:9000"), WithPathStyle(true))
	assert.NotNil(t, client)
	assert.Equal(t, "us-west-2", client.Options().Region)
	assert.True(t, client.Options().UsePathStyle)
}
