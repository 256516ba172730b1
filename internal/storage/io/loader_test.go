package io

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

func TestConfigYAMLRepository_GetConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.ClientConfig
		expErr bool
		errMsg string
	}{
		"Valid config with API settings should load successfully": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`api_url: https://example.com/api
token_file: /tmp/token
`),
				},
			},
			path: "config.yaml",
			expCfg: model.ClientConfig{
				APIURL:    "https://example.com/api",
				TokenFile: "/tmp/token",
			},
		},
		"Polling overrides should be merged over the kind defaults": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`polling:
  autopilot:
    max_attempts: 10
  shop_action:
    initial_delay: 5s
  chat:
    initial_delay: 500ms
    max_delay: 4s
    multiplier: 2
`),
				},
			},
			path: "config.yaml",
			expCfg: model.ClientConfig{
				Policies: map[model.OperationKind]model.BackoffPolicy{
					model.OperationKindAutopilot: {
						InitialDelay: 2 * time.Second,
						MaxDelay:     10 * time.Second,
						Multiplier:   1.5,
						MaxAttempts:  10,
					},
					model.OperationKindShopAction: {
						InitialDelay: 5 * time.Second,
						MaxDelay:     5 * time.Second,
						Multiplier:   1,
						MaxAttempts:  30,
					},
					model.OperationKindChat: {
						InitialDelay: 500 * time.Millisecond,
						MaxDelay:     4 * time.Second,
						Multiplier:   2,
						MaxAttempts:  30,
					},
				},
			},
		},
		"Empty config should load successfully": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{
					Data: []byte(`---
`),
				},
			},
			path:   "empty.yaml",
			expCfg: model.ClientConfig{},
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading config file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
		"Invalid duration should return error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`polling:
  chat:
    initial_delay: soon
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "invalid initial_delay",
		},
		"Invalid policy should return error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`polling:
  autopilot:
    max_delay: 1s
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "max delay can't be lower than initial delay",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewConfigYAMLRepository(test.fs)
			gotCfg, err := repo.GetConfig(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				assert.Contains(err.Error(), test.errMsg)
			} else {
				require.NoError(err)
				assert.Equal(test.expCfg, gotCfg)
			}
		})
	}
}

func TestConfigYAMLRepository_GetConfigMissingFileIsNotExist(t *testing.T) {
	repo := NewConfigYAMLRepository(fstest.MapFS{})
	_, err := repo.GetConfig(context.Background(), "config.yaml")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestClientConfigPolicy(t *testing.T) {
	cfg := model.ClientConfig{
		Policies: map[model.OperationKind]model.BackoffPolicy{
			model.OperationKindChat: {InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1, MaxAttempts: 3},
		},
	}

	assert.Equal(t, 3, cfg.Policy(model.OperationKindChat).MaxAttempts)
	assert.Equal(t, model.DefaultAutopilotPolicy, cfg.Policy(model.OperationKindAutopilot))
}
