package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// ConfigYAMLRepository loads the client configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads the client configuration from a YAML file and returns a validated
// domain model. Polling policies only override the fields they set.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.ClientConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ClientConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ClientConfig{}, ctx.Err()
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ClientConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	mcfg, err := cfg.toModel()
	if err != nil {
		return model.ClientConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return mcfg, nil
}

// ClientConfig represents the YAML structure of the client configuration.
type ClientConfig struct {
	APIURL    string        `yaml:"api_url"`
	Token     string        `yaml:"token"`
	TokenFile string        `yaml:"token_file"`
	Polling   PollingConfig `yaml:"polling"`
}

// PollingConfig represents the YAML structure of the polling policies per operation kind.
type PollingConfig struct {
	Chat       *PolicyConfig `yaml:"chat,omitempty"`
	Autopilot  *PolicyConfig `yaml:"autopilot,omitempty"`
	ShopAction *PolicyConfig `yaml:"shop_action,omitempty"`
}

// PolicyConfig represents the YAML structure of a polling policy.
type PolicyConfig struct {
	InitialDelay string  `yaml:"initial_delay"`
	MaxDelay     string  `yaml:"max_delay"`
	Multiplier   float64 `yaml:"multiplier"`
	MaxAttempts  int     `yaml:"max_attempts"`
}

func (c ClientConfig) toModel() (model.ClientConfig, error) {
	cfg := model.ClientConfig{
		APIURL:    c.APIURL,
		Token:     c.Token,
		TokenFile: c.TokenFile,
	}

	policies := map[model.OperationKind]*PolicyConfig{
		model.OperationKindChat:       c.Polling.Chat,
		model.OperationKindAutopilot:  c.Polling.Autopilot,
		model.OperationKindShopAction: c.Polling.ShopAction,
	}
	for kind, pc := range policies {
		if pc == nil {
			continue
		}

		p, err := pc.toModel(model.DefaultPolicy(kind))
		if err != nil {
			return model.ClientConfig{}, fmt.Errorf("polling %s: %w", kind, err)
		}
		if cfg.Policies == nil {
			cfg.Policies = map[model.OperationKind]model.BackoffPolicy{}
		}
		cfg.Policies[kind] = p
	}

	return cfg, nil
}

func (p PolicyConfig) toModel(base model.BackoffPolicy) (model.BackoffPolicy, error) {
	if p.InitialDelay != "" {
		d, err := time.ParseDuration(p.InitialDelay)
		if err != nil {
			return model.BackoffPolicy{}, fmt.Errorf("invalid initial_delay: %w", err)
		}
		base.InitialDelay = d
		// Raising the initial delay alone raises the max delay with it.
		if p.MaxDelay == "" && base.MaxDelay < d {
			base.MaxDelay = d
		}
	}
	if p.MaxDelay != "" {
		d, err := time.ParseDuration(p.MaxDelay)
		if err != nil {
			return model.BackoffPolicy{}, fmt.Errorf("invalid max_delay: %w", err)
		}
		base.MaxDelay = d
	}
	if p.Multiplier != 0 {
		base.Multiplier = p.Multiplier
	}
	if p.MaxAttempts != 0 {
		base.MaxAttempts = p.MaxAttempts
	}

	if err := base.Validate(); err != nil {
		return model.BackoffPolicy{}, err
	}

	return base, nil
}
