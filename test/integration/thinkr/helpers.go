package thinkr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/SailingSF/thinkr-web-app-sub000/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "thinkr"
	}

	// go test changes the CWD to the test package directory, relative paths would
	// not point to the built binary.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("THINKR_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("thinkr binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "THINKR_INTEGRATION"
		envBinary     = "THINKR_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// integrationToken is the API token the fake backends expect.
const integrationToken = "integration-token"

// Env is the isolated environment of a test run.
type Env struct {
	APIURL     string
	DBPath     string
	ConfigPath string
}

// RunThinkrCmd runs a thinkr command against the test environment with logging
// disabled, so stdout only has the printer output.
func RunThinkrCmd(ctx context.Context, config Config, env Env, args ...string) (testutils.Result, error) {
	fullArgs := []string{
		"--api-url", env.APIURL,
		"--db-path", env.DBPath,
		"--config", env.ConfigPath,
	}
	fullArgs = append(fullArgs, args...)

	return testutils.RunBinary(ctx, config.Binary, map[string]string{
		"THINKR_NO_LOG":    "true",
		"THINKR_API_TOKEN": integrationToken,
	}, fullArgs...)
}
