// Package testutils has helpers to run the thinkr binary in integration tests.
package testutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// Result is the outcome of a finished binary run.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success returns true when the binary exited with 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// RunBinary runs binary with args until it exits. The env overrides the current
// process environment. Exiting with a non zero code is not an error, it is in the
// result, errors are only returned when the binary could not be run.
func RunBinary(ctx context.Context, binary string, env map[string]string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = mergeEnv(os.Environ(), env)

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("could not run %q: %w", binary, err)
	}

	return res, nil
}

// mergeEnv appends the overrides in a stable order, later keys win in exec.Cmd.
func mergeEnv(base []string, overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := append([]string{}, base...)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
