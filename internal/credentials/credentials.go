// Package credentials has the providers of the backend API token. Providers only
// read tokens stored somewhere else, they never acquire nor refresh them.
package credentials

import (
	"os"
	"strings"
)

// Provider provides the API token.
type Provider interface {
	// Token returns the current token, false if there is none.
	Token() (string, bool)
}

// ProviderFunc is a helper to use functions as Providers.
type ProviderFunc func() (string, bool)

func (f ProviderFunc) Token() (string, bool) { return f() }

// None never has a token.
var None = ProviderFunc(func() (string, bool) { return "", false })

// Static is a fixed token.
type Static string

func (s Static) Token() (string, bool) {
	t := strings.TrimSpace(string(s))
	return t, t != ""
}

// Env reads the token from the named environment variable on every call.
type Env string

func (e Env) Token() (string, bool) {
	t := strings.TrimSpace(os.Getenv(string(e)))
	return t, t != ""
}

// File reads the token from a file on every call, so tokens rotated by other
// processes are picked up. A missing or empty file has no token.
type File string

func (f File) Token() (string, bool) {
	if f == "" {
		return "", false
	}
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", false
	}
	t := strings.TrimSpace(string(data))
	return t, t != ""
}

// Chain returns the token of the first provider that has one.
type Chain []Provider

func (c Chain) Token() (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if t, ok := p.Token(); ok {
			return t, true
		}
	}
	return "", false
}
