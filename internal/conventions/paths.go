package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default thinkr data directory name (relative to home).
	DefaultDataDir = ".thinkr"
	// ConfigFile is the YAML client config filename.
	ConfigFile = "config.yaml"
	// DBFile is the SQLite journal filename.
	DBFile = "thinkr.db"
	// TokenEnvVar is the env var read for the API token when no other token is set.
	TokenEnvVar = "THINKR_API_TOKEN"
)

// ConfigPath returns the path of the config file inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// DBPath returns the path of the journal database inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
