package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	// DirName is the per-project and per-user configuration directory.
	DirName = ".rr"
	// FileName is the configuration file inside DirName.
	FileName = "config.yaml"
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "RR_CONFIG"
)

// ResolveConfigPath returns the configuration file to load.
// Priority order:
//  1. explicit (the --config flag), which must exist
//  2. RR_CONFIG environment variable (if set), which must exist
//  3. .rr/config.yaml in dir (if it exists)
//  4. ~/.rr/config.yaml (if it exists)
//
// When nothing is found the project path is returned; LoadConfig treats a
// missing file as "use defaults". A leading "~" is expanded.
func ResolveConfigPath(explicit, dir string) (string, error) {
	for _, candidate := range []struct {
		path   string
		source string
	}{
		{explicit, "--config"},
		{os.Getenv(EnvConfigPath), EnvConfigPath},
	} {
		if candidate.path == "" {
			continue
		}
		path, err := homedir.Expand(candidate.path)
		if err != nil {
			return "", fmt.Errorf("expand %s path %q: %w", candidate.source, candidate.path, err)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file from %s: %w", candidate.source, err)
		}
		return path, nil
	}

	project := filepath.Join(dir, DirName, FileName)
	if fileExists(project) {
		return project, nil
	}

	if home, err := homedir.Dir(); err == nil {
		user := filepath.Join(home, DirName, FileName)
		if fileExists(user) {
			return user, nil
		}
	}

	return project, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
