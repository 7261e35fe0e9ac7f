package config

import (
	"errors"
	"os"
	"path/filepath"
)

const userConfigName = "config.yml"

// EnsureUserConfig returns the path of the config inside dataDir, writing the
// defaults there first if no file exists yet.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, userConfigName)

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	def := Default()
	def.App.DataDir = dataDir
	if err := SaveAtomic(userPath, def); err != nil {
		return "", err
	}
	return userPath, nil
}
