package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Validate is NormalizeAndValidate for callers that only want an error.
func Validate(cfg Config) error {
	_, res := NormalizeAndValidate(cfg)
	return res.Err()
}

// SaveAtomic writes cfg via a temp file, keeping the previous file as .bak.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
