package rules

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of the rules file.
type fileConfig struct {
	Screener Config `yaml:"screener"`
}

// Load reads the YAML rules file, applies defaults for a missing file, and
// validates the result. Unknown fields fail immediately so threshold typos
// never silently fall back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("rules file %s not found: %w", path, err)
		}
		return Config{}, fmt.Errorf("read rules file: %w", err)
	}

	// Start from defaults so the file only needs to name what it changes
	fc := fileConfig{Screener: Default()}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if err := Validate(fc.Screener); err != nil {
		return Config{}, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return fc.Screener, nil
}
