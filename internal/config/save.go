package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# octomesh configuration; unknown keys are rejected on load.\n"

// Save validates the config and writes it to DefaultPath, returning the path.
func (c *Config) Save() (string, error) {
	path := DefaultPath()
	return path, c.SaveTo(path)
}

// SaveTo validates the config and writes it to path. An invalid config is
// never written, so anything Save produces can be loaded back.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
