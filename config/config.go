// Package config loads and validates pine.config.json.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/claudianadalin/pinecone/resolver"
)

// Filename is the default configuration file name.
const Filename = "pine.config.json"

// Config is a validated project configuration with resolved absolute paths.
type Config struct {
	Entry   string
	Output  string
	RootDir string
}

// SrcDir returns the directory containing the entry file.
func (c *Config) SrcDir() string {
	return filepath.Dir(c.Entry)
}

// Error reports a configuration problem.
type Error struct {
	Message string
	Path    string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("Config error in %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("Config error: %s", e.Message)
}

// Load reads and validates a pine.config.json. An empty path means
// Filename in the current directory. Relative entry/output values are
// resolved against the config file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		path = filepath.Join(cwd, Filename)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("Config file not found. Create a %s file with 'entry' and 'output' fields.", Filename),
			Path:    path,
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Message: fmt.Sprintf("Invalid JSON: %v", err), Path: path}
	}

	var missing []string
	for _, key := range []string{"entry", "output"} {
		if !v.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Path:    path,
		}
	}

	rootDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}

	cfg := &Config{
		Entry:   resolveAgainst(rootDir, v.GetString("entry")),
		Output:  resolveAgainst(rootDir, v.GetString("output")),
		RootDir: rootDir,
	}

	if _, err := os.Stat(cfg.Entry); err != nil {
		return nil, &Error{
			Message: "Entry file not found: " + v.GetString("entry"),
			Path:    path,
		}
	}
	if filepath.Ext(cfg.Entry) != resolver.SourceExtension {
		return nil, &Error{
			Message: "Entry file must be a .pine file: " + v.GetString("entry"),
			Path:    path,
		}
	}

	return cfg, nil
}

func resolveAgainst(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, path)
}
