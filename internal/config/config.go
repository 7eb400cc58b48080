// Package config loads deamdify settings from a project config file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/deamdify/internal/safeio"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	readConfigFileErrFmt = "read config file %s: %w"
	parseConfigErrFmt    = "parse config file %s: %w"
)

var configFileNames = []string{".deamdify.yml", ".deamdify.yaml", ".deamdify.toml", "deamdify.json"}

// Load resolves the config file for rootPath, either explicitPath or the first
// well-known file name present in rootPath. It returns empty overrides and an
// empty path when there is no config file.
func Load(rootPath, explicitPath string) (Overrides, string, error) {
	rootAbs, err := filepath.Abs(rootPath)
	if err != nil {
		return Overrides{}, "", fmt.Errorf("resolve root path: %w", err)
	}
	explicitPath = strings.TrimSpace(explicitPath)

	configPath, found, err := resolveConfigPath(rootAbs, explicitPath)
	if err != nil {
		return Overrides{}, "", err
	}
	if !found {
		return Overrides{}, "", nil
	}

	data, err := readConfigFile(rootAbs, configPath)
	if err != nil {
		return Overrides{}, "", fmt.Errorf(readConfigFileErrFmt, configPath, err)
	}
	cfg, err := parseConfig(configPath, data)
	if err != nil {
		return Overrides{}, "", fmt.Errorf(parseConfigErrFmt, configPath, err)
	}

	overrides := cfg.toOverrides()
	resolved := overrides.Apply(Defaults())
	if err := resolved.Validate(); err != nil {
		return Overrides{}, "", fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	return overrides, configPath, nil
}

func resolveConfigPath(rootPath, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(rootPath, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file not found: %s", candidate)
			}
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range configFileNames {
		candidate := filepath.Join(rootPath, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
	}
	return "", false, nil
}

func readConfigFile(rootPath, path string) ([]byte, error) {
	if safeio.IsUnder(rootPath, path) {
		return safeio.ReadFileUnder(rootPath, path)
	}
	return safeio.ReadFile(path)
}

func parseConfig(path string, data []byte) (rawConfig, error) {
	var cfg rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid JSON config: %w", err)
		}
		if decoder.More() {
			return rawConfig{}, fmt.Errorf("invalid JSON config: multiple JSON values")
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid TOML config: %w", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return cfg, nil
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid YAML config: %w", err)
		}
	}
	return cfg, nil
}

type rawConfig struct {
	Quote       *string  `yaml:"quote" json:"quote" toml:"quote"`
	Verify      *bool    `yaml:"verify" json:"verify" toml:"verify"`
	Workers     *int     `yaml:"workers" json:"workers" toml:"workers"`
	Extensions  []string `yaml:"extensions" json:"extensions" toml:"extensions"`
	ExcludeDirs []string `yaml:"exclude_dirs" json:"exclude_dirs" toml:"exclude_dirs"`
}

func (c *rawConfig) toOverrides() Overrides {
	return Overrides{
		Quote:       c.Quote,
		Verify:      c.Verify,
		Workers:     c.Workers,
		Extensions:  c.Extensions,
		ExcludeDirs: c.ExcludeDirs,
	}
}
