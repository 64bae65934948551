// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads the royalty ledger daemon configuration from a
// key = value file and ROYALTY_* environment variables.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	configFileName   = "config"
	databaseFileName = "ledger.db"
)

// Config holds the daemon settings.
type Config struct {
	DataDir     string `env:"ROYALTY_DATADIR"`
	Network     string `env:"ROYALTY_NETWORK"`
	LogLevel    string `env:"ROYALTY_LOG_LEVEL"`
	LogFile     string `env:"ROYALTY_LOG_FILE"`
	Admin       string `env:"ROYALTY_ADMIN"`
	SplitMode   string `env:"ROYALTY_SPLIT_MODE"`
	RPCURL      string `env:"ROYALTY_RPC_URL"`
	RPCUser     string `env:"ROYALTY_RPC_USER"`
	RPCPassword string `env:"ROYALTY_RPC_PASS"`
	MetricsAddr string `env:"ROYALTY_METRICS_ADDR"`
}

// DefaultDataDir returns ~/.royaltyledger, or .royaltyledger in the working
// directory when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".royaltyledger"
	}
	return filepath.Join(home, ".royaltyledger")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:   DefaultDataDir(),
		Network:   "mainnet",
		LogLevel:  "info",
		SplitMode: "informational",
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// DatabasePath returns the ledger database path inside dataDir.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, databaseFileName)
}

// fileKeys maps config file keys to fields.
var fileKeys = []struct {
	key   string
	field func(*Config) *string
}{
	{"datadir", func(c *Config) *string { return &c.DataDir }},
	{"network", func(c *Config) *string { return &c.Network }},
	{"loglevel", func(c *Config) *string { return &c.LogLevel }},
	{"logfile", func(c *Config) *string { return &c.LogFile }},
	{"admin", func(c *Config) *string { return &c.Admin }},
	{"splitmode", func(c *Config) *string { return &c.SplitMode }},
	{"rpcurl", func(c *Config) *string { return &c.RPCURL }},
	{"rpcuser", func(c *Config) *string { return &c.RPCUser }},
	{"rpcpass", func(c *Config) *string { return &c.RPCPassword }},
	{"metrics", func(c *Config) *string { return &c.MetricsAddr }},
}

// LoadConfig reads a key = value file on top of DefaultConfig. Lines
// starting with # and blank lines are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		for _, k := range fileKeys {
			if k.key == key {
				*k.field(&cfg) = value
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

// SaveConfig writes cfg to path, creating parent directories. The file
// may hold the RPC password, so it is written with mode 0600.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Royalty Ledger Configuration\n\n")
	for _, k := range fileKeys {
		fmt.Fprintf(&b, "%s = %s\n", k.key, *k.field(&cfg))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields of cfg with the ROYALTY_* variables that are
// set. Unset variables leave the field untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}
