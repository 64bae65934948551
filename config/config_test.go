// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"SplitMode", cfg.SplitMode, "informational"},
		{"Admin", cfg.Admin, ""},
		{"MetricsAddr", cfg.MetricsAddr, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if !strings.HasSuffix(cfg.DataDir, ".royaltyledger") {
		t.Errorf("DataDir = %q, want suffix %q", cfg.DataDir, ".royaltyledger")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	original := Config{
		DataDir:     "/tmp/test-royalty",
		Network:     "testnet",
		LogLevel:    "debug",
		LogFile:     "/tmp/royalty.log",
		Admin:       "admin@example.com",
		SplitMode:   "distribute",
		RPCURL:      "http://localhost:18333",
		RPCUser:     "user",
		RPCPassword: "secret",
		MetricsAddr: ":9102",
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != original {
		t.Errorf("LoadConfig = %+v, want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSaveConfig_OutputContainsAllKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "# Royalty Ledger Configuration") {
		t.Error("saved config should contain header")
	}
	keys := []string{"datadir", "network", "loglevel", "logfile", "admin", "splitmode", "rpcurl", "rpcuser", "rpcpass", "metrics"}
	for _, key := range keys {
		if !strings.Contains(content, key+" = ") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// LoadConfig tests
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	for _, content := range []string{"this-is-not-key-value\n", " = value\n"} {
		_, err := LoadConfig(writeConfig(t, content))
		if !errors.Is(err, ErrInvalidConfigLine) {
			t.Errorf("LoadConfig %q: got %v, want ErrInvalidConfigLine", content, err)
		}
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	path := writeConfig(t, `# This is a comment
network = testnet

# Another comment
splitmode = distribute
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.SplitMode != "distribute" {
		t.Errorf("SplitMode = %q, want %q", cfg.SplitMode, "distribute")
	}
	// Unset fields keep their defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "futurekey = futurevalue\nnetwork = regtest\n"))
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want %q", cfg.Network, "regtest")
	}
}

func TestLoadConfig_MultipleEquals(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "rpcpass=a=b\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RPCPassword != "a=b" {
		t.Errorf("RPCPassword = %q, want %q", cfg.RPCPassword, "a=b")
	}
}

func TestLoadConfig_CaseInsensitiveKeys(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "  Admin = alice@example.com  \n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Admin != "alice@example.com" {
		t.Errorf("Admin = %q, want %q", cfg.Admin, "alice@example.com")
	}
}

// ---------------------------------------------------------------------------
// ApplyEnv tests
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Setenv("ROYALTY_NETWORK", "regtest")
	t.Setenv("ROYALTY_ADMIN", "ops@example.com")
	t.Setenv("ROYALTY_RPC_PASS", "hunter2")

	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want %q", cfg.Network, "regtest")
	}
	if cfg.Admin != "ops@example.com" {
		t.Errorf("Admin = %q, want %q", cfg.Admin, "ops@example.com")
	}
	if cfg.RPCPassword != "hunter2" {
		t.Errorf("RPCPassword = %q, want %q", cfg.RPCPassword, "hunter2")
	}
	// Unset variables leave the field alone.
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"empty_network", func(c *Config) { c.Network = "" }, ErrInvalidNetwork},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"bad_admin", func(c *Config) { c.Admin = "not an admin" }, ErrInvalidAdmin},
		{"testnet_admin_on_mainnet", func(c *Config) { c.Admin = "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn" }, ErrInvalidAdmin},
		{"bad_split_mode", func(c *Config) { c.SplitMode = "weighted" }, ErrInvalidSplitMode},
		{"bad_rpc_scheme", func(c *Config) { c.RPCURL = "ftp://node:8332" }, ErrInvalidRPCURL},
		{"rpc_without_host", func(c *Config) { c.RPCURL = "http://" }, ErrInvalidRPCURL},
		{"bad_metrics_addr", func(c *Config) { c.MetricsAddr = "not-a-valid-addr" }, ErrInvalidMetricsAddr},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigOptionalFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Admin = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	cfg.SplitMode = "distribute"
	cfg.RPCURL = "https://node.example.com:8332"
	cfg.MetricsAddr = "127.0.0.1:9102"
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func TestPaths(t *testing.T) {
	if got, want := ConfigPath("/home/user/.royaltyledger/"), filepath.Join("/home/user/.royaltyledger", "config"); got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
	if got, want := DatabasePath("/data"), filepath.Join("/data", "ledger.db"); got != want {
		t.Errorf("DatabasePath = %q, want %q", got, want)
	}
}
