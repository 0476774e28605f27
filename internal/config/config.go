// Package config loads launcher configuration from TOML, adapted from
// the teacher's YAML config.go to the original shared/src/config.rs
// field layout, and merges it with environment variables and CLI
// flags in defaults < file < env < CLI precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/shlex"
)

// Config is the root configuration structure, matching
// shared/src/config.rs's field layout translated from TOML-via-serde
// to TOML-via-BurntSushi.
type Config struct {
	Connection ConnectionSettings `toml:"connection"`
	Logging    LoggingSettings    `toml:"logging"`
	Tool       ToolSettings       `toml:"tool"`
}

type ConnectionSettings struct {
	UnixSocketPath string       `toml:"unix_socket_path"`
	Grpc           GrpcSettings `toml:"grpc"`
}

type GrpcSettings struct {
	BindAddr   string   `toml:"bind_addr"`
	AllowedIPs []string `toml:"allowed_ips"`
}

type LoggingSettings struct {
	Verbose bool   `toml:"verbose"`
	LogFile string `toml:"log_file"`
}

// ToolSettings holds per-session defaults not present in the original
// Rust config: a configured default-args string split into argv via
// shlex, so users can pin flags for the wrapped CLI without retyping
// them on every invocation.
type ToolSettings struct {
	DefaultArgs string `toml:"default_args"`
}

func defaults() Config {
	return Config{
		Connection: ConnectionSettings{
			UnixSocketPath: defaultSocketPath(),
			Grpc: GrpcSettings{
				BindAddr: "127.0.0.1:50051",
			},
		},
	}
}

func defaultSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".climonitor", "climonitor.sock")
	}
	return filepath.Join(home, ".climonitor", "climonitor.sock")
}

// DefaultConfigPath mirrors config_path_candidates()[1]: ~/.climonitor/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".climonitor", "config.toml")
	}
	return filepath.Join(home, ".climonitor", "config.toml")
}

// Load builds the effective configuration: defaults, overlaid by the
// file at path (if it exists — a missing file is not an error), then
// by environment variables. CLI flags are applied afterward by the
// caller via the Override* setters, since cobra parses them later.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CLIMONITOR_SOCKET_PATH"); v != "" {
		c.Connection.UnixSocketPath = v
	}
	if v := os.Getenv("CLIMONITOR_VERBOSE"); v != "" {
		c.Logging.Verbose = v == "1" || v == "true"
	}
	if v := os.Getenv("CLIMONITOR_LOG_FILE"); v != "" {
		c.Logging.LogFile = v
	}
}

// OverrideSocketPath applies a --connect CLI flag over the merged
// defaults/file/env configuration, completing the precedence chain.
func (c *Config) OverrideSocketPath(path string) {
	if path != "" {
		c.Connection.UnixSocketPath = path
	}
}

// OverrideVerbose applies a -v/--verbose CLI flag.
func (c *Config) OverrideVerbose(verbose bool) {
	if verbose {
		c.Logging.Verbose = true
	}
}

// OverrideGrpcAddr applies a --connect CLI flag that names a host:port
// Mode G target, completing the precedence chain for
// connection.grpc.bind_addr the same way OverrideSocketPath does for
// connection.unix_socket_path.
func (c *Config) OverrideGrpcAddr(addr string) {
	if addr != "" {
		c.Connection.Grpc.BindAddr = addr
	}
}

// OverrideLogFile applies a --log-file CLI flag.
func (c *Config) OverrideLogFile(path string) {
	if path != "" {
		c.Logging.LogFile = path
	}
}

// DefaultArgs splits the configured default-args string into argv,
// returning nil (no error) when none is configured.
func (c *Config) DefaultArgs() ([]string, error) {
	if c.Tool.DefaultArgs == "" {
		return nil, nil
	}
	return shlex.Split(c.Tool.DefaultArgs)
}
