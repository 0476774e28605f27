package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.UnixSocketPath == "" {
		t.Fatal("expected default socket path to be populated")
	}
	if cfg.Connection.Grpc.BindAddr != "127.0.0.1:50051" {
		t.Errorf("bind_addr = %q, want default", cfg.Connection.Grpc.BindAddr)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[connection]
unix_socket_path = "/tmp/custom.sock"

[connection.grpc]
bind_addr = "0.0.0.0:9000"
allowed_ips = ["10.0.0.1"]

[logging]
verbose = true
log_file = "/tmp/session.log"

[tool]
default_args = "--flag-one value --flag-two"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.UnixSocketPath != "/tmp/custom.sock" {
		t.Errorf("unix_socket_path = %q", cfg.Connection.UnixSocketPath)
	}
	if cfg.Connection.Grpc.BindAddr != "0.0.0.0:9000" {
		t.Errorf("bind_addr = %q", cfg.Connection.Grpc.BindAddr)
	}
	if len(cfg.Connection.Grpc.AllowedIPs) != 1 || cfg.Connection.Grpc.AllowedIPs[0] != "10.0.0.1" {
		t.Errorf("allowed_ips = %v", cfg.Connection.Grpc.AllowedIPs)
	}
	if !cfg.Logging.Verbose {
		t.Error("expected verbose = true")
	}

	args, err := cfg.DefaultArgs()
	if err != nil {
		t.Fatalf("DefaultArgs: %v", err)
	}
	want := []string{"--flag-one", "value", "--flag-two"}
	if len(args) != len(want) {
		t.Fatalf("DefaultArgs = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("DefaultArgs[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[connection]\nunix_socket_path = \"/tmp/file.sock\"\n\n[logging]\nverbose = false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("CLIMONITOR_SOCKET_PATH", "/tmp/env.sock")
	os.Setenv("CLIMONITOR_VERBOSE", "true")
	defer os.Unsetenv("CLIMONITOR_SOCKET_PATH")
	defer os.Unsetenv("CLIMONITOR_VERBOSE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.UnixSocketPath != "/tmp/env.sock" {
		t.Errorf("unix_socket_path = %q, want env override", cfg.Connection.UnixSocketPath)
	}
	if !cfg.Logging.Verbose {
		t.Error("expected verbose forced true by env")
	}
}

func TestCLIOverrideBeatsEverything(t *testing.T) {
	os.Setenv("CLIMONITOR_SOCKET_PATH", "/tmp/env.sock")
	defer os.Unsetenv("CLIMONITOR_SOCKET_PATH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.OverrideSocketPath("/tmp/cli.sock")
	if cfg.Connection.UnixSocketPath != "/tmp/cli.sock" {
		t.Errorf("unix_socket_path = %q, want CLI override", cfg.Connection.UnixSocketPath)
	}
}
