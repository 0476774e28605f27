package cmd

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/kizaaku/climonitor-launcher/internal/config"
	"github.com/kizaaku/climonitor-launcher/internal/detect"
	"github.com/kizaaku/climonitor-launcher/internal/identity"
	"github.com/kizaaku/climonitor-launcher/internal/launcher"
	"github.com/kizaaku/climonitor-launcher/internal/ptyhost"
	"github.com/kizaaku/climonitor-launcher/internal/transport"
)

// runTool wires config, identity, transport, detection, and the
// launcher together for one invocation, mirroring the original
// main.rs's top-level sequencing.
func runTool(f flags, command string, toolArgs []string) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	useTCP := f.forceTCP || looksLikeHostPort(f.connect)
	if useTCP {
		cfg.OverrideGrpcAddr(f.connect)
	} else {
		cfg.OverrideSocketPath(f.connect)
	}
	cfg.OverrideVerbose(f.verbose)
	cfg.OverrideLogFile(f.logFile)

	if cfg.Logging.Verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(discard{})
	}

	defaultArgs, err := cfg.DefaultArgs()
	if err != nil {
		return fmt.Errorf("parse tool.default_args: %w", err)
	}
	args := append(append([]string{}, defaultArgs...), toolArgs...)

	workingDir, err := identity.WorkingDir()
	if err != nil {
		return fmt.Errorf("resolve working dir: %w", err)
	}

	cliType := resolveToolType(command)
	rows, cols := ptyhost.Size()

	var det detect.Detector
	if cliType == transport.ToolGemini {
		det = detect.NewGeminiDetector(rows, cols)
	} else {
		det = detect.NewClaudeDetector(rows, cols)
	}

	sender := connectSender(useTCP, cfg)

	l := launcher.New(launcher.Options{
		Command:    command,
		Args:       args,
		WorkingDir: workingDir,
		ProjectTag: "",
		Tool:       det,
		CLI:        cliType,
		Sender:     sender,
		Stdout:     os.Stdout,
		Stdin:      os.Stdin,
		LogFile:    cfg.Logging.LogFile,
	})

	os.Exit(l.Run())
	return nil
}

// connectSender builds the monitor transport client. Any failure here
// is non-fatal: spec §4.4's offline-tolerance rule means a session
// always runs even when no monitor is reachable.
func connectSender(useTCP bool, cfg *config.Config) transport.MessageSender {
	if !useTCP {
		return transport.NewUnixSocketSender(cfg.Connection.UnixSocketPath, cfg.Logging.Verbose)
	}

	addr := cfg.Connection.Grpc.BindAddr
	if !hostAllowed(addr, cfg.Connection.Grpc.AllowedIPs) {
		log.Printf("climonitor-launcher: refusing to connect to %s: not in connection.grpc.allowed_ips", addr)
		return nil
	}

	sender, err := transport.NewTCPStreamSender(addr, cfg.Logging.Verbose)
	if err != nil {
		log.Printf("climonitor-launcher: monitor unreachable (tcp %s): %v", addr, err)
		return nil
	}
	return sender
}

// hostAllowed checks addr's host against the configured IP allowlist.
// An empty allowlist (the default) permits any address, matching the
// original shared/src/config.rs GrpcSettings default of an empty
// allowed_ips Vec.
func hostAllowed(addr string, allowedIPs []string) bool {
	if len(allowedIPs) == 0 {
		return true
	}
	host, _, err := splitHostPort(addr)
	if err != nil {
		return false
	}
	ips, err := net.LookupHost(host)
	if err != nil {
		ips = []string{host}
	}
	for _, ip := range ips {
		for _, allowed := range allowedIPs {
			if ip == allowed {
				return true
			}
		}
	}
	return false
}

// looksLikeHostPort reports whether addr looks like host:port rather
// than a filesystem path, so --connect can select Mode G without
// requiring --tcp.
func looksLikeHostPort(addr string) bool {
	if addr == "" || strings.HasPrefix(addr, "/") || strings.HasPrefix(addr, ".") {
		return false
	}
	if strings.HasPrefix(addr, "tcp://") {
		return true
	}
	host, port, err := splitHostPort(addr)
	return err == nil && host != "" && port != ""
}

func splitHostPort(addr string) (host, port string, err error) {
	addr = strings.TrimPrefix(addr, "tcp://")
	idx := strings.LastIndexByte(addr, ':')
	if idx < 0 {
		return "", "", fmt.Errorf("no port in %q", addr)
	}
	return addr[:idx], addr[idx+1:], nil
}

// resolveToolType picks the CliToolType by the child command's
// basename, defaulting to Claude for backward compatibility per the
// original claude_tool.rs/gemini_tool.rs precedence.
func resolveToolType(command string) transport.CliToolType {
	switch strings.ToLower(filepath.Base(command)) {
	case "gemini":
		return transport.ToolGemini
	default:
		return transport.ToolClaude
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
