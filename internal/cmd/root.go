// Package cmd assembles the launcher's cobra command tree: a single
// root command that wraps a child CLI tool in a PTY, plus a version
// subcommand, grounded on the teacher's NewRootCmd layout.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kizaaku/climonitor-launcher/internal/config"
)

// flags holds the root command's own flags, parsed before the
// trailing tool/tool-args positional arguments.
type flags struct {
	verbose    bool
	logFile    string
	connect    string
	forceTCP   bool
	configPath string
}

// NewRootCmd builds the climonitor-launcher root command: climonitor-launcher
// [flags] tool [tool-args...]. Everything after the first non-flag
// argument is passed through to the child untouched.
func NewRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "climonitor-launcher [flags] tool [tool-args...]",
		Short: "Run a CLI coding tool under an observing PTY launcher",
		Long: "climonitor-launcher spawns a child CLI tool (claude, gemini, ...) inside a " +
			"pseudo-terminal, relays its I/O transparently, and reports session state " +
			"to an external monitor process over a Unix socket or TCP stream.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: false,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("climonitor-launcher: missing tool command, e.g. `climonitor-launcher claude`")
			}
			return runTool(f, args[0], args[1:])
		},
	}

	rootCmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log transport and detection activity to stderr")
	rootCmd.Flags().StringVar(&f.logFile, "log-file", "", "tee the child's raw PTY output to this file")
	rootCmd.Flags().StringVar(&f.connect, "connect", "", "monitor address: a filesystem path (Mode L) or host:port (Mode G)")
	rootCmd.Flags().BoolVar(&f.forceTCP, "tcp", false, "force Mode G (TCP) even when --connect looks like a path")
	rootCmd.Flags().StringVarP(&f.configPath, "config", "c", config.DefaultConfigPath(), "path to config.toml")
	// Stop parsing our own flags at the first positional argument, so a
	// child tool's own "-v" or "--flag" never collides with ours.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
