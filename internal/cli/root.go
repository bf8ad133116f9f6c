// Package cli implements the clio command-line interface: sync,
// project/session listing, export, search, and per-session analytics,
// wired over internal/discovery, internal/ingest, internal/store, and
// internal/export.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clio-cli/clio/internal/clioerr"
	"github.com/clio-cli/clio/internal/config"
)

var (
	rootFlag    string
	dbFlag      string
	workersFlag int
	versionInfo string
	cfg         config.Config
)

// SetVersion sets the version information from build-time ldflags.
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI, translating a clioerr.Error into spec §6's
// exit code table.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ce, ok := err.(*clioerr.Error); ok {
			os.Exit(ce.Kind.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clio",
	Short: "Browse, export, and search Claude Code session logs",
	Long: `clio reconstructs Claude Code JSONL session logs into navigable
conversation trees, and projects them into a queryable SQLite store.

It imports sessions from the on-disk log store, exports them to
Markdown, text, JSON, JSONL, HTML, CSV, or XML, and full-text searches
across every imported session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		loaded, err := config.Load(cwd, rootFlag)
		if err != nil {
			return err
		}
		cfg = loaded
		if workersFlag > 0 {
			cfg.Workers = workersFlag
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Log store root directory (default: $HOME/.claude)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", defaultDBPath(), "SQLite database path")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "Worker pool size for batch import (default: CPU count)")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clio.db"
	}
	return home + "/.config/clio/clio.db"
}
