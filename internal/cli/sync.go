package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clio-cli/clio/internal/discovery"
	"github.com/clio-cli/clio/internal/ingest"
	"github.com/clio-cli/clio/internal/parser"
	"github.com/clio-cli/clio/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import session logs into the SQLite store",
	Long: `Discover every project and session under the log store root,
parse and reconstruct each one, stitch subagent sessions into their
parents, and write the result into the SQLite store.

Re-running sync is idempotent: already-imported messages are left
untouched (matched by their UUID).`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	root, err := discovery.ResolveRoot(rootFlag)
	if err != nil {
		return err
	}

	projects, err := discovery.ListProjects(root)
	if err != nil {
		return err
	}

	projectByID := make(map[string]discovery.Project, len(projects))
	var sessions []discovery.Session
	for _, p := range projects {
		projectByID[p.ID] = p
		ss, err := discovery.ListSessions(p)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping project %s: %v\n", p.Path, err)
			continue
		}
		sessions = append(sessions, ss...)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d session(s) across %d project(s)\n", len(sessions), len(projects))

	summary := ingest.ParseAndReconstruct(context.Background(), sessions, parser.Strict, cfg.Workers)
	if summary.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d session(s) failed to parse\n", summary.Failed)
	}

	st, err := store.Open(dbFlag)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := ingest.WriteAll(st, projectByID, summary); err != nil {
		return err
	}

	written := 0
	for _, r := range summary.Results {
		if r.Err == nil && r.Conv != nil && r.Conv.Len() > 0 {
			written++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d session(s) into %s\n", written, dbFlag)
	return nil
}
