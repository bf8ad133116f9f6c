package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clio-cli/clio/internal/search"
	"github.com/clio-cli/clio/internal/store"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search across every imported session",
	Long: `Search the SQLite store's FTS5 index built over message bodies.

Examples:
  clio search "retry logic"
  clio search "ENG-1234" --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	st, err := store.Open(dbFlag)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := search.Store(st, query, searchLimit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No results found for: %s\n", query)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d result(s) for: %s\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "[%d] session %s (%s)\n    %s\n\n", i+1, shortID(r.SessionID), r.ProjectPath, r.Snippet)
	}
	return nil
}
