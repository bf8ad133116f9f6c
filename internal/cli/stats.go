package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/clio-cli/clio/internal/analytics"
	"github.com/clio-cli/clio/internal/discovery"
	"github.com/clio-cli/clio/internal/parser"
	"github.com/clio-cli/clio/internal/reconstruct"
)

var statsCmd = &cobra.Command{
	Use:   "stats <session-id>",
	Short: "Show token usage, cost, and tool statistics for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	root, err := discovery.ResolveRoot(rootFlag)
	if err != nil {
		return err
	}
	session, err := findSession(root, sessionID)
	if err != nil {
		return err
	}

	f, err := os.Open(session.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	p := parser.New(f, parser.Strict, "")
	entries, _ := parser.Collect(p)
	conv := reconstruct.Build(entries)

	rates := cfg.Pricing.ResolveRates(analytics.DefaultRateTable())
	report := analytics.Analyze(conv, rates)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s\n", sessionID)
	fmt.Fprintf(out, "Duration: %s\n", report.Duration.Round(1e9))
	fmt.Fprintf(out, "Turns: %d\n\n", report.TurnCount)

	roleTable := tablewriter.NewTable(out)
	roleTable.Header([]string{"Role", "Messages"})
	for _, role := range sortedKeys(report.MessageCountsByRole) {
		roleTable.Append([]string{role, fmt.Sprintf("%d", report.MessageCountsByRole[role])})
	}
	if err := roleTable.Render(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	tokenTable := tablewriter.NewTable(out)
	tokenTable.Header([]string{"Model", "Input", "Output", "Cache Create", "Cache Read", "Cost"})
	for _, model := range sortedKeys(report.TokenTotalsByModel) {
		totals := report.TokenTotalsByModel[model]
		tokenTable.Append([]string{
			model,
			humanize.Comma(totals.Input),
			humanize.Comma(totals.Output),
			humanize.Comma(totals.CacheCreate),
			humanize.Comma(totals.CacheRead),
			fmt.Sprintf("$%.4f", report.CostEstimateByModel[model]),
		})
	}
	if err := tokenTable.Render(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal estimated cost: $%.4f\n", report.TotalCostEstimate)

	if len(report.ToolFrequency) > 0 {
		fmt.Fprintln(out)
		toolTable := tablewriter.NewTable(out)
		toolTable.Header([]string{"Tool", "Calls"})
		for _, name := range sortedKeys(report.ToolFrequency) {
			toolTable.Append([]string{name, fmt.Sprintf("%d", report.ToolFrequency[name])})
		}
		if err := toolTable.Render(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Succeeded: %d  Failed: %d  Implicit: %d\n",
			report.ToolSuccessCount, report.ToolFailureCount, report.ToolImplicitCount)
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
