package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clio-cli/clio/internal/discovery"
	"github.com/clio-cli/clio/internal/export"
	"github.com/clio-cli/clio/internal/parser"
	"github.com/clio-cli/clio/internal/reconstruct"
)

var (
	exportFormat         string
	exportOutput         string
	exportMainThreadOnly bool
	exportLossless       bool
	exportPretty         bool
	exportRedaction      string
	exportDialect        string
	exportTheme          string
	exportTOC            bool
	exportLineWidth      int
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session to markdown, text, JSON, JSONL, HTML, CSV, or XML",
	Long: `Re-parse and reconstruct a single session, then render it
through one of the registered exporters.

Examples:
  clio export 0ccfddc4-00e7-443a-bb82-58ede5936619
  clio export 0ccfddc4-00e7-443a-bb82-58ede5936619 --format json --lossless
  clio export 0ccfddc4-00e7-443a-bb82-58ede5936619 --format csv --dialect tool_calls`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Output format: markdown|text|json|jsonl|html|csv|xml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().BoolVar(&exportMainThreadOnly, "main-thread-only", false, "Export only the main thread, excluding sidechains")
	exportCmd.Flags().BoolVar(&exportLossless, "lossless", false, "json: emit the original entries verbatim instead of a structured projection")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", false, "Pretty-print json/html output")
	exportCmd.Flags().StringVar(&exportRedaction, "redact", "none", "Redaction policy: none|security|all")
	exportCmd.Flags().StringVar(&exportDialect, "dialect", "messages", "csv/xml row granularity: messages|tool_calls|usage")
	exportCmd.Flags().StringVar(&exportTheme, "theme", "light", "html theme: light|dark")
	exportCmd.Flags().BoolVar(&exportTOC, "toc", false, "html: include a table of contents")
	exportCmd.Flags().IntVar(&exportLineWidth, "line-width", 100, "text: word-wrap column")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	exporter, ok := export.ByFormat(export.Format(exportFormat))
	if !ok {
		return fmt.Errorf("unknown format: %s", exportFormat)
	}

	opts := export.DefaultOptions()
	opts.MainThreadOnly = exportMainThreadOnly
	opts.Lossless = exportLossless
	opts.Pretty = exportPretty
	opts.RedactionPolicy = export.RedactionPolicy(exportRedaction)
	opts.Dialect = exportDialect
	opts.Theme = exportTheme
	opts.TOC = exportTOC
	opts.LineWidth = exportLineWidth

	out := cmd.OutOrStdout()
	if exportOutput != "" {
		outFile, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		defer outFile.Close()
		out = outFile
	}

	stats, err := exporter.Export(conv, out, opts)
	if err != nil {
		return err
	}

	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d message(s), %d bytes to %s\n", stats.MessagesWritten, stats.BytesWritten, exportOutput)
	}
	return nil
}
