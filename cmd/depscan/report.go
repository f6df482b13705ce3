package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"depscan/internal/report"
	"depscan/internal/scanner"
)

var (
	reportRepo   string
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report [results.json]",
	Short: "Render a saved scan result as a report",
	Long: `Reads a scan result previously exported with 'scan --json' and
renders it as Markdown. By default the report is rendered for the
terminal; use --format to export markdown or CSV instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportCmd,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportRepo, "repo", "repository", "Repository name to title the report with")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "term", "Report format (term, markdown, csv)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to this file instead of stdout")
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read results file: %w", err)
	}

	// scan --json may wrap the result in the final event, so check for
	// that shape first. Unmarshalling ignores unknown fields, which makes
	// a bare Result decode "successfully" as an empty event and vice
	// versa.
	var result scanner.Result
	var ev scanner.Event
	if err := json.Unmarshal(data, &ev); err == nil && ev.Type == scanner.EventComplete && ev.Result != nil {
		result = *ev.Result
	} else if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse results file: %w", err)
	}

	out := cmd.OutOrStdout()
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch reportFormat {
	case "csv":
		return report.WriteCSV(out, &result)
	case "markdown", "md":
		_, err := fmt.Fprint(out, report.Markdown(reportRepo, &result))
		return err
	case "term":
		md := report.Markdown(reportRepo, &result)
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			// Fall back to plain markdown.
			_, err := fmt.Fprint(out, md)
			return err
		}
		rendered, err := renderer.Render(md)
		if err != nil {
			_, err := fmt.Fprint(out, md)
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	default:
		return fmt.Errorf("unknown report format: %s", reportFormat)
	}
}
