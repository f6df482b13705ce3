package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"depscan/internal/config"
	"depscan/internal/github"
	"depscan/internal/notify"
	"depscan/internal/report"
	"depscan/internal/scanner"
	"depscan/internal/telemetry"
	"depscan/internal/ui"
)

var askOne = survey.AskOne

var (
	scanPlain  bool
	scanJSON   bool
	scanCSV    bool
	scanOutput string
	scanFailOn string
	scanNotify bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [repository-url]",
	Short: "Scan a GitHub repository for vulnerable dependencies",
	Long: `Scans a repository's dependency manifests and checks every unique
dependency against the OSV database. Without a URL argument the
repository is prompted for interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScanCmd,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false, "Plain line output instead of the TUI")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Write results as JSON")
	scanCmd.Flags().BoolVar(&scanCSV, "csv", false, "Write results as CSV")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write results to this file instead of stdout")
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "", "Exit non-zero when a vulnerability at or above this severity is found (LOW, MEDIUM, HIGH, CRITICAL)")
	scanCmd.Flags().BoolVar(&scanNotify, "notify", false, "Send the scan summary to the configured webhook")
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	var repoURL string
	if len(args) > 0 {
		repoURL = args[0]
	} else {
		prompt := &survey.Input{Message: "Repository URL to scan:"}
		if err := askOne(prompt, &repoURL, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	owner, repo, ok := github.ParseRepoURL(repoURL)
	if !ok {
		return fmt.Errorf("unsupported repository url: %s", repoURL)
	}

	settings := config.FromViper()
	if scanFailOn == "" {
		scanFailOn = settings.FailOnDefault
	}

	// Machine output or an explicit file implies no TUI.
	plain := scanPlain || scanJSON || scanCSV || scanOutput != ""
	if !plain {
		// Keep log lines off the TUI's terminal.
		telemetry.InitLogger(settings.Verbose, settings.LogFile, true)
	}

	sc, _, cleanup := buildScanner(settings, nil)
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runScan(ctx, cmd, sc, owner, repo, plain)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("scan cancelled")
	}

	if err := writeScanOutput(cmd, owner+"/"+repo, result); err != nil {
		return err
	}

	if scanNotify && settings.SlackWebhook != "" {
		n := notify.NewSlackNotifier(settings.SlackWebhook, settings.SlackChannel)
		if err := n.NotifyScan(ctx, owner+"/"+repo, result); err != nil {
			cmd.PrintErrf("Warning: notification failed: %v\n", err)
		}
	}

	return checkFailOn(scanFailOn, result)
}

// runScan drives the event stream, either through the TUI or as plain
// status lines.
func runScan(ctx context.Context, cmd *cobra.Command, sc *scanner.Scanner, owner, repo string, plain bool) (*scanner.Result, error) {
	events := sc.Scan(ctx, owner, repo)

	if !plain {
		model := ui.NewScanModel(owner+"/"+repo, events)
		final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		if err != nil {
			return nil, fmt.Errorf("scan display failed: %w", err)
		}
		m, ok := final.(ui.ScanModel)
		if !ok {
			return nil, fmt.Errorf("unexpected model type")
		}
		if m.Err != "" {
			return nil, fmt.Errorf("%s", m.Err)
		}
		return m.Result, nil
	}

	var result *scanner.Result
	for ev := range events {
		switch ev.Type {
		case scanner.EventStatus:
			fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", ev.Progress, ev.Message)
		case scanner.EventError:
			return nil, fmt.Errorf("%s", ev.Message)
		case scanner.EventComplete:
			result = ev.Result
		}
	}
	return result, nil
}

func writeScanOutput(cmd *cobra.Command, repo string, result *scanner.Result) error {
	out := cmd.OutOrStdout()
	if scanOutput != "" {
		f, err := os.Create(scanOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch {
	case scanJSON:
		return report.WriteJSON(out, result)
	case scanCSV:
		return report.WriteCSV(out, result)
	case scanPlain || scanOutput != "":
		fmt.Fprint(out, ui.SummaryView(result))
	}
	// TUI already displayed the summary.
	return nil
}

var severityRank = map[string]int{
	"LOW":      1,
	"MEDIUM":   2,
	"HIGH":     3,
	"CRITICAL": 4,
}

// checkFailOn returns an error when any finding meets the threshold,
// for CI pipelines that gate on scan results.
func checkFailOn(threshold string, result *scanner.Result) error {
	if threshold == "" {
		return nil
	}
	min, ok := severityRank[strings.ToUpper(threshold)]
	if !ok {
		return fmt.Errorf("invalid --fail-on severity: %s", threshold)
	}
	count := 0
	for _, v := range result.Vulnerabilities {
		if severityRank[v.Severity] >= min {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("found %d vulnerabilities at or above %s", count, strings.ToUpper(threshold))
	}
	return nil
}
