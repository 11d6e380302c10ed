package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"deadsnakes/internal/config"
	"deadsnakes/internal/ghcomment"
	"deadsnakes/internal/history"
	"deadsnakes/internal/relics"
	"deadsnakes/internal/report"
	"deadsnakes/internal/repofetch"
	"deadsnakes/internal/slogutil"
)

var (
	scanFormat     string
	scanPRComment  bool
	scanReportFile string
	scanHistory    bool
	scanLogLevel   string
)

var scanCmd = &cobra.Command{
	Use:   "scan <repo-url-or-path>",
	Short: "Scan for Python 2 relics",
	Long: `Scan a repository for obsolete Python 2 idioms.

A remote target (http:// or https://) is shallow-cloned first; anything
else is treated as a local path. Every .py file under the root is parsed
and matched against the fixed relic rule set; files that fail to parse
are skipped silently.

Exit codes:
  0 - no relics found
  1 - relics found
  2 - invocation or configuration error

Examples:
  # Scan a local checkout
  deadsnakes scan .

  # Scan a remote repository
  deadsnakes scan https://github.com/acme/widgets

  # Machine-readable output for CI
  deadsnakes scan . -o json

  # Fail the gate and update the PR comment
  deadsnakes scan . --pr-comment

  # Keep a compressed report artifact
  deadsnakes scan . --report-file report.json.gz`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runScan(args[0]))
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "output", "o", "", "Output format: table, json, plain")
	scanCmd.Flags().BoolVar(&scanPRComment, "pr-comment", false, "Post or update a PR comment when relics are found")
	scanCmd.Flags().StringVar(&scanReportFile, "report-file", "", "Write the full JSON report to this file (.gz compresses)")
	scanCmd.Flags().BoolVar(&scanHistory, "history", false, "Record this run in the local history database")
	scanCmd.Flags().StringVar(&scanLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.AddCommand(scanCmd)
}

func runScan(target string) int {
	ctx := context.Background()
	logger := slogutil.NewStderrLogger(slog.LevelWarn)

	root := target
	if repofetch.IsRemote(target) {
		dir, cleanup, err := repofetch.Fetch(ctx, target, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		defer cleanup()
		root = dir
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// Flags win over environment and file configuration.
	if scanFormat != "" {
		cfg.Output.Format = scanFormat
	}
	if scanPRComment {
		cfg.Output.PRComment = true
	}
	if scanHistory {
		cfg.History.Enabled = true
	}
	if scanLogLevel != "" {
		cfg.Logging.Level = scanLogLevel
	}

	logger = slogutil.NewStderrLogger(slogutil.LevelFromString(cfg.Logging.Level))

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	scanner := relics.NewScanner(logger)
	result, err := scanner.Scan(ctx, relics.ScanOptions{
		Root:        root,
		ExcludeDirs: cfg.Scan.ExcludeDirs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if result.HasFindings() {
		if err := report.Render(os.Stdout, result.Findings, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
	}

	if scanReportFile != "" {
		if err := report.WriteFile(scanReportFile, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
	}

	// History and the PR comment are side channels: failures there are
	// diagnostics and never change the gate's outcome.
	if cfg.History.Enabled {
		recordHistory(root, result, logger)
	}

	if result.HasFindings() && cfg.Output.PRComment {
		client := ghcomment.NewClient(cfg.GitHub, logger)
		if err := client.Upsert(ctx, report.Markdown(result.Findings)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write PR comment: %v\n", err)
		}
	}

	if result.HasFindings() {
		return 1
	}
	return 0
}

func recordHistory(root string, result *relics.ScanResult, logger *slog.Logger) {
	store, err := history.OpenStore(root, logger)
	if err != nil {
		logger.Warn("Could not open history store", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.RecordRun(result); err != nil {
		logger.Warn("Could not record scan run", "error", err)
	}
}
