package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bsakit/pkg/bsa"
)

var (
	diagFormat      string
	diagOutputFile  string
	diagShowSummary bool
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <archive>",
	Short: "Run a diagnostic scan on an archive",
	Long: `Performs a complete diagnostic scan of an archive, checking for:
  - Name hashes that do not match the stored folder and file names
  - Data blocks that extend past the end of the file or overlap the directory
  - Compressed blocks without a usable size prefix
  - Duplicate virtual paths

Archives whose header or directory is unreadable fail to open and are reported
as errors instead.`,
	Example: `  # Scan an archive and show a text report
  bsactl diagnose "Skyrim - Meshes.bsa"

  # Output JSON for programmatic analysis
  bsactl diagnose --format json "Skyrim - Meshes.bsa"

  # Compact format for grep
  bsactl diagnose --format compact suspicious.bsa

  # Save report to file
  bsactl diagnose --output report.txt "Skyrim - Meshes.bsa"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiagnose(args)
	},
}

func init() {
	diagnoseCmd.Flags().StringVarP(&diagFormat, "format", "f", "text",
		"Output format: text, json, compact (text=human-readable, json=structured, compact=one-line-per-issue)")
	diagnoseCmd.Flags().StringVarP(&diagOutputFile, "output", "o", "",
		"Write report to file instead of stdout")
	diagnoseCmd.Flags().BoolVarP(&diagShowSummary, "summary", "s", false,
		"Show only summary (no detailed diagnostics)")

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(args []string) error {
	path := args[0]

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("archive not found: %s", path)
	}

	printVerbose("Scanning archive: %s\n\n", path)

	report, err := bsa.Diagnose(path, openOptions())
	if err != nil {
		return fmt.Errorf("diagnostic scan failed: %w", err)
	}

	var output string
	switch diagFormat {
	case "json":
		jsonStr, err := report.FormatJSON()
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		output = jsonStr + "\n"
	case "compact":
		output = report.FormatTextCompact()
	case "text":
		if diagShowSummary {
			output = formatSummaryOnly(report)
		} else {
			output = report.FormatText()
		}
	default:
		return fmt.Errorf("unknown format: %s (use: text, json, compact)", diagFormat)
	}

	if diagOutputFile != "" {
		if err := os.WriteFile(diagOutputFile, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		printInfo("Report written to: %s\n", diagOutputFile)
	} else {
		fmt.Print(output)
	}

	// Exit code based on severity
	switch {
	case report.HasCriticalIssues():
		return &exitError{code: 2, msg: "CRITICAL issues found"}
	case report.HasErrors():
		return &exitError{code: 1, msg: "Errors found"}
	case report.Summary.Warnings > 0:
		printInfo("\n✓ Warnings found (non-critical)\n")
	default:
		printInfo("\n✓ No issues found\n")
	}
	return nil
}

func formatSummaryOnly(report *bsa.DiagnosticReport) string {
	output := fmt.Sprintf("Diagnostic Summary for %s\n", report.FilePath)
	output += fmt.Sprintf("File size: %d bytes\n", report.FileSize)
	output += fmt.Sprintf("Scan time: %v\n\n", report.ScanTime)
	output += fmt.Sprintf("Critical:  %d\n", report.Summary.Critical)
	output += fmt.Sprintf("Errors:    %d\n", report.Summary.Errors)
	output += fmt.Sprintf("Warnings:  %d\n", report.Summary.Warnings)
	output += fmt.Sprintf("Info:      %d\n", report.Summary.Info)
	return output
}
