package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refcheck/internal/export"
	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/report"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report <verification.json>",
	Short: "Render a saved verification result",
	Long: `Render a verification result written by "refcheck verify -o" as a
Markdown or HTML report, or as BibTeX for the matched references.

Examples:
  refcheck report verdicts.json
  refcheck report verdicts.json --format html -o report.html
  refcheck report verdicts.json --format bibtex > refs.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, html or bibtex")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	res, err := reference.ReadVerification(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	var w io.Writer = os.Stdout
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		defer f.Close()
		w = f
	}

	if err := renderReport(w, reportFormat, res); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

// renderReport writes res to w in the named format.
func renderReport(w io.Writer, format string, res reference.VerificationResult) error {
	switch format {
	case "md", "markdown":
		return report.Markdown(w, res)
	case "html":
		return report.HTML(w, res)
	case "bibtex", "bib":
		_, err := io.WriteString(w, export.BibTeX(res))
		return err
	default:
		return fmt.Errorf("unknown report format %q (valid: md, html, bibtex)", format)
	}
}
