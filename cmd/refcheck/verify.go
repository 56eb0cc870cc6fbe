package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/refcheck/internal/config"
	"github.com/matsen/refcheck/internal/export"
	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/verify"
)

// verifyFlags are shared by verify and run.
type verifyFlags struct {
	sources     sourceFlags
	concurrency int
	report      string
	bibtex      string
	output      string
}

func (f *verifyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sources.only, "sources", "", "Comma-separated sources to ask, in fixed order (crossref,semantic_scholar,google_scholar)")
	cmd.Flags().BoolVar(&f.sources.web, "web", false, "Also fall back to Google Scholar (slow, rate limited)")
	cmd.Flags().StringVar(&f.sources.cache, "cache", "", "SQLite file caching source responses")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "References verified at once (default from config)")
	cmd.Flags().StringVar(&f.report, "report", "", "Write a report to this file (.html for HTML, otherwise Markdown)")
	cmd.Flags().StringVar(&f.bibtex, "bibtex", "", "Write canonical BibTeX for matched references to this file")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Also write the JSON result to this file")
}

var verifyOpts verifyFlags

var verifyCmd = &cobra.Command{
	Use:   "verify <extraction.json>",
	Short: "Verify extracted references against bibliographic sources",
	Long: `Verify the references of an extraction result (the output of
"refcheck extract") against bibliographic sources.

Sources are asked in order: crossref, semantic_scholar, then google_scholar
when enabled. A reference stops at the first verified match; otherwise the
best candidate across all sources decides between ambiguous and not-found.
An unreachable source is skipped, never fatal.

Interrupting stops references that have not started; the partial result is
still printed.

Examples:
  refcheck verify refs.json
  refcheck verify refs.json --web --report report.html`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyOpts.register(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	res, err := reference.ReadExtraction(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return verifyAndReport(cmd.Context(), res, cfg, verifyOpts)
}

// verifyAndReport runs verification and writes every requested output.
// An interrupted run still writes its partial result before exiting.
func verifyAndReport(ctx context.Context, res reference.ExtractionResult, cfg config.Config, f verifyFlags) error {
	cfg, err := f.sources.apply(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if f.concurrency > 0 {
		cfg.Concurrency = f.concurrency
	}

	logger := newLogger()
	sources, closeSources, err := buildSources(cfg, logger)
	if err != nil {
		exitWithError(exitCode(err), "%v", err)
	}
	defer closeSources()

	opts := cfg.VerifyOptions()
	opts.Logger = logger
	v := verify.New(sources, opts)
	logger.Debug("verifying", "references", len(res.References), "sources", strings.Join(v.Sources(), ","))

	out, runErr := v.Run(ctx, res)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		exitWithError(ExitError, "%v", runErr)
	}

	if f.output != "" {
		if err := reference.WriteJSON(f.output, out); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}
	if f.report != "" {
		if err := writeReport(f.report, out); err != nil {
			exitWithError(ExitError, "writing report: %v", err)
		}
	}

	if f.bibtex != "" {
		if err := os.WriteFile(f.bibtex, []byte(export.BibTeX(out)), 0644); err != nil {
			exitWithError(ExitError, "writing bibtex: %v", err)
		}
	}

	if humanOutput {
		printVerificationHuman(out)
	} else if err := outputJSON(out); err != nil {
		return err
	}

	if runErr != nil {
		closeSources()
		exitWithError(ExitError, "%v", runErr)
	}
	return nil
}

func writeReport(path string, res reference.VerificationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	format := "md"
	if strings.EqualFold(filepath.Ext(path), ".html") {
		format = "html"
	}
	if err := renderReport(f, format, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
