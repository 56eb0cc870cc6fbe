package main

import (
	"github.com/spf13/cobra"
)

var runOpts struct {
	extract extractFlags
	verify  verifyFlags
}

var runCmd = &cobra.Command{
	Use:   "run <file.pdf|file.txt>",
	Short: "Extract and verify the references of a paper in one step",
	Long: `Extract the reference list of a paper and verify every entry.

Equivalent to "refcheck extract" followed by "refcheck verify", without
the intermediate file. Accepts the flags of both.

Examples:
  refcheck run paper.pdf --human
  refcheck run paper.pdf --report report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runOpts.extract.register(runCmd)
	runOpts.verify.register(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	res, err := extractFile(args[0], runOpts.extract, cfg)
	if err != nil {
		exitWithError(exitCode(err), "%v", err)
	}
	return verifyAndReport(cmd.Context(), res, cfg, runOpts.verify)
}
