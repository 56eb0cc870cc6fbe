package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/refcheck/internal/reference"
)

// StyleInfo describes one supported citation style.
type StyleInfo struct {
	Style      reference.Style `json:"style"`
	Convention string          `json:"convention"`
	Aliases    []string        `json:"aliases"`
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List supported citation styles",
	Long: `List the citation styles the extractor understands, in the order used to
break ties during detection. Any listed name or alias is accepted by --style.`,
	Args: cobra.NoArgs,
	RunE: runStyles,
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}

func runStyles(cmd *cobra.Command, args []string) error {
	infos := make([]StyleInfo, 0, len(reference.Styles))
	for _, s := range reference.Styles {
		infos = append(infos, StyleInfo{Style: s, Convention: s.Convention(), Aliases: s.Aliases()})
	}

	if !humanOutput {
		return outputJSON(infos)
	}
	for _, info := range infos {
		outputHuman("%-26s %s\n", info.Style, strings.Join(info.Aliases, ", "))
	}
	return nil
}
