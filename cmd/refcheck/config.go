package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/refcheck/internal/config"
)

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path   string        `json:"path"`
	Exists bool          `json:"exists"`
	Config config.Config `json:"config"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration a run would use: the config file merged over the
defaults, with environment overrides (CROSSREF_MAILTO, S2_API_KEY,
REFCHECK_CACHE) applied. API keys are redacted.

With --human the configuration is printed as YAML, ready to be saved as
a config file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	_, statErr := os.Stat(path)
	cfg := loadConfig().Redacted()

	if !humanOutput {
		return outputJSON(ConfigResponse{Path: path, Exists: statErr == nil, Config: cfg})
	}

	if statErr != nil {
		outputHuman("# %s (not found, using defaults)\n", path)
	} else {
		outputHuman("# %s\n", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	outputHuman("%s", data)
	return nil
}
