package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/domainsweep/domainsweep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  "Print the merged configuration (defaults, config file, environment) as YAML. The API key is redacted.",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	redacted := *cfg
	redacted.API.Key = redactSecret(cfg.API.Key)
	redacted.Store.AuthToken = redactSecret(cfg.Store.AuthToken)

	encoded, err := yaml.Marshal(&redacted)
	if err != nil {
		return err
	}

	fmt.Print(string(encoded))
	return nil
}

func redactSecret(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return "[redacted]"
}
