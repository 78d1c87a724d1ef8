package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/outremer-kg/recon-cli/internal/adapters/driven/config/file"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change reviewer identity, the aggregation service endpoint
and data locations. Settings persist in the config file.`,
	RunE: runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value by dotted key.

Common keys:
  reviewer.name      - display name attached to shared decisions
  remote.base_url    - aggregation service endpoint
  data.bundle_dir    - directory holding pipeline bundle files
  wikidata.endpoint  - SPARQL endpoint for open-world discovery`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Reviewer]")
	name := configStore.GetString(configfile.KeyReviewerName)
	if name == "" {
		name = "(anonymous)"
	}
	cmd.Printf("  Name: %s\n", name)
	cmd.Printf("  Client ID: %s\n", configStore.GetString(configfile.KeyClientID))
	cmd.Println()

	cmd.Println("[Remote]")
	baseURL := configStore.GetString(keyRemoteBaseURL)
	if baseURL == "" {
		cmd.Println("  Endpoint: (not set, reviewing offline)")
	} else {
		cmd.Printf("  Endpoint: %s\n", baseURL)
	}
	cmd.Println()

	cmd.Println("[Data]")
	if dir := configStore.GetString(keyBundleDir); dir != "" {
		cmd.Printf("  Bundle directory: %s\n", dir)
	} else {
		cmd.Println("  Bundle directory: output")
	}
	if endpoint := configStore.GetString(keyWikidataEndpoint); endpoint != "" {
		cmd.Printf("  Wikidata endpoint: %s\n", endpoint)
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}
