// Package cli implements the command-line interface. Commands are thin
// adapters over the driving ports: they parse arguments, call a service
// and format output. Service wiring happens once in bootstrap, lazily on
// first command execution, so tests can inject fakes beforehand.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outremer-kg/recon-cli/internal/adapters/driven/bundle"
	configfile "github.com/outremer-kg/recon-cli/internal/adapters/driven/config/file"
	"github.com/outremer-kg/recon-cli/internal/adapters/driven/remote"
	"github.com/outremer-kg/recon-cli/internal/adapters/driven/storage/sqlite"
	"github.com/outremer-kg/recon-cli/internal/adapters/driven/wikidata"
	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driving"
	"github.com/outremer-kg/recon-cli/internal/core/services"
	"github.com/outremer-kg/recon-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Config keys understood by the CLI.
const (
	keyBundleDir        = "data.bundle_dir"
	keyRemoteBaseURL    = "remote.base_url"
	keyWikidataEndpoint = "wikidata.endpoint"
)

var (
	verbose   bool
	dataDir   string
	configDir string
	bundleDir string
)

// Services wired by bootstrap or injected by tests.
var (
	configStore     driven.ConfigStore
	bundleStore     driven.BundleStore
	authorityIndex  driven.AuthorityIndex
	reviewService   driving.ReviewService
	matchService    driving.MatchService
	exportService   driving.ExportService
	currentReviewer domain.Reviewer
)

var rootCmd = &cobra.Command{
	Use:   "outremer",
	Short: "Review entity matches in crusade-era documents",
	Long: `Reconciles person mentions extracted from historical documents against
an authority list of known individuals, and records reviewer decisions.

Decisions are stored locally first and shared with the community
aggregation service in the background. Reviewing works offline; pending
pushes are retried on the next decision.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return bootstrap()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		// Short-lived invocations must not lose their background push.
		if reviewService != nil {
			reviewService.Drain()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data directory (default ~/.outremer/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "override the config directory (default ~/.outremer)")
	rootCmd.PersistentFlags().StringVar(&bundleDir, "bundles", "", "directory holding pipeline bundle files")
}

// bootstrap wires adapters and services from configuration. A test that
// pre-populates any of the service variables skips wiring entirely.
func bootstrap() error {
	if reviewService != nil || configStore != nil {
		return nil
	}

	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store

	currentReviewer, err = configfile.LoadReviewer(configStore)
	if err != nil {
		return fmt.Errorf("loading reviewer identity: %w", err)
	}

	dir := bundleDir
	if dir == "" {
		dir = configStore.GetString(keyBundleDir)
	}
	if dir == "" {
		dir = "output"
	}
	bundles, err := bundle.NewStore(dir)
	if err != nil {
		return fmt.Errorf("opening bundle directory: %w", err)
	}
	bundleStore = bundles
	authorityIndex = bundle.NewAuthority(dir)
	logger.Debug("bundle directory: %s", dir)

	decisions, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening decision store: %w", err)
	}
	logger.Debug("decision database: %s", decisions.Path())

	// No configured endpoint means offline-only review.
	var agg driven.AggregationClient
	if baseURL := configStore.GetString(keyRemoteBaseURL); baseURL != "" {
		agg = remote.NewClient(baseURL)
		logger.Debug("aggregation service: %s", baseURL)
	} else {
		logger.Debug("no aggregation service configured, reviewing offline")
	}

	endpoint := configStore.GetString(keyWikidataEndpoint)
	discovery := wikidata.NewClient(endpoint)

	index := services.NewTallyIndex()
	matchService = services.NewMatcher(discovery)
	reviewService = services.NewReview(decisions, agg, index, currentReviewer)
	exportService = services.NewExporter(bundleStore, decisions, index)

	return nil
}

// Execute runs the root command. Called once from main.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
