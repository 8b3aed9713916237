package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"metadactyl/internal/config"
	"metadactyl/internal/datastore"
	"metadactyl/internal/naming"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	storeType  string
	dbConnStr  string
	metricsOut string

	registry *prometheus.Registry
}

// NewRootCommand creates the metadactyl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{registry: prometheus.NewRegistry()}

	cmd := &cobra.Command{
		Use:   "metadactyl",
		Short: "Job metadata and naming service",
		Long: `Manage analysis job metadata.

The data store is chosen by METADACTYL_STORE_TYPE (postgresql, sqlite or mock),
an optional YAML file named by METADACTYL_CONFIG, or the --store flag.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.metricsOut == "" {
				return nil
			}
			if err := prometheus.WriteToTextfile(opts.metricsOut, opts.registry); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.storeType, "store", "", "Data store type: postgresql, sqlite or mock (overrides env var)")
	cmd.PersistentFlags().StringVar(&opts.dbConnStr, "db", "", "Database connection string or SQLite path (overrides env var)")
	cmd.PersistentFlags().StringVar(&opts.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file after the command completes")

	cmd.AddCommand(
		InitDBCommand(opts),
		UniqueNameCommand(opts),
		SubmitJobCommand(opts),
		UserInfoCommand(opts),
		ImportCommand(opts),
		ExportCommand(opts),
	)
	return cmd
}

// loadConfig reads the configuration and applies the command-line overrides.
func (o *rootOptions) loadConfig() (*config.Config, datastore.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, datastore.Config{}, err
	}
	if o.storeType != "" {
		cfg.Store.Type = o.storeType
	}

	dsConfig := cfg.DataStore()
	if o.dbConnStr != "" {
		switch dsConfig.Type {
		case datastore.SQLiteStore:
			dsConfig.SQLitePath = o.dbConnStr
		case datastore.MockStore:
			dsConfig.MockDataPath = o.dbConnStr
		default:
			dsConfig.ConnectionString = o.dbConnStr
		}
	}
	return cfg, dsConfig, nil
}

// openDataStore connects to the configured data store.
func (o *rootOptions) openDataStore(ctx context.Context) (*config.Config, datastore.DataStore, error) {
	cfg, dsConfig, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	switch {
	case cfg.IsMockMode():
		log.Printf("Running in MOCK mode (data from: %s)", dsConfig.MockDataPath)
	case dsConfig.Type == datastore.SQLiteStore:
		log.Printf("Running in SQLITE mode (database: %s)", dsConfig.SQLitePath)
	default:
		log.Printf("Running in DATABASE mode (%s)", maskConnectionString(dsConfig.ConnectionString))
	}

	ds, err := datastore.NewDataStore(ctx, dsConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize data store: %w", err)
	}
	return cfg, ds, nil
}

// uniquifier builds the configured naming strategy on top of the store's name lookup.
func (o *rootOptions) uniquifier(cfg *config.Config, ds datastore.DataStore) (naming.Uniquifier, error) {
	finder, err := naming.NewInstrumentedFinder(datastore.NameFinder(ds), o.registry)
	if err != nil {
		return nil, err
	}
	return naming.NewUniquifier(cfg.NamingStrategy(), finder)
}
