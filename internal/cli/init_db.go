package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitDBCommand creates the init-db command
func InitDBCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, err := opts.openDataStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			if err := ds.InitDB(cmd.Context()); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database initialized successfully.")
			return nil
		},
	}
}
