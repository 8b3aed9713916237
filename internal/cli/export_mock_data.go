package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"metadactyl/internal/datastore"
	"metadactyl/internal/mockstore"
)

const defaultFixtureDir = "data/mocks"

// ExportCommand creates the export command
func ExportCommand(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export store records to JSON fixture files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, err := opts.openDataStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Exporting records to %s...\n", dir)
			return mockstore.Export(cmd.Context(), ds, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultFixtureDir, "Output directory")
	return cmd
}

// ImportCommand creates the import command
func ImportCommand(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load JSON fixture files into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, err := opts.openDataStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			n, err := RunImportMockData(cmd.Context(), ds, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", n, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultFixtureDir, "Fixture directory")
	return cmd
}

// RunImportMockData saves the fixtures in dir into ds and returns the number of records written.
func RunImportMockData(ctx context.Context, ds datastore.DataStore, dir string) (int, error) {
	fixtures, err := mockstore.Load(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	users, err := fixtures.FindAllUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read user fixtures: %w", err)
	}
	for i := range users {
		if err := ds.SaveUser(ctx, &users[i]); err != nil {
			return count, fmt.Errorf("failed to import user %s: %w", users[i].Username, err)
		}
		count++
	}
	workspaces, err := fixtures.FindAllWorkspaces(ctx)
	if err != nil {
		return count, fmt.Errorf("failed to read workspace fixtures: %w", err)
	}
	for i := range workspaces {
		if err := ds.SaveWorkspace(ctx, &workspaces[i]); err != nil {
			return count, fmt.Errorf("failed to import workspace %s: %w", workspaces[i].ID, err)
		}
		count++
	}
	jobs, err := fixtures.FindAllJobs(ctx)
	if err != nil {
		return count, fmt.Errorf("failed to read job fixtures: %w", err)
	}
	for i := range jobs {
		if err := ds.SaveJob(ctx, &jobs[i]); err != nil {
			return count, fmt.Errorf("failed to import job %s: %w", jobs[i].ID, err)
		}
		count++
	}
	genomes, err := fixtures.FindAllReferenceGenomes(ctx)
	if err != nil {
		return count, fmt.Errorf("failed to read reference genome fixtures: %w", err)
	}
	for i := range genomes {
		if err := ds.SaveReferenceGenome(ctx, &genomes[i]); err != nil {
			return count, fmt.Errorf("failed to import reference genome %s: %w", genomes[i].Name, err)
		}
		count++
	}
	return count, nil
}
