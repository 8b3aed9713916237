package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"metadactyl/internal/submission"
)

// UniqueNameCommand creates the unique-name command
func UniqueNameCommand(opts *rootOptions) *cobra.Command {
	var owner, name string

	cmd := &cobra.Command{
		Use:   "unique-name",
		Short: "Print a job name that the owner has not used yet",
		Long: `Print a job name that the owner has not used yet.

With the suffix strategy the name is returned as given when it is free,
otherwise the smallest free "-N" suffix is appended.

Examples:
  metadactyl unique-name --owner=alice --name="word count"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ds, err := opts.openDataStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			u, err := opts.uniquifier(cfg, ds)
			if err != nil {
				return err
			}
			unique, err := u.EnsureUniqueName(cmd.Context(), owner, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), unique)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Username that owns the job (required)")
	cmd.Flags().StringVar(&name, "name", "", "Requested job name (required)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// SubmitJobCommand creates the submit-job command
func SubmitJobCommand(opts *rootOptions) *cobra.Command {
	var (
		user string
		exp  submission.Experiment
	)

	cmd := &cobra.Command{
		Use:   "submit-job",
		Short: "Record a job submission under a unique name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ds, err := opts.openDataStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			u, err := opts.uniquifier(cfg, ds)
			if err != nil {
				return err
			}
			job, err := submission.NewSubmitter(ds, u).Submit(cmd.Context(), user, exp)
			if err != nil {
				return fmt.Errorf("failed to submit job: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(job)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Submitting username (required)")
	cmd.Flags().StringVar(&exp.Name, "name", "", "Requested job name (required)")
	cmd.Flags().StringVar(&exp.AnalysisID, "analysis", "", "Analysis to run (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("analysis")

	return cmd
}
