package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"metadactyl/internal/userinfo"
)

// UserInfoCommand creates the user-info command
func UserInfoCommand(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "user-info",
		Short: "Print the user's workspace, creating it on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, err := opts.openDataStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			info, err := userinfo.NewService(ds).GetUserInfo(cmd.Context(), user)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
