package cli

import (
	"github.com/spf13/cobra"
)

type registrationOutput struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

func newClientCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage captcha clients",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "register",
		Short: "Register a client and print its id and secret",
		Long: `Register a client and print its id and secret. The secret is shown
only once; store it safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := r.app.clients.Register(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), registrationOutput{
				ClientID: reg.Client.ID,
				Secret:   reg.Secret,
			})
		},
	})

	return cmd
}
