package cli

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/auth"
	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/spf13/cobra"
)

type credentialOutput struct {
	Credential string    `json:"credential"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func newCredentialCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Signed client credentials (jwt auth scheme)",
	}

	var (
		secret   string
		validity time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue CLIENT_ID",
		Short: "Sign a credential for a client with its secret",
		Long: `Sign a credential for a client with its secret. Only useful with
auth_scheme jwt. Without --secret the secret is read from the terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.app.config.AuthScheme != auth.SchemeJWT {
				return fmt.Errorf("credential issue needs auth scheme %q, configured %q: %w",
					auth.SchemeJWT, r.app.config.AuthScheme, common.ErrInvalidConfiguration)
			}

			client, err := r.app.clients.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("secret") {
				b, err := readSecret(r.stderr, "Client secret")
				if err != nil {
					return err
				}
				secret = string(b)
				common.WipeByteArray(b)
			}

			now := time.Now()
			signer := &models.Client{ID: client.ID, Secret: secret}
			tok, err := auth.IssueCredential(signer, now, validity)
			if err != nil {
				return err
			}
			// refuse to hand out credentials signed with the wrong secret
			if err := (auth.JWTScheme{}).Authenticate(client, tok); err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), credentialOutput{
				Credential: tok,
				ExpiresAt:  now.Add(validity).UTC(),
			})
		},
	}
	issue.Flags().StringVar(&secret, "secret", "", "client secret")
	issue.Flags().DurationVar(&validity, "validity", time.Hour, "credential lifetime")

	cmd.AddCommand(issue)
	return cmd
}
