package cli

import (
	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/spf13/cobra"
)

func parseTokenArgs(args []string) (clientID string, captchaID, tokenID int64, err error) {
	if captchaID, err = parseID("captcha", args[1]); err != nil {
		return "", 0, 0, err
	}
	if tokenID, err = parseID("token", args[2]); err != nil {
		return "", 0, 0, err
	}
	return args[0], captchaID, tokenID, nil
}

func newTokenCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Activate verification tokens and read their result",
	}

	var credential string
	activate := &cobra.Command{
		Use:   "activate CLIENT_ID CAPTCHA_ID TOKEN_ID",
		Short: "Check the token's answer; a token can be activated once",
		Long: `Check the token's answer against its captcha. The captcha is
consumed whatever the verdict. Without --credential the credential is read
from the terminal.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, captchaID, tokenID, err := parseTokenArgs(args)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("credential") {
				b, err := readSecret(r.stderr, "Client credential")
				if err != nil {
					return err
				}
				credential = string(b)
				common.WipeByteArray(b)
			}

			res, err := r.app.tokens.Activate(cmd.Context(), clientID, captchaID, tokenID, credential)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	activate.Flags().StringVar(&credential, "credential", "", "client secret, or a signed credential for the jwt scheme")

	result := &cobra.Command{
		Use:   "result CLIENT_ID CAPTCHA_ID TOKEN_ID",
		Short: "Print the verdict of an activated token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, captchaID, tokenID, err := parseTokenArgs(args)
			if err != nil {
				return err
			}

			res, err := r.app.tokens.ResultOfCheck(cmd.Context(), clientID, captchaID, tokenID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.AddCommand(activate, result)
	return cmd
}
