package cli

import (
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/config"
	"github.com/spf13/cobra"
)

type captchaOutput struct {
	CaptchaID int64     `json:"captcha_id"`
	Created   time.Time `json:"created"`
	ExpiresAt time.Time `json:"expires_at"`
	Answer    string    `json:"answer,omitempty"`
}

type tokenOutput struct {
	TokenID   int64 `json:"token_id"`
	CaptchaID int64 `json:"captcha_id"`
}

func newCaptchaCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "captcha",
		Short: "Issue and answer captchas",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create CLIENT_ID",
		Short: "Issue a new captcha to a client",
		Long: `Issue a new captcha to a client. In test mode the answer is printed
as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.app.captchas.CreateNew(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := captchaOutput{
				CaptchaID: c.ID,
				Created:   c.Created,
				ExpiresAt: c.Created.Add(r.app.config.CaptchaTimeout),
			}
			if r.app.config.Mode == config.ModeTest {
				out.Answer = c.Answer
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "solve CLIENT_ID CAPTCHA_ID ANSWER",
		Short: "Submit an answer and receive a verification token",
		Long: `Submit an answer to an active captcha. The answer is not checked
yet: activate the printed token to learn the verdict.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			captchaID, err := parseID("captcha", args[1])
			if err != nil {
				return err
			}

			tok, err := r.app.tokens.Create(cmd.Context(), args[0], captchaID, args[2])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{TokenID: tok.ID, CaptchaID: tok.CaptchaID})
		},
	})

	return cmd
}
