package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/config"
	"github.com/spf13/cobra"
)

// runner carries the App built by the root command's pre-run hook to the
// subcommands.
type runner struct {
	app    *App
	stderr io.Writer
}

func (r *runner) close() {
	if r.app != nil {
		_ = r.app.Close()
		r.app = nil
	}
}

// NewRootCommand builds the captchactl command tree. Diagnostics, prompts
// and logs go to stderr.
func NewRootCommand(stderr io.Writer) (*cobra.Command, func()) {
	r := &runner{stderr: stderr}

	root := &cobra.Command{
		Use:   "captchactl",
		Short: "Issue captchas and verify answers through one-time tokens.",
		Long: `captchactl manages captcha clients, issues captchas to them and
exchanges answers for verification tokens that can be activated once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			app, err := NewApp(cmd.Context(), cfg, stderr)
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
	}
	config.BindFlags(root.PersistentFlags())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%s: %w: %w", cmd.CommandPath(), common.ErrInvalidConfiguration, err)
	})

	root.AddCommand(
		newMigrateCommand(r),
		newClientCommand(r),
		newCaptchaCommand(r),
		newTokenCommand(r),
		newCredentialCommand(r),
		newVersionCommand(),
	)

	return root, r.close
}

// Execute runs captchactl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, closeApp := NewRootCommand(stderr)
	defer closeApp()

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		writeError(stderr, err)
	}
	return exitCode(err)
}

func newMigrateCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the store (apply PostgreSQL migrations, check Redis)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.app.rm.RunMigrations(cmd.Context()); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"migrated": true,
				"storage":  r.app.config.Storage,
			})
		},
	}
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s id %q: %w", kind, s, common.ErrorNotFound)
	}
	return id, nil
}
