package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
)

// NewRootCommand builds the ufwtail command.
func NewRootCommand(version string) *cobra.Command {
	cmd, _ := newRootCommand(version)
	return cmd
}

func newRootCommand(version string) (*cobra.Command, *Flags) {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:   "ufwtail [path]",
		Short: "Live, filterable viewer for UFW firewall logs",
		Long: `ufwtail follows a UFW firewall log, parses every entry and shows the
matching ones in an interactive table annotated with well-known service names.

Without a path it tries /var/log/ufw-firewall.log, /var/log/ufw.log and
/var/log/kern.log in that order.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd, flags, args)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return errors.NewValidationError("logging", err.Error(), nil)
			}
			defer logger.Close()

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.NewValidationError("flags", err.Error(), nil)
	})
	flags.register(cmd)
	return cmd, flags
}

// ExitCode maps an error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsValidation(err):
		return 2
	default:
		return 1
	}
}

// Describe renders err for the terminal.
func Describe(err error) string {
	if errors.IsSourceUnavailable(err) {
		return fmt.Sprintf("%s: %v\nPass the log path explicitly, e.g. ufwtail /var/log/ufw.log", errors.CodeSourceUnavailable, err)
	}
	return err.Error()
}
