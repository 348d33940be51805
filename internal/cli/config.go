package cli

import (
	"fmt"
	"strings"

	"github.com/Davincible/shamirstore/pkg/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewConfigCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration file",
		Long: `Show or change the configuration file. The file is read from $` + config.EnvConfigPath + `,
then $XDG_CONFIG_HOME/shamirstore/config.json, then ~/.config/shamirstore/config.json.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the configuration as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, err := env.configManager()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), manager.GetConfig())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, err := env.configManager()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), manager.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Change one setting",
			Long: "Change one setting and save the file. The result must validate.\n\nSettings:\n  " +
				strings.Join(config.SettingNames, "\n  "),
			Example: `  shamirstore config set defaults.threshold 2
  shamirstore config set security.cipher chacha20-poly1305`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, err := env.configManager()
				if err != nil {
					return err
				}
				if err := manager.Set(args[0], args[1]); err != nil {
					return err
				}
				env.Config = manager.GetConfig()

				env.logger().Debug("config updated", "setting", args[0])
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✓ %s = %s\n", args[0], args[1])
				return nil
			},
		},
	)

	return cmd
}
