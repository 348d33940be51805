package cli

import (
	"github.com/Davincible/shamirstore/internal/tui"
	"github.com/spf13/cobra"
)

func NewTUICommand(env *Env) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a store interactively",
		Long: `Start the terminal editor. From its menu a store can be created, loaded
(encrypted or from plain YAML), edited and saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			env.logger().Debug("starting tui", "path", path)
			return tui.Run(cmd.Context(), tui.Options{
				Session:          s,
				StorePath:        path,
				DisableClipboard: env.config().Security.DisableClipboard,
			})
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", env.config().StorePath(), "Default store file")

	return cmd
}
