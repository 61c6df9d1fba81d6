package cli

import (
	"github.com/spf13/cobra"

	"github.com/interpretive-systems/codecraft/internal/tui"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd)
		},
	}
}

func runEdit(cmd *cobra.Command) error {
	return withApp(cmd, func(a *app) error {
		opts := tui.Options{
			Editor:       a.editor,
			Chat:         a.chat,
			Autocomplete: a.complete,
			Provider:     a.provider,
		}
		if a.client != nil {
			opts.Client = a.client
		}
		return tui.Run(cmd.Context(), opts)
	})
}
