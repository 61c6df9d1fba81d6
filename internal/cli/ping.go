package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the assistant is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				defer cancel()
				name := a.provider.Name()
				if !a.provider.Ping(ctx) {
					return fmt.Errorf("%s is offline", name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is online\n", name)
				return nil
			})
		},
	}
}
