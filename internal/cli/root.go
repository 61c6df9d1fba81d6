// Package cli wires the codecraft commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codecraft",
		Short: "Terminal code editor with remote execution and an AI assistant",
		Long: "Codecraft: edit a virtual project tree, run it on a Piston server and\n" +
			"ask a local Ollama model about the code.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "Path to config.yaml (default: <data-dir>/config.yaml)")
	pf.String("data-dir", "", "Directory for state, history and logs")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Log destination (default: <data-dir>/codecraft.log)")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address")

	root.AddCommand(
		newEditCmd(),
		newRunCmd(),
		newAskCmd(),
		newFilesCmd(),
		newPrefsCmd(),
		newPingCmd(),
	)

	return root
}

func mustGetStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flag error:", err)
		os.Exit(2)
	}
	return v
}
