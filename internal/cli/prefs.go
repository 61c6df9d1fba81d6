package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/codecraft/internal/prefs"
	"github.com/interpretive-systems/codecraft/internal/store"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change editor preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print one preference, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(kv store.KV) error {
				p := prefs.Load(cmd.Context(), kv)
				keys := prefs.Keys()
				if len(args) == 1 {
					keys = args
				}
				for _, k := range keys {
					v, ok := p.Get(k)
					if !ok {
						return fmt.Errorf("unknown preference %q (known: %s)", k, strings.Join(prefs.Keys(), ", "))
					}
					if len(args) == 1 {
						fmt.Fprintln(cmd.OutOrStdout(), v)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, v)
					}
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(kv store.KV) error {
				return prefs.Set(cmd.Context(), kv, args[0], args[1])
			})
		},
	})
	return cmd
}

// withStore opens only the KV backend.
func withStore(cmd *cobra.Command, fn func(kv store.KV) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kv, err := store.Open(cmd.Context(), cfg.StoreConfig())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()
	return fn(kv)
}
