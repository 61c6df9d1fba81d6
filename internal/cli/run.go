package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errRunFailed makes the process exit non-zero after the error was printed.
var errRunFailed = errors.New("run failed")

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run the active file, or the file at the given path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if len(args) == 1 {
					if err := activate(a, args[0]); err != nil {
						return err
					}
				}
				if lang := mustGetStringFlag(cmd, "language"); lang != "" {
					if err := a.editor.SetLanguage(lang); err != nil {
						return err
					}
				}
				f, ok := a.editor.ActiveFile()
				if !ok {
					return errors.New("no file open")
				}

				res, err := a.editor.RunCode(cmd.Context())
				if err != nil {
					return fmt.Errorf("run %s: %w", a.editor.Path(f.ID), err)
				}
				out := cmd.OutOrStdout()
				if res.Output != "" {
					fmt.Fprint(out, res.Output)
					if res.Output[len(res.Output)-1] != '\n' {
						fmt.Fprintln(out)
					}
				}
				if res.Failed() {
					fmt.Fprintln(cmd.ErrOrStderr(), res.ErrorText())
					return errRunFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().StringP("language", "l", "", "Run as this language instead of the file's")
	return cmd
}

// activate makes the file at path the active one.
func activate(a *app, path string) error {
	n, ok := a.editor.Find(path)
	if !ok {
		return fmt.Errorf("%s: no such file", path)
	}
	if n.IsFolder() {
		return fmt.Errorf("%s is a folder", path)
	}
	a.editor.SetActiveFile(n.ID)
	return nil
}
