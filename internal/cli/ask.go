package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/codecraft/internal/ai"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Ask the assistant, or run explain/fix/optimize on a file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := mustGetStringFlag(cmd, "action")
			file := mustGetStringFlag(cmd, "file")
			selection := mustGetStringFlag(cmd, "selection")
			prompt := strings.Join(args, " ")
			if action == "" && prompt == "" {
				return fmt.Errorf("a prompt or --action is required")
			}

			return withApp(cmd, func(a *app) error {
				if file != "" {
					if err := activate(a, file); err != nil {
						return err
					}
				}
				if selection != "" {
					code, err := readSelection(selection)
					if err != nil {
						return err
					}
					a.chat.SetSelectedCode(code)
				}

				var (
					ch  <-chan ai.Update
					err error
				)
				if action != "" {
					act, perr := ai.ParseAction(action)
					if perr != nil {
						return perr
					}
					st := a.editor.State()
					ch, err = a.chat.QuickAction(cmd.Context(), act, st.Language, a.editor.Code(), st.Error)
				} else {
					ch, err = a.chat.Send(cmd.Context(), prompt, true)
				}
				if err != nil {
					return err
				}
				return printStream(cmd.OutOrStdout(), ch)
			})
		},
	}
	cmd.Flags().StringP("action", "a", "", "Quick action: explain, fix or optimize")
	cmd.Flags().StringP("file", "f", "", "Use the file at this path as the active file")
	cmd.Flags().String("selection", "", "Read selected code from this local file (- for stdin)")
	return cmd
}

// printStream writes each chunk as it arrives. The channel is drained even
// after a write error.
func printStream(w io.Writer, ch <-chan ai.Update) error {
	var (
		printed int
		last    ai.Update
	)
	for u := range ch {
		if c := u.Message.Content; len(c) > printed {
			fmt.Fprint(w, c[printed:])
			printed = len(c)
		}
		last = u
	}
	if printed > 0 {
		fmt.Fprintln(w)
	}
	if last.Err != nil {
		return fmt.Errorf("%s: %w", ai.FailureNotice, last.Err)
	}
	return nil
}

func readSelection(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read selection: %w", err)
	}
	return string(b), nil
}
