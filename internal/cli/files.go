package cli

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/langs"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage the project tree",
	}
	cmd.AddCommand(
		newFilesLsCmd(),
		newFilesNewCmd(),
		newFilesMkdirCmd(),
		newFilesRmCmd(),
		newFilesMvCmd(),
		newFilesCatCmd(),
		newFilesImportCmd(),
	)
	return cmd
}

func newFilesLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List every file and folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				listTree(cmd.OutOrStdout(), a.editor)
				return nil
			})
		},
	}
}

func listTree(w io.Writer, ed *editor.Editor) {
	st := ed.State()
	for _, e := range ed.Entries(true) {
		name := e.Node.Name
		marker := " "
		switch {
		case e.Node.IsFolder():
			name += "/"
		case e.Node.ID == st.ActiveFileID:
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s%s\n", marker, strings.Repeat("  ", e.Depth), name)
	}
}

// splitPath resolves the parent folder of a slash separated path.
func splitPath(ed *editor.Editor, p string) (parentID, name string, err error) {
	p = strings.Trim(p, "/")
	dir, name := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	if name == "" {
		return "", "", fmt.Errorf("%q: empty name", p)
	}
	if dir == "" {
		return "", name, nil
	}
	n, ok := ed.Find(dir)
	if !ok || !n.IsFolder() {
		return "", "", fmt.Errorf("%s: no such folder", dir)
	}
	return n.ID, name, nil
}

func newFilesNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <path>",
		Short: "Create a file with starter code and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				parent, name, err := splitPath(a.editor, args[0])
				if err != nil {
					return err
				}
				lang := a.editor.State().Language
				if l, ok := langs.ByExtension(name); ok {
					lang = l.ID
				}
				_, err = a.editor.AddFile(parent, name, langs.DefaultCode(lang))
				return err
			})
		},
	}
}

func newFilesMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				parent, name, err := splitPath(a.editor, args[0])
				if err != nil {
					return err
				}
				_, err = a.editor.CreateFolderNamed(parent, name)
				return err
			})
		},
	}
}

func newFilesRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file, or a folder with everything inside it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, ok := a.editor.Find(args[0])
				if !ok {
					return fmt.Errorf("%s: not found", args[0])
				}
				removed := a.editor.DeleteNode(n.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d item(s)\n", len(removed))
				return nil
			})
		},
	}
}

func newFilesMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <folder>",
		Short: "Move a node into a folder (/ for the top level)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, ok := a.editor.Find(args[0])
				if !ok {
					return fmt.Errorf("%s: not found", args[0])
				}
				parent := ""
				if dst := strings.Trim(args[1], "/"); dst != "" {
					p, ok := a.editor.Find(dst)
					if !ok {
						return fmt.Errorf("%s: not found", dst)
					}
					parent = p.ID
				}
				return a.editor.MoveNode(n.ID, parent)
			})
		},
	}
}

func newFilesCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				n, ok := a.editor.Find(args[0])
				if !ok || n.IsFolder() {
					return fmt.Errorf("%s: no such file", args[0])
				}
				_, err := io.WriteString(cmd.OutOrStdout(), n.Content)
				return err
			})
		},
	}
}

func newFilesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <local-file>...",
		Short: "Copy local files into the project tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			into := mustGetStringFlag(cmd, "into")
			return withApp(cmd, func(a *app) error {
				parent := ""
				if into = strings.Trim(into, "/"); into != "" {
					p, ok := a.editor.Find(into)
					if !ok || !p.IsFolder() {
						return fmt.Errorf("%s: no such folder", into)
					}
					parent = p.ID
				}
				for _, local := range args {
					b, err := os.ReadFile(local)
					if err != nil {
						return fmt.Errorf("import: %w", err)
					}
					n, err := a.editor.AddFile(parent, filepath.Base(local), string(b))
					if err != nil {
						return fmt.Errorf("import %s: %w", local, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", a.editor.Path(n.ID), n.Language)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("into", "", "Destination folder in the project")
	return cmd
}
