package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"framewright/internal/projfs"
	"framewright/internal/scaffold"
)

// scaffold <dir>: lay down a complete preview project. --scene installs
// an existing scene file verbatim; otherwise the starter scene is
// rendered. Pipe through `framewright convert` first to scaffold from
// interactive source.
func scaffoldCmd() *cobra.Command {
	var name string
	var sceneFile string
	cmd := &cobra.Command{
		Use:   "scaffold <dir>",
		Short: "Write a ready-to-preview project into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			root, err := projfs.New(dir)
			if err != nil {
				return err
			}

			scene := ""
			if sceneFile != "" {
				data, err := os.ReadFile(sceneFile)
				if err != nil {
					return err
				}
				scene = string(data)
			}
			if name == "" {
				name = filepath.Base(dir)
			}

			if err := scaffold.Scaffold(root, studio.Spec(name, scene)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scaffolded %s into %s\n", name, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name (default: directory basename)")
	cmd.Flags().StringVar(&sceneFile, "scene", "", "scene file to install instead of the starter scene")
	return cmd
}
