package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"framewright/internal/integrity"
	"framewright/internal/projfs"
)

// doctor <dir>: sweep a project for missing files, lost baseline
// dependencies and a broken scene. --repair applies the fixes and
// prints the sweep again.
func doctorCmd() *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "doctor <dir>",
		Short: "Check a project directory, optionally repairing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projfs.New(args[0])
			if err != nil {
				return err
			}

			if !repair {
				rep := integrity.Check(root)
				printFindings(cmd, rep)
				if !rep.Healthy() {
					return fmt.Errorf("project has errors; run with --repair to fix")
				}
				return nil
			}

			res, err := integrity.Repair(root, studio.Spec(filepath.Base(args[0]), ""))
			if err != nil {
				return err
			}
			for _, action := range res.Actions {
				fmt.Fprintln(cmd.OutOrStdout(), action)
			}
			printFindings(cmd, res.After)
			if !res.After.Healthy() {
				return fmt.Errorf("errors remain after repair")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "apply fixes for repairable findings")
	return cmd
}

func printFindings(cmd *cobra.Command, rep integrity.Report) {
	for _, f := range rep.Findings {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %s\n", f.Severity, f.File, f.Message)
	}
	if len(rep.Findings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	}
}
