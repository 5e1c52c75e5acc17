package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"framewright/internal/convert"
)

// convert [file]: read JSX/TSX from a file or stdin, write the
// frame-driven rewrite to --out or stdout. Conversion notes go to
// stderr so the output stays pipeable.
func convertCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Rewrite interactive React source into a frame-driven scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			res, err := convert.ConvertWithOptions(string(source), convert.Options{FPS: studio.FPS})
			if err != nil {
				return err
			}

			for _, n := range res.Notes {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", n.Kind, n.Message)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "component %s (%s)\n", res.ComponentName, res.Pattern)

			if outPath != "" {
				return os.WriteFile(outPath, []byte(res.Code), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the converted scene to a file instead of stdout")
	return cmd
}

func readSource(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(cmd.InOrStdin())
}
