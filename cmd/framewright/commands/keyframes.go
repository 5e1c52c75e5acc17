package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"framewright/internal/keyframes"
)

// keyframes [json-array]: repair an interpolation input range so every
// element strictly exceeds its predecessor. With --check the range is
// only inspected and the exit code reports validity.
func keyframesCmd() *cobra.Command {
	var checkOnly bool
	cmd := &cobra.Command{
		Use:   "keyframes [json-array]",
		Short: "Validate or repair an interpolation input range",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if len(args) == 1 {
				raw = []byte(args[0])
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = data
			}

			var seq []float64
			if err := json.Unmarshal(raw, &seq); err != nil {
				return fmt.Errorf("expected a JSON array of numbers: %w", err)
			}

			if checkOnly {
				if !keyframes.IsValidRange(seq) {
					return fmt.Errorf("input range is not strictly increasing")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}

			fixed := keyframes.ValidateInterpolationRange(seq)
			out, err := json.Marshal(fixed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "report validity without repairing")
	return cmd
}
