package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"framewright/internal/preview"
)

// preview <dir>: install dependencies if needed, start the studio dev
// server and stream its log. Ctrl-C stops the server and exits.
func previewCmd() *cobra.Command {
	var portMin, portMax int
	cmd := &cobra.Command{
		Use:   "preview <dir>",
		Short: "Run the studio dev server for a project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if _, err := os.Stat(filepath.Join(dir, "package.json")); err != nil {
				return fmt.Errorf("%s is not a project directory: %w", dir, err)
			}

			sup := preview.New(preview.Config{PortMin: portMin, PortMax: portMax})
			defer sup.StopAll()

			id := filepath.Base(dir)
			port, err := sup.Start(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Previewing %s on http://localhost:%d\n", id, port)

			history, ch, cancel, err := sup.Subscribe(id)
			if err != nil {
				return err
			}
			defer cancel()
			for _, line := range history {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			for {
				select {
				case line, ok := <-ch:
					if !ok {
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
				case <-quit:
					fmt.Fprintln(cmd.ErrOrStderr(), "Stopping preview")
					return nil
				}
			}
		},
	}
	cmd.Flags().IntVar(&portMin, "port-min", 3000, "lowest studio port to try")
	cmd.Flags().IntVar(&portMax, "port-max", 3099, "highest studio port to try")
	return cmd
}
