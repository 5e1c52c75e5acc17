package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time with
// -ldflags "-X framewright/cmd/framewright/commands.version=...".
var version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "framewright %s\n", version)
		},
	}
}
