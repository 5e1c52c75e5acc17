package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"framewright/internal/scaffold"
)

var (
	configPath string
	fps        int

	studio scaffold.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:           "framewright",
		Short:         "Deterministic video scenes from interactive React source",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if configPath == "" {
				configPath = os.Getenv("FRAMEWRIGHT_CONFIG")
			}
			cfg, err := scaffold.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if fps > 0 {
				cfg.FPS = fps
			}
			studio = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "studio config file (default $FRAMEWRIGHT_CONFIG)")
	root.PersistentFlags().IntVar(&fps, "fps", 0, "override the configured frame rate")

	root.AddCommand(convertCmd(), keyframesCmd(), scaffoldCmd(), doctorCmd(), previewCmd(), versionCmd())
	return root.Execute()
}
