package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/daemon"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode (templates from disk, no secure cookies)")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the GoLiveChat-Admin web service",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			closer, err := logger.Init(cfg.Log)
			if err != nil {
				return err //nolint:wrapcheck
			}

			defer func() {
				if cerr := closer.Close(); cerr != nil {
					log.Error().Err(cerr).Msg("failed to flush logs")
				}
			}()

			d, err := daemon.New(&cfg)
			if err != nil {
				log.Error().Err(err).Msg("daemon setup failed")

				return err //nolint:wrapcheck
			}

			return d.Start() //nolint:wrapcheck
		},
	}
)
