// Package app implements the main application commands.
package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
)

const (
	envPrefix     = "GO_LIVECHAT_ADMIN"
	keyConfigPath = "config_path"
)

var rootCmd = &cobra.Command{
	Use:   "go-livechat-admin",
	Short: "GoLiveChat-Admin is the admin dashboard API of a live chat service",
	Long: `GoLiveChat-Admin signs operators in, checks their permissions and proxies
the live chat configuration (websites, widgets, webhooks, templates and more)
to the chat backend.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().String("config", config.DefaultPath,
		"directory holding main.toml (env "+envPrefix+"_CONFIG_PATH)")

	_ = viper.BindPFlag(keyConfigPath, rootCmd.PersistentFlags().Lookup("config"))

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// configPath is the flag when given, then the environment, then the default.
func configPath() string {
	path := viper.GetString(keyConfigPath)
	if path == "" {
		return config.DefaultPath
	}

	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return path
}

// loadConfig reads main.toml from configPath.
func loadConfig() (config.Config, error) {
	return config.ReadConfig(configPath()) //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}
