// Package cmd holds the cobra commands. Configuration is read into viper
// here and decoded once per command through config.Load.
package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/namelens/searchrelay/internal/config"
	"github.com/namelens/searchrelay/internal/observability"
)

var (
	cfgFile  string
	verbose  bool
	envFiles []string

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Relay chat widget queries to Google Custom Search",
	Long: `searchrelay accepts a chat message on POST /chat, forwards it to the
Google Custom Search JSON API and returns the top results in a compact
JSON shape for a front-end widget.

Use the subcommands to perform specific operations.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Nothing should be emitted before serve configures the exporter.
	observability.DisableTelemetry()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config/searchrelay.yaml or $HOME/.searchrelay.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	observability.InitCLILogger(config.AppName, verbose)

	if err := config.LoadDotEnv(envFiles...); err != nil {
		observability.CLILogger.Warn("Failed to load dotenv file", zap.Error(err))
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	if err := config.BindEnv(v); err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to bind environment", err)
	}

	path := cfgFile
	if path == "" {
		path = discoverConfigFile()
	}
	if path == "" {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		return
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Failed to read config file", err)
		}
		observability.CLILogger.Warn("Error reading config file", zap.String("path", path), zap.Error(err))
		return
	}
	observability.CLILogger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
}

// discoverConfigFile returns the first default config location that exists.
func discoverConfigFile() string {
	candidates := []string{filepath.Join("config", config.AppName+".yaml")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "."+config.AppName+".yaml"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		} else if !errors.Is(err, fs.ErrNotExist) {
			observability.CLILogger.Debug("Skipping config candidate", zap.String("path", candidate), zap.Error(err))
		}
	}
	return ""
}

// loadConfig decodes the effective configuration or exits with CONFIG_INVALID.
func loadConfig() *config.Config {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", err)
	}
	return cfg
}
