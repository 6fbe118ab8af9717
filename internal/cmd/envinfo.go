package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/namelens/searchrelay/internal/config"
)

var envInfoFormat string

// envInfo is the effective, secret-free view of the running configuration.
type envInfo struct {
	Application struct {
		Name      string `json:"name" yaml:"name"`
		Version   string `json:"version" yaml:"version"`
		Commit    string `json:"commit" yaml:"commit"`
		BuildDate string `json:"build_date" yaml:"build_date"`
	} `json:"application" yaml:"application"`
	SSOT struct {
		Gofulmen string `json:"gofulmen" yaml:"gofulmen"`
		Crucible string `json:"crucible" yaml:"crucible"`
	} `json:"ssot" yaml:"ssot"`
	Runtime struct {
		GoVersion string `json:"go_version" yaml:"go_version"`
		GOOS      string `json:"goos" yaml:"goos"`
		GOARCH    string `json:"goarch" yaml:"goarch"`
		NumCPU    int    `json:"num_cpu" yaml:"num_cpu"`
	} `json:"runtime" yaml:"runtime"`
	Configuration struct {
		ConfigFile string `json:"config_file" yaml:"config_file"`
		ServerAddr string `json:"server_addr" yaml:"server_addr"`
		LogLevel   string `json:"log_level" yaml:"log_level"`
		Metrics    string `json:"metrics" yaml:"metrics"`
	} `json:"configuration" yaml:"configuration"`
	Search struct {
		BaseURL        string `json:"base_url" yaml:"base_url"`
		Timeout        string `json:"timeout" yaml:"timeout"`
		MaxResults     int    `json:"max_results" yaml:"max_results"`
		APIKey         string `json:"api_key" yaml:"api_key"`
		EngineID       string `json:"engine_id" yaml:"engine_id"`
		BreakerEnabled bool   `json:"breaker_enabled" yaml:"breaker_enabled"`
	} `json:"search" yaml:"search"`
	CORS struct {
		AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers"`
	} `json:"cors" yaml:"cors"`
}

func setOrUnset(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func collectEnvInfo(cfg *config.Config, configFile string) envInfo {
	var info envInfo
	version := crucible.GetVersion()

	info.Application.Name = config.AppName
	info.Application.Version = versionInfo.Version
	info.Application.Commit = versionInfo.Commit
	info.Application.BuildDate = versionInfo.BuildDate
	info.SSOT.Gofulmen = version.Gofulmen
	info.SSOT.Crucible = version.Crucible

	info.Runtime.GoVersion = runtime.Version()
	info.Runtime.GOOS = runtime.GOOS
	info.Runtime.GOARCH = runtime.GOARCH
	info.Runtime.NumCPU = runtime.NumCPU()

	if configFile == "" {
		configFile = "(none)"
	}
	info.Configuration.ConfigFile = configFile
	info.Configuration.ServerAddr = cfg.Server.Addr()
	info.Configuration.LogLevel = cfg.Logging.Level
	info.Configuration.Metrics = "disabled"
	if cfg.Metrics.Enabled {
		info.Configuration.Metrics = fmt.Sprintf("enabled on :%d", cfg.Metrics.Port)
	}

	info.Search.BaseURL = cfg.Search.BaseURL
	info.Search.Timeout = cfg.Search.Timeout.String()
	info.Search.MaxResults = cfg.Search.MaxResults
	info.Search.APIKey = setOrUnset(cfg.Search.APIKey)
	info.Search.EngineID = setOrUnset(cfg.Search.EngineID)
	info.Search.BreakerEnabled = cfg.Search.Breaker.Enabled
	info.CORS.AllowedHeaders = cfg.CORS.AllowedHeaders

	return info
}

func writeEnvInfo(w io.Writer, info envInfo, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(info)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		return fmt.Errorf("unsupported format %q (want yaml or json)", format)
	}
}

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration. Credentials are reported as set or not set, never printed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return writeEnvInfo(cmd.OutOrStdout(), collectEnvInfo(cfg, viper.ConfigFileUsed()), envInfoFormat)
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
	envInfoCmd.Flags().StringVar(&envInfoFormat, "format", "yaml", "output format: yaml or json")
}
