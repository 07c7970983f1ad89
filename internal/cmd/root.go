// Package cmd implements the domainsweep CLI.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/config"
	"github.com/domainsweep/domainsweep/internal/observability"
)

var (
	cfgFile string
	verbose bool

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
	Use:   "domainsweep",
	Short: "Bulk domain availability checker",
	Long: `domainsweep checks domain name availability against a RapidAPI-hosted
availability endpoint, pacing requests with a client-side sliding window
rate limiter and retrying transient failures with exponential backoff.

Use the subcommands to perform specific operations.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/domainsweep/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file in the working directory is a convenience for local
	// runs; a missing file is not an error.
	_ = godotenv.Load()

	observability.InitCLILogger(verbose)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "domainsweep"))
		}
		viper.AddConfigPath("./config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DOMAINSWEEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindLegacyEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			observability.CLILogger.Debug("Using config file", zap.String("path", viper.ConfigFileUsed()))
		}
	} else {
		// It's OK if config file doesn't exist, we have defaults
		if verbose {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				observability.CLILogger.Debug("No config file found, using defaults and environment variables")
			} else {
				observability.CLILogger.Warn("Error reading config file", zap.Error(err))
			}
		}
	}

	setDefaults()
}

// bindLegacyEnv keeps the original RAPIDAPI_* variable names working
// alongside the DOMAINSWEEP_* prefix.
func bindLegacyEnv() {
	_ = viper.BindEnv("api.key", "DOMAINSWEEP_API_KEY", "RAPIDAPI_KEY")
	_ = viper.BindEnv("api.host", "DOMAINSWEEP_API_HOST", "RAPIDAPI_HOST")
	_ = viper.BindEnv("api.base_url", "DOMAINSWEEP_API_BASE_URL", "RAPIDAPI_BASE_URL")
	_ = viper.BindEnv("api.endpoint_path", "DOMAINSWEEP_API_ENDPOINT_PATH", "RAPIDAPI_ENDPOINT_PATH")
	_ = viper.BindEnv("rate_limit.per_minute", "DOMAINSWEEP_RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("rate_limit.period_seconds", "DOMAINSWEEP_RATE_LIMIT_PERIOD_SECONDS", "RATE_LIMIT_PERIOD_SECONDS")
	_ = viper.BindEnv("retry.max_retries", "DOMAINSWEEP_RETRY_MAX_RETRIES", "MAX_RETRIES")
	_ = viper.BindEnv("retry.backoff_factor", "DOMAINSWEEP_RETRY_BACKOFF_FACTOR", "BACKOFF_FACTOR")
	_ = viper.BindEnv("request_timeout_seconds", "DOMAINSWEEP_REQUEST_TIMEOUT_SECONDS", "REQUEST_TIMEOUT_SECONDS")
}

// setDefaults sets default configuration values
func setDefaults() {
	// API defaults
	viper.SetDefault("api.endpoint_path", "/api/v1")

	// Rate limit defaults
	viper.SetDefault("rate_limit.per_minute", 50)
	viper.SetDefault("rate_limit.period_seconds", 60)

	// Retry defaults
	viper.SetDefault("retry.max_retries", 5)
	viper.SetDefault("retry.backoff_factor", 2.0)
	viper.SetDefault("request_timeout_seconds", 10)

	// Logging defaults
	viper.SetDefault("logging.level", "info")

	// Store defaults
	viper.SetDefault("store.driver", "libsql")
	viper.SetDefault("store.path", config.DefaultStorePath())
	viper.SetDefault("store.url", "")
	viper.SetDefault("store.auth_token", "")

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.available_ttl", "5m")
	viper.SetDefault("cache.taken_ttl", "1h")
	viper.SetDefault("cache.error_ttl", "30s")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.throttle.requests_per_second", 5.0)
	viper.SetDefault("server.throttle.burst", 10)
}
