package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/madebyjake/hashreport/pkg/hashreport/config"
	"github.com/madebyjake/hashreport/pkg/hashreport/logging"
	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "hashreport",
		Short: "Generate hash reports for directories of files",
		Long: `Hashreport walks a directory tree, hashes every qualifying file, and
writes the digests to a CSV or JSON report.

Examples:
  hashreport scan ~/Documents                 # Scan with defaults (md5, CSV)
  hashreport scan -a sha256 -o out.json .     # SHA-256 digests as JSON
  hashreport scan -i "*.iso" --min-size 1G /  # Only large ISO images
  hashreport algorithms                       # List supported algorithms`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/hashreport/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "hashreport"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "hashreport"))
		}
	}

	viper.SetEnvPrefix("HASHREPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig unmarshals the merged configuration and validates it.
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// initLogging starts the logging system from the loaded configuration.
// Verbose mode lowers the level to debug and mirrors logs to the console.
func initLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	consoleLevel := ""
	if getVerbose() {
		level = "debug"
		consoleLevel = "debug"
	}

	maxSize, err := types.ParseSize(cfg.Logging.Rotation.MaxSize)
	if err != nil {
		maxSize = 0 // writer default applies
	}

	return logging.Init(logging.Config{
		Level: level,
		Path:  cfg.Logging.Path,
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			Daily:      cfg.Logging.Rotation.Daily,
		},
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	})
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printSuccess prints a highlighted success message unless quiet.
func printSuccess(format string, args ...interface{}) {
	if !getQuiet() {
		color.New(color.FgGreen).Printf(format+"\n", args...)
	}
}

// printWarning prints a highlighted warning to stderr.
func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
