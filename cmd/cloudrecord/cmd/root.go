/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/cloudrecord/pkg/config"
	"github.com/ssargent/cloudrecord/pkg/di"
	"github.com/ssargent/cloudrecord/pkg/logger"
)

var (
	container *di.Container

	cfgFile  string
	cacheDir string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cloudrecord",
	Short: "cloudrecord - inspect and cache CloudKit-style records",
	Long: `cloudrecord decodes record payloads in the CloudKit web services wire
format, re-encodes them for save requests and keeps decoded records in a
local cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container != nil {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		c, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		container = c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		return container.Close()
	},
}

// SetContainer injects the dependency container, bypassing config loading
func SetContainer(c *di.Container) {
	container = c
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

// execute runs the root command and closes the container afterwards.
// cobra skips PersistentPostRunE when RunE fails, so the cache would
// otherwise stay open on the error path.
func execute() error {
	err := rootCmd.Execute()
	if container != nil {
		if cerr := container.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/cloudrecord/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "record cache directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetDefaultConfigPath()
}

// loadConfig reads the config file when present and applies flag
// overrides on top.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	path := configPath()
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file does not exist: %s", cfgFile)
	}

	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}
