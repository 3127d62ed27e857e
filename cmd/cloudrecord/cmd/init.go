/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/cloudrecord/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file.

The file goes to --config, or ~/.config/cloudrecord/config.yaml when no
path is given. An existing file is left alone unless --force is set.

Examples:
  cloudrecord init
  cloudrecord init --config ./cloudrecord.yaml --cache-dir ./cache`,
	// init creates the file the root pre-run would try to load.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return initializeConfig(cmd, configPath(), cacheDir, force)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

func initializeConfig(cmd *cobra.Command, path, dir string, force bool) error {
	if config.ConfigExists(path) && !force {
		cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", path)
		return nil
	}

	cfg, err := config.BootstrapConfig(path, dir)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cmd.Printf("Wrote configuration to %s\n", path)
	cmd.Printf("Cache directory: %s\n", cfg.CacheDir)
	cmd.Printf("Record names: %s\n", cfg.Records.NameScheme)
	return nil
}
