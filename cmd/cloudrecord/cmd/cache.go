/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/cloudrecord/pkg/codec"
	"github.com/ssargent/cloudrecord/pkg/di"
	"github.com/ssargent/cloudrecord/pkg/record"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local record cache",
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <recordName>",
	Short: "Show a cached record",
	Long: `Show a cached record, including fields with pending edits.

Examples:
  cloudrecord cache get item-1
  cloudrecord cache get item-1 --zone Inventory --owner _abc123 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return runCacheGet(cmd.OutOrStdout(), container, cacheRecordID(cmd, args[0]), format)
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <recordName>",
	Short: "Remove a record from the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCacheDelete(cmd.OutOrStdout(), container, cacheRecordID(cmd, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)

	cacheCmd.PersistentFlags().String("zone", "", "Zone name (default from config)")
	cacheCmd.PersistentFlags().String("owner", "", "Zone owner (default from config)")
	cacheGetCmd.Flags().StringP("format", "o", "table", "Output format (table or json)")
}

func cacheRecordID(cmd *cobra.Command, name string) record.RecordID {
	zone := record.DefaultZone
	if container != nil {
		zone = container.GetConfig().Records.Zone()
	}
	if z, _ := cmd.Flags().GetString("zone"); z != "" {
		zone.Name = z
	}
	if o, _ := cmd.Flags().GetString("owner"); o != "" {
		zone.Owner = o
	}
	return record.RecordID{Name: name, Zone: zone}
}

func runCacheGet(w io.Writer, c *di.Container, id record.RecordID, format string) error {
	if c == nil {
		return fmt.Errorf("dependency container not initialized")
	}
	cache, err := c.GetCache()
	if err != nil {
		return err
	}
	r, err := cache.Get(id)
	if err != nil {
		return err
	}

	if format == "json" {
		return outputResultsJSON(w, []codec.BatchResult{{Record: r}})
	}
	return outputRecordTable(w, r)
}

func runCacheDelete(w io.Writer, c *di.Container, id record.RecordID) error {
	if c == nil {
		return fmt.Errorf("dependency container not initialized")
	}
	cache, err := c.GetCache()
	if err != nil {
		return err
	}
	if err := cache.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %s\n", id)
	return nil
}
