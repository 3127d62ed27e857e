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
	"github.com/ssargent/cloudrecord/pkg/wire"
)

type decodeOptions struct {
	cache   bool
	partial bool
	format  string
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode a record or a batch response",
	Long: `Decode a record dictionary or a {"records": [...]} batch response and
print what was read.

The file may contain comments. A server error payload is reported as an
error; in a batch, entries that are errors are listed alongside the
records.

Examples:
  cloudrecord decode record.json
  cloudrecord decode lookup.jsonc --partial --format json
  cloudrecord decode query.json --cache`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := decodeOptions{}
		opts.cache, _ = cmd.Flags().GetBool("cache")
		opts.partial, _ = cmd.Flags().GetBool("partial")
		opts.format, _ = cmd.Flags().GetString("format")
		return runDecode(cmd.OutOrStdout(), container, args[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().Bool("cache", false, "Store decoded records in the local cache")
	decodeCmd.Flags().Bool("partial", false, "Skip fields that fail to decode instead of failing the record")
	decodeCmd.Flags().StringP("format", "o", "table", "Output format (table or json)")
}

func runDecode(w io.Writer, c *di.Container, path string, opts decodeOptions) error {
	if c == nil {
		return fmt.Errorf("dependency container not initialized")
	}
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	payload, err := readPayload(path)
	if err != nil {
		return err
	}

	dec := c.GetCodec()
	if opts.partial {
		l := c.GetLogger("codec")
		dec = codec.New(codec.Options{AllowPartial: true, Logger: &l})
	}

	var results []codec.BatchResult
	if _, ok := payload[wire.KeyRecords]; ok {
		results, err = dec.DecodeBatch(payload)
		if err != nil {
			return err
		}
	} else {
		r, err := dec.DecodeRecord(payload, nil)
		if err != nil {
			return err
		}
		results = []codec.BatchResult{{Record: r}}
	}

	if opts.cache {
		cache, err := c.GetCache()
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Record == nil {
				continue
			}
			if err := cache.Put(res.Record); err != nil {
				return err
			}
		}
	}

	if opts.format == "json" {
		return outputResultsJSON(w, results)
	}
	return outputResultsTable(w, results)
}
