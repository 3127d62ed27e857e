/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/cloudrecord/pkg/codec"
	"github.com/ssargent/cloudrecord/pkg/di"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Re-encode a record as a save request",
	Long: `Decode a record dictionary and print the wire dictionary a save
request would carry.

Without --fields every field is encoded, as for a create. With --fields
only the named fields are encoded, as for an update; a named field that
the record does not hold is sent as a deletion.

Examples:
  cloudrecord encode record.json
  cloudrecord encode record.json --fields title,count`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, _ := cmd.Flags().GetStringSlice("fields")
		return runEncode(cmd.OutOrStdout(), container, args[0], fields)
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringSlice("fields", nil, "Comma separated fields to encode (default all)")
}

func runEncode(w io.Writer, c *di.Container, path string, fields []string) error {
	if c == nil {
		return fmt.Errorf("dependency container not initialized")
	}

	payload, err := readPayload(path)
	if err != nil {
		return err
	}
	r, err := c.GetCodec().DecodeRecord(payload, nil)
	if err != nil {
		return err
	}

	var keys []string
	for _, f := range fields {
		key := strings.TrimSpace(f)
		if key == "" {
			continue
		}
		// Touch the field so it is dirty; an absent one becomes a deletion.
		r.Set(key, r.Get(key))
	}
	if len(fields) > 0 {
		keys = r.DirtyKeys()
	}

	data, err := json.MarshalIndent(codec.EncodeRecord(r, keys), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
