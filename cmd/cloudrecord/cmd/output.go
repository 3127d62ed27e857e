package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ssargent/cloudrecord/pkg/codec"
	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// outputResultsTable displays each decoded record, or the error in its place
func outputResultsTable(w io.Writer, results []codec.BatchResult) error {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if res.Err != nil {
			fmt.Fprintf(w, "Error:\t%v\n", res.Err)
			continue
		}
		if err := outputRecordTable(w, res.Record); err != nil {
			return err
		}
	}
	return nil
}

// outputRecordTable displays a single record and its fields
func outputRecordTable(w io.Writer, r *record.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Record:\t%s\n", r.ID().Name)
	fmt.Fprintf(tw, "Type:\t%s\n", r.Type())
	fmt.Fprintf(tw, "Zone:\t%s\n", r.ID().Zone)
	if r.ChangeTag != "" {
		fmt.Fprintf(tw, "Change Tag:\t%s\n", r.ChangeTag)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", formatLog(r.CreatedAt, r.Creator))
	if !r.ModifiedAt.IsZero() {
		fmt.Fprintf(tw, "Modified:\t%s\n", formatLog(r.ModifiedAt, r.Modifier))
	}
	if r.Parent != nil {
		fmt.Fprintf(tw, "Parent:\t%s\n", r.Parent.Target.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	keys := r.AllKeys()
	for _, key := range r.DirtyKeys() {
		if r.Deleted(key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tKIND\tVALUE\tDIRTY")
	for _, key := range keys {
		v := r.Get(key)
		kind, value := "deleted", "-"
		if v != nil {
			kind, value = v.Kind().String(), formatValue(v)
		}
		dirty := ""
		if r.IsDirty(key) {
			dirty = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key, kind, value, dirty)
	}
	return tw.Flush()
}

type resultJSON struct {
	Record wire.Dict `json:"record,omitempty"`
	Dirty  []string  `json:"dirty,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// outputResultsJSON displays records as wire snapshots
func outputResultsJSON(w io.Writer, results []codec.BatchResult) error {
	out := make([]resultJSON, len(results))
	for i, res := range results {
		if res.Err != nil {
			out[i].Error = res.Err.Error()
			continue
		}
		out[i].Record = codec.EncodeSnapshot(res.Record)
		out[i].Dirty = res.Record.DirtyKeys()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

func formatLog(at time.Time, user *record.RecordID) string {
	s := at.Format(time.RFC3339Nano)
	if user != nil {
		s += " by " + user.Name
	}
	return s
}

func formatValue(v record.Value) string {
	switch tv := v.(type) {
	case record.Text:
		return fmt.Sprintf("%q", string(tv))
	case record.Number:
		return tv.String()
	case record.Boolean:
		return fmt.Sprintf("%t", bool(tv))
	case record.Timestamp:
		return tv.Time().Format(time.RFC3339Nano)
	case record.Bytes:
		return base64.StdEncoding.EncodeToString(tv)
	case record.IntegerList:
		parts := make([]string, len(tv))
		for i, n := range tv {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case record.TextList:
		return formatStringSlice(tv)
	case record.TimestampList:
		parts := make([]string, len(tv))
		for i, t := range tv {
			parts[i] = t.UTC().Format(time.RFC3339Nano)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case record.Location:
		return fmt.Sprintf("%g, %g", tv.Latitude, tv.Longitude)
	case record.Reference:
		return fmt.Sprintf("%s (%s)", tv.Target, tv.Action)
	case record.Asset:
		return fmt.Sprintf("%d bytes %s", tv.Size, tv.FileChecksum)
	}
	return fmt.Sprintf("%v", v)
}

// formatStringSlice formats a string slice for display
func formatStringSlice(slice []string) string {
	quoted := make([]string, len(slice))
	for i, s := range slice {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
