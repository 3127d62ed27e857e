package codec

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/response"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// Options configures record decoding
type Options struct {
	// AllowPartial skips fields that fail to decode instead of failing
	// the whole record. Skipped fields are absent from the result.
	AllowPartial bool
	// Logger receives a debug event for every skipped field. Nil disables
	// logging.
	Logger *zerolog.Logger
}

// Codec decodes wire dictionaries under a fixed field-failure policy.
// It holds no mutable state.
type Codec struct {
	opts Options
}

// New creates a codec with the given options
func New(opts Options) *Codec {
	return &Codec{opts: opts}
}

var strict = New(Options{})

// DecodeRecord decodes d with the strict policy. See Codec.DecodeRecord.
func DecodeRecord(d wire.Dict, fallback *record.RecordID) (*record.Record, error) {
	return strict.DecodeRecord(d, fallback)
}

// DecodeBatch decodes a batch response with the strict policy. See
// Codec.DecodeBatch.
func DecodeBatch(payload wire.Dict) ([]BatchResult, error) {
	return strict.DecodeBatch(payload)
}

// DecodeRecord builds a clean record from a wire dictionary.
//
// recordName and recordType are required. The identifier is built from
// recordName and zoneID (default zone when absent); a non-nil fallback
// replaces it, for callers that already hold the exact identifier.
func (c *Codec) DecodeRecord(d wire.Dict, fallback *record.RecordID) (*record.Record, error) {
	name, err := wire.RequireString(d, wire.KeyRecordName)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	recordType, err := wire.RequireString(d, wire.KeyRecordType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record %q: %w", name, err)
	}

	zone := record.DefaultZone
	if raw, ok := d[wire.KeyZoneID]; ok && raw != nil {
		zd, ok := wire.AsDict(raw)
		if !ok {
			return nil, fmt.Errorf("failed to decode record %q: %w", name,
				&wire.Error{Kind: wire.MalformedWireValue, Field: wire.KeyZoneID, Message: "not a dictionary"})
		}
		if zone, err = decodeZone(zd); err != nil {
			return nil, fmt.Errorf("failed to decode record %q: %w", name, err)
		}
	}

	id := record.RecordID{Name: name, Zone: zone}
	if fallback != nil {
		id = *fallback
	}

	r := record.NewWithID(recordType, id)

	if tag, ok := wire.String(d, wire.KeyRecordChangeTag); ok {
		r.ChangeTag = tag
	}
	if l, ok := decodeLog(d[wire.KeyCreated]); ok {
		r.Creator = l.user
		r.CreatorDevice = l.device
		r.CreatedAt = l.at
	}
	if l, ok := decodeLog(d[wire.KeyModified]); ok {
		r.Modifier = l.user
		r.ModifierDevice = l.device
		r.ModifiedAt = l.at
	}

	if err := c.decodeFields(r, d[wire.KeyFields]); err != nil {
		return nil, fmt.Errorf("failed to decode record %q: %w", name, err)
	}

	if pd, ok := wire.AsDict(d[wire.KeyParent]); ok {
		if parentName, ok := wire.String(pd, wire.KeyRecordName); ok {
			parent := record.NewReference(record.RecordID{Name: parentName, Zone: id.Zone}, record.ActionNone)
			r.Parent = &parent
		}
	}

	return r, nil
}

func (c *Codec) decodeFields(r *record.Record, raw any) error {
	if raw == nil {
		return nil
	}
	fields, ok := wire.AsDict(raw)
	if !ok {
		return &wire.Error{Kind: wire.MalformedWireValue, Field: wire.KeyFields, Message: "not a dictionary"}
	}

	// Sorted so the reported failure is deterministic.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v, err := decodeField(fields[key], r.ID().Zone)
		if err != nil {
			err = attributeTo(key, err)
			if !c.opts.AllowPartial {
				return err
			}
			if c.opts.Logger != nil {
				c.opts.Logger.Debug().
					Str("record", r.ID().Name).
					Str("field", key).
					Err(err).
					Msg("skipping field that failed to decode")
			}
			continue
		}
		if v != nil {
			r.Load(key, v)
		}
	}
	return nil
}

func decodeField(raw any, zone record.ZoneID) (record.Value, error) {
	fd, ok := wire.AsDict(raw)
	if !ok {
		return nil, wire.Errorf(wire.MalformedWireValue, wire.TagNone, "field is %s, not a dictionary", wire.ShapeOf(raw))
	}
	f, err := wire.FragmentFromDict(fd)
	if err != nil {
		return nil, err
	}
	return decodeFragment(f, zone)
}

func attributeTo(field string, err error) error {
	var werr *wire.Error
	if errors.As(err, &werr) {
		return werr.WithField(field)
	}
	return fmt.Errorf("field %q: %w", field, err)
}

type recordLog struct {
	at     time.Time
	user   *record.RecordID
	device string
}

// decodeLog reads a created/modified block. Anything short of a complete
// block reports false.
func decodeLog(raw any) (recordLog, bool) {
	d, ok := wire.AsDict(raw)
	if !ok {
		return recordLog{}, false
	}
	ms, err := millis(d[wire.KeyTimestamp])
	if err != nil {
		return recordLog{}, false
	}
	user, ok := wire.String(d, wire.KeyUserRecordName)
	if !ok {
		return recordLog{}, false
	}
	device, ok := wire.String(d, wire.KeyDeviceID)
	if !ok {
		return recordLog{}, false
	}

	l := recordLog{at: record.FromMillis(ms).Time(), device: device}
	if user != "" {
		id := record.NewRecordID(user)
		l.user = &id
	}
	return l, true
}

// BatchResult is one entry of a batch response: a decoded record or the
// error that prevented it.
type BatchResult struct {
	Record *record.Record
	Err    error
}

// DecodeBatch decodes a {"records": [...]} payload. Entries that are
// server error dictionaries yield a *response.ServerError; entries that
// fail to decode yield the decode error. Only a missing or malformed
// records list fails the whole call.
func (c *Codec) DecodeBatch(payload wire.Dict) ([]BatchResult, error) {
	raw, ok := payload[wire.KeyRecords]
	if !ok || raw == nil {
		return nil, &wire.Error{Kind: wire.MissingRequiredKey, Field: wire.KeyRecords, Message: "key is absent"}
	}
	items, ok := wire.AsList(raw)
	if !ok {
		return nil, &wire.Error{Kind: wire.MalformedWireValue, Field: wire.KeyRecords, Message: "not a list"}
	}

	results := make([]BatchResult, len(items))
	for i, item := range items {
		d, ok := wire.AsDict(item)
		if !ok {
			results[i].Err = wire.Errorf(wire.MalformedWireValue, wire.TagNone, "records[%d] is %s, not a dictionary", i, wire.ShapeOf(item))
			continue
		}
		if _, err := response.Classify(d); err != nil {
			results[i].Err = err
			continue
		}
		results[i].Record, results[i].Err = c.DecodeRecord(d, nil)
	}
	return results, nil
}
