package codec

import (
	"time"

	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// EncodeRecord renders r as a wire dictionary for an outbound request.
//
// A nil keys encodes every key holding a value (a create). Any non-nil
// slice, even an empty one, encodes only the listed keys, typically
// r.DirtyKeys() for an update; a listed key that was deleted encodes as
// {"value": null} and a listed key that was never set is left out. A
// filter grown from "var keys []string" stays nil until something is
// appended, so start it from make([]string, 0) or r.DirtyKeys() when an
// empty filter must mean no fields. DirtyKeys never returns nil.
//
// recordType and recordName are always present. recordChangeTag is added
// when the record has one; parent and createShortGUID only when a parent
// is set.
func EncodeRecord(r *record.Record, keys []string) wire.Dict {
	if keys == nil {
		keys = r.AllKeys()
	}

	fields := make(wire.Dict, len(keys))
	for _, key := range keys {
		v := r.Get(key)
		if v == nil && !r.Deleted(key) {
			continue
		}
		fields[key] = EncodeValue(v).Dict()
	}

	d := wire.Dict{
		wire.KeyRecordType: r.Type(),
		wire.KeyRecordName: r.ID().Name,
		wire.KeyFields:     fields,
	}
	if r.ChangeTag != "" {
		d[wire.KeyRecordChangeTag] = r.ChangeTag
	}
	if r.Parent != nil {
		d[wire.KeyCreateShortGUID] = int64(1)
		d[wire.KeyParent] = wire.Dict{wire.KeyRecordName: r.Parent.Target.Name}
	}
	return d
}

// EncodeSnapshot renders every field of r together with its system
// metadata (zone, change tag, created and modified blocks) so that
// DecodeRecord restores an equivalent record. Dirty state is not part of
// the snapshot.
func EncodeSnapshot(r *record.Record) wire.Dict {
	d := EncodeRecord(r, nil)
	d[wire.KeyZoneID] = record.ZoneDict(r.ID().Zone)
	d[wire.KeyCreated] = logDict(r.CreatedAt, r.Creator, r.CreatorDevice)
	if !r.ModifiedAt.IsZero() {
		d[wire.KeyModified] = logDict(r.ModifiedAt, r.Modifier, r.ModifierDevice)
	}
	return d
}

func logDict(at time.Time, user *record.RecordID, device string) wire.Dict {
	name := ""
	if user != nil {
		name = user.Name
	}
	return wire.Dict{
		wire.KeyTimestamp:      at.UnixMilli(),
		wire.KeyUserRecordName: name,
		wire.KeyDeviceID:       device,
	}
}
