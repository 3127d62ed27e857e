package codec

import (
	"encoding/base64"
	"errors"
	"math"

	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// EncodeValue renders v as a wire fragment. A nil v encodes as a null
// value, the form used for field deletions.
//
// Every value has a fragment, but JSON has no spelling for NaN or the
// infinities: a Number or Location holding one fails later in
// wire.Marshal with an unsupported value error.
func EncodeValue(v record.Value) wire.Fragment {
	if v == nil {
		return wire.Fragment{}
	}
	return v.WireFragment()
}

// DecodeFragment reads one field fragment. Tagged composites dispatch on
// the tag; everything else dispatches on the shape of the value. A null
// value decodes to (nil, nil). References without a zoneID are placed in
// the default zone.
func DecodeFragment(f wire.Fragment) (record.Value, error) {
	return decodeFragment(f, record.DefaultZone)
}

func decodeFragment(f wire.Fragment, zone record.ZoneID) (record.Value, error) {
	shape := wire.ShapeOf(f.Value)
	if shape == wire.ShapeNull {
		return nil, nil
	}

	switch f.Type {
	case wire.TagLocation, wire.TagReference, wire.TagAsset:
		d, ok := wire.AsDict(f.Value)
		if !ok {
			return nil, wire.Errorf(wire.MalformedWireValue, f.Type, "expected dictionary, got %s", shape)
		}
		switch f.Type {
		case wire.TagLocation:
			return valueOf(decodeLocation(d))
		case wire.TagReference:
			return valueOf(decodeReference(d, zone))
		default:
			return valueOf(decodeAsset(d))
		}
	case wire.TagInt64List, wire.TagStringList, wire.TagTimestampList:
		items, ok := wire.AsList(f.Value)
		if !ok {
			return nil, wire.Errorf(wire.MalformedWireValue, f.Type, "expected list, got %s", shape)
		}
		return decodeList(items, f.Type)
	case wire.TagTimestamp:
		return valueOf(decodeTimestamp(f.Value, f.Type))
	case wire.TagBytes:
		s, ok := f.Value.(string)
		if !ok {
			return nil, wire.Errorf(wire.MalformedWireValue, f.Type, "expected base64 string, got %s", shape)
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &wire.Error{Kind: wire.MalformedWireValue, Tag: f.Type, Message: "invalid base64", Err: err}
		}
		return record.Bytes(data), nil
	case wire.TagString:
		s, ok := f.Value.(string)
		if !ok {
			return nil, wire.Errorf(wire.MalformedWireValue, f.Type, "expected string, got %s", shape)
		}
		return record.Text(s), nil
	}

	switch shape {
	case wire.ShapeBool:
		return record.Boolean(f.Value.(bool)), nil
	case wire.ShapeInteger:
		i, _ := wire.AsInt64(f.Value)
		return record.Int(i), nil
	case wire.ShapeFloat:
		n, ok := wire.AsFloat64(f.Value)
		if !ok {
			return nil, wire.Errorf(wire.MalformedWireValue, f.Type, "unreadable number %v", f.Value)
		}
		return record.Float(n), nil
	case wire.ShapeString:
		return record.Text(f.Value.(string)), nil
	case wire.ShapeDict, wire.ShapeList:
		if f.Type == wire.TagNone {
			return nil, wire.Errorf(wire.UnsupportedFieldType, f.Type, "untagged %s value", shape)
		}
		return nil, wire.Errorf(wire.UnsupportedFieldType, f.Type, "unrecognized type for %s value", shape)
	}
	return nil, wire.Errorf(wire.MalformedWireValue, f.Type, "unexpected value of Go type %T", f.Value)
}

func valueOf[T record.Value](v T, err error) (record.Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeTimestamp(v any, tag wire.Tag) (record.Timestamp, error) {
	ms, err := millis(v)
	if err != nil {
		return record.Timestamp{}, wire.Errorf(wire.MalformedWireValue, tag, "%v", err)
	}
	return record.FromMillis(ms), nil
}

var errNotMillis = errors.New("expected milliseconds since epoch")

// millis reads an epoch-millisecond number. Fractional milliseconds are
// floored.
func millis(v any) (int64, error) {
	shape := wire.ShapeOf(v)
	if !shape.IsNumber() {
		return 0, errNotMillis
	}
	if ms, ok := wire.AsInt64(v); ok {
		return ms, nil
	}
	f, ok := wire.AsFloat64(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotMillis
	}
	ms, ok := wire.AsInt64(math.Floor(f))
	if !ok {
		return 0, errNotMillis
	}
	return ms, nil
}

func decodeList(items []any, tag wire.Tag) (record.Value, error) {
	var first wire.Shape
	for i, item := range items {
		shape := wire.ShapeOf(item).Primitive()
		if i == 0 {
			first = shape
			continue
		}
		if shape != first {
			return nil, wire.Errorf(wire.HeterogeneousList, tag, "element %d is %s but element 0 is %s", i, shape, first)
		}
	}

	switch tag {
	case wire.TagInt64List:
		out := make(record.IntegerList, len(items))
		for i, item := range items {
			n, ok := wire.AsInt64(item)
			if !ok {
				return nil, wire.Errorf(wire.MalformedWireValue, tag, "element %d is not a 64-bit integer", i)
			}
			out[i] = n
		}
		return out, nil
	case wire.TagStringList:
		out := make(record.TextList, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, wire.Errorf(wire.MalformedWireValue, tag, "element %d is %s, not a string", i, wire.ShapeOf(item))
			}
			out[i] = s
		}
		return out, nil
	case wire.TagTimestampList:
		out := make(record.TimestampList, len(items))
		for i, item := range items {
			ms, err := millis(item)
			if err != nil {
				return nil, wire.Errorf(wire.MalformedWireValue, tag, "element %d: %v", i, err)
			}
			out[i] = record.FromMillis(ms).Time()
		}
		return out, nil
	}
	return nil, wire.Errorf(wire.UnsupportedFieldType, tag, "unknown list type")
}

func decodeLocation(d wire.Dict) (record.Location, error) {
	lat, ok := wire.AsFloat64(d[wire.KeyLatitude])
	if !ok {
		return record.Location{}, wire.Errorf(wire.MalformedWireValue, wire.TagLocation, "latitude is missing or not a number")
	}
	lng, ok := wire.AsFloat64(d[wire.KeyLongitude])
	if !ok {
		return record.Location{}, wire.Errorf(wire.MalformedWireValue, wire.TagLocation, "longitude is missing or not a number")
	}
	return record.Location{Latitude: lat, Longitude: lng}, nil
}

func decodeReference(d wire.Dict, zone record.ZoneID) (record.Reference, error) {
	name, ok := wire.String(d, wire.KeyRecordName)
	if !ok {
		return record.Reference{}, wire.Errorf(wire.MalformedWireValue, wire.TagReference, "recordName is missing or not a string")
	}

	action := record.ActionNone
	if raw, present := d[wire.KeyAction]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return record.Reference{}, wire.Errorf(wire.MalformedWireValue, wire.TagReference, "action is %s, not a string", wire.ShapeOf(raw))
		}
		parsed, err := record.ParseReferenceAction(s)
		if err != nil {
			return record.Reference{}, &wire.Error{Kind: wire.MalformedWireValue, Tag: wire.TagReference, Err: err}
		}
		action = parsed
	}

	if raw, present := d[wire.KeyZoneID]; present && raw != nil {
		zd, ok := wire.AsDict(raw)
		if !ok {
			return record.Reference{}, wire.Errorf(wire.MalformedWireValue, wire.TagReference, "zoneID is %s, not a dictionary", wire.ShapeOf(raw))
		}
		z, err := decodeZone(zd)
		if err != nil {
			return record.Reference{}, err
		}
		zone = z
	}

	return record.NewReference(record.RecordID{Name: name, Zone: zone}, action), nil
}

func decodeAsset(d wire.Dict) (record.Asset, error) {
	var a record.Asset
	if raw, present := d[wire.KeySize]; present && raw != nil {
		size, ok := wire.AsInt64(raw)
		if !ok {
			return a, wire.Errorf(wire.MalformedWireValue, wire.TagAsset, "size is not an integer")
		}
		a.Size = size
	}

	targets := []struct {
		key string
		dst *string
	}{
		{wire.KeyFileChecksum, &a.FileChecksum},
		{wire.KeyReferenceChecksum, &a.ReferenceChecksum},
		{wire.KeyWrappingKey, &a.WrappingKey},
		{wire.KeyReceipt, &a.Receipt},
		{wire.KeyDownloadURL, &a.DownloadURL},
	}
	for _, t := range targets {
		raw, present := d[t.key]
		if !present || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return a, wire.Errorf(wire.MalformedWireValue, wire.TagAsset, "%s is %s, not a string", t.key, wire.ShapeOf(raw))
		}
		*t.dst = s
	}
	return a, nil
}

func decodeZone(d wire.Dict) (record.ZoneID, error) {
	name, ok := wire.String(d, wire.KeyZoneName)
	if !ok {
		return record.ZoneID{}, &wire.Error{Kind: wire.MalformedWireValue, Field: wire.KeyZoneID, Message: "zoneName is missing or not a string"}
	}
	owner, ok := wire.String(d, wire.KeyOwnerRecordName)
	if !ok {
		owner = record.DefaultZoneOwner
	}
	return record.ZoneID{Name: name, Owner: owner}, nil
}
