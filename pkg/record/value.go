package record

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ssargent/cloudrecord/pkg/wire"
)

// Kind enumerates the field value variants.
type Kind int

const (
	KindText Kind = iota + 1
	KindNumber
	KindBoolean
	KindTimestamp
	KindBytes
	KindIntegerList
	KindTextList
	KindTimestampList
	KindLocation
	KindReference
	KindAsset
)

var kindNames = map[Kind]string{
	KindText:          "text",
	KindNumber:        "number",
	KindBoolean:       "boolean",
	KindTimestamp:     "timestamp",
	KindBytes:         "bytes",
	KindIntegerList:   "integer list",
	KindTextList:      "text list",
	KindTimestampList: "timestamp list",
	KindLocation:      "location",
	KindReference:     "reference",
	KindAsset:         "asset",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a typed field value. The set of implementations is closed to
// this package; adding a variant means adding a Kind and codec arms.
type Value interface {
	Kind() Kind
	// WireFragment renders the value in its tagged wire form.
	WireFragment() wire.Fragment
	isValue()
}

// Text is a string field.
type Text string

func (Text) Kind() Kind { return KindText }
func (Text) isValue()   {}

func (v Text) WireFragment() wire.Fragment {
	return wire.Fragment{Value: string(v), Type: wire.TagString}
}

// Number is a 64-bit integer or a double. The two stay distinct: Int(2)
// and Float(2) are different values and encode differently.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// Int returns an integer Number.
func Int(i int64) Number { return Number{i: i} }

// Float returns a double Number. NaN and the infinities are accepted here
// but cannot be marshalled to JSON.
func Float(f float64) Number { return Number{f: f, isFloat: true} }

func (Number) Kind() Kind { return KindNumber }
func (Number) isValue()   {}

// IsFloat reports whether n holds a double.
func (n Number) IsFloat() bool { return n.isFloat }

// Int64 returns the integer value, truncating a double.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the value as a double.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n Number) WireFragment() wire.Fragment {
	if n.isFloat {
		return wire.Fragment{Value: wire.Float(n.f)}
	}
	return wire.Fragment{Value: n.i}
}

func (n Number) String() string {
	if n.isFloat {
		return fmt.Sprintf("%g", n.f)
	}
	return fmt.Sprintf("%d", n.i)
}

// Boolean is a bool field.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (Boolean) isValue()   {}

func (v Boolean) WireFragment() wire.Fragment {
	return wire.Fragment{Value: bool(v)}
}

// Timestamp is an instant with millisecond precision, held in UTC.
type Timestamp struct {
	t time.Time
}

// At returns the Timestamp for t, truncated to the millisecond.
func At(t time.Time) Timestamp {
	return Timestamp{t: t.Truncate(time.Millisecond).UTC()}
}

// FromMillis returns the Timestamp ms milliseconds after the Unix epoch.
func FromMillis(ms int64) Timestamp {
	return Timestamp{t: time.UnixMilli(ms).UTC()}
}

func (Timestamp) Kind() Kind { return KindTimestamp }
func (Timestamp) isValue()   {}

// Time returns the instant.
func (v Timestamp) Time() time.Time { return v.t }

// Millis returns milliseconds since the Unix epoch.
func (v Timestamp) Millis() int64 { return v.t.UnixMilli() }

func (v Timestamp) WireFragment() wire.Fragment {
	return wire.Fragment{Value: v.t.UnixMilli(), Type: wire.TagTimestamp}
}

// Bytes is a binary field, base64 encoded on the wire.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }
func (Bytes) isValue()   {}

func (v Bytes) WireFragment() wire.Fragment {
	return wire.Fragment{Value: base64.StdEncoding.EncodeToString(v), Type: wire.TagBytes}
}

// IntegerList is an ordered list of 64-bit integers.
type IntegerList []int64

func (IntegerList) Kind() Kind { return KindIntegerList }
func (IntegerList) isValue()   {}

func (v IntegerList) WireFragment() wire.Fragment {
	list := make([]any, len(v))
	for i, n := range v {
		list[i] = n
	}
	return wire.Fragment{Value: list, Type: wire.TagInt64List}
}

// TextList is an ordered list of strings.
type TextList []string

func (TextList) Kind() Kind { return KindTextList }
func (TextList) isValue()   {}

func (v TextList) WireFragment() wire.Fragment {
	list := make([]any, len(v))
	for i, s := range v {
		list[i] = s
	}
	return wire.Fragment{Value: list, Type: wire.TagStringList}
}

// TimestampList is an ordered list of instants. Elements are carried at
// millisecond precision on the wire.
type TimestampList []time.Time

func (TimestampList) Kind() Kind { return KindTimestampList }
func (TimestampList) isValue()   {}

func (v TimestampList) WireFragment() wire.Fragment {
	list := make([]any, len(v))
	for i, t := range v {
		list[i] = t.UnixMilli()
	}
	return wire.Fragment{Value: list, Type: wire.TagTimestampList}
}

// Location is a geographic coordinate.
type Location struct {
	Latitude  float64
	Longitude float64
}

func (Location) Kind() Kind { return KindLocation }
func (Location) isValue()   {}

func (v Location) WireFragment() wire.Fragment {
	return wire.Fragment{
		Value: wire.Dict{
			wire.KeyLatitude:  v.Latitude,
			wire.KeyLongitude: v.Longitude,
		},
		Type: wire.TagLocation,
	}
}

// ReferenceAction says what happens to the referring record when its
// target is deleted.
type ReferenceAction int

const (
	ActionNone ReferenceAction = iota
	ActionDeleteSelf
)

func (a ReferenceAction) String() string {
	if a == ActionDeleteSelf {
		return wire.ActionDeleteSelf
	}
	return wire.ActionNone
}

// ParseReferenceAction reads a wire action name.
func ParseReferenceAction(s string) (ReferenceAction, error) {
	switch s {
	case wire.ActionNone:
		return ActionNone, nil
	case wire.ActionDeleteSelf:
		return ActionDeleteSelf, nil
	}
	return ActionNone, fmt.Errorf("unknown reference action %q", s)
}

// Reference points at another record.
type Reference struct {
	Target RecordID
	Action ReferenceAction

	owner *RecordID
}

// NewReference returns a reference to target with the given action.
func NewReference(target RecordID, action ReferenceAction) Reference {
	return Reference{Target: target, Action: action}
}

func (Reference) Kind() Kind { return KindReference }
func (Reference) isValue()   {}

// Owner returns the record this reference is stored in, once bound.
func (v Reference) Owner() (RecordID, bool) {
	if v.owner == nil {
		return RecordID{}, false
	}
	return *v.owner, true
}

// WireFragment omits zoneID when the target lives in the zone a decoder
// assumes: the owning record's zone once bound, the default zone before.
func (v Reference) WireFragment() wire.Fragment {
	d := wire.Dict{
		wire.KeyRecordName: v.Target.Name,
		wire.KeyAction:     v.Action.String(),
	}
	implied := DefaultZone
	if v.owner != nil {
		implied = v.owner.Zone
	}
	if v.Target.Zone != implied {
		d[wire.KeyZoneID] = ZoneDict(v.Target.Zone)
	}
	return wire.Fragment{Value: d, Type: wire.TagReference}
}

// Asset describes an out-of-band binary. Only the metadata travels with
// the record; all fields are opaque.
type Asset struct {
	FileChecksum      string
	Size              int64
	ReferenceChecksum string
	WrappingKey       string
	Receipt           string
	DownloadURL       string

	owner *RecordID
}

func (Asset) Kind() Kind { return KindAsset }
func (Asset) isValue()   {}

// Owner returns the record this asset belongs to, once bound.
func (v Asset) Owner() (RecordID, bool) {
	if v.owner == nil {
		return RecordID{}, false
	}
	return *v.owner, true
}

func (v Asset) WireFragment() wire.Fragment {
	d := wire.Dict{wire.KeySize: v.Size}
	optional := []struct {
		key, value string
	}{
		{wire.KeyFileChecksum, v.FileChecksum},
		{wire.KeyReferenceChecksum, v.ReferenceChecksum},
		{wire.KeyWrappingKey, v.WrappingKey},
		{wire.KeyReceipt, v.Receipt},
		{wire.KeyDownloadURL, v.DownloadURL},
	}
	for _, o := range optional {
		if o.value != "" {
			d[o.key] = o.value
		}
	}
	return wire.Fragment{Value: d, Type: wire.TagAsset}
}

// ZoneDict renders a zone identifier as a wire dictionary.
func ZoneDict(z ZoneID) wire.Dict {
	return wire.Dict{
		wire.KeyZoneName:        z.Name,
		wire.KeyOwnerRecordName: z.Owner,
	}
}

// Equal compares two values by content. Timestamps compare at millisecond
// granularity and record ownership bindings are ignored.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Text, Number, Boolean, Location:
		return a == b
	case Timestamp:
		return av.Millis() == b.(Timestamp).Millis()
	case Bytes:
		return bytes.Equal(av, b.(Bytes))
	case IntegerList:
		bv := b.(IntegerList)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case TextList:
		bv := b.(TextList)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case TimestampList:
		bv := b.(TimestampList)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].UnixMilli() != bv[i].UnixMilli() {
				return false
			}
		}
		return true
	case Reference:
		bv := b.(Reference)
		return av.Target == bv.Target && av.Action == bv.Action
	case Asset:
		bv := b.(Asset)
		av.owner, bv.owner = nil, nil
		return av == bv
	}
	return false
}
