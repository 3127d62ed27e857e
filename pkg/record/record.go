// Package record holds the client-side record model: identifiers, the
// closed set of typed field values and the change-tracking Record.
//
// A Record is a plain mutable value with a single owner. Concurrent Set and
// Get calls on one Record must be synchronized by the caller; use Clone to
// hand a copy to another goroutine.
package record

import (
	"sort"
	"time"
)

// Record is a typed document with server metadata and dirty-key tracking.
type Record struct {
	recordType string
	id         RecordID

	ChangeTag      string // empty until the server has issued one
	Creator        *RecordID
	CreatorDevice  string
	CreatedAt      time.Time
	Modifier       *RecordID
	ModifierDevice string
	ModifiedAt     time.Time // zero when unknown
	Parent         *Reference

	fields map[string]Value
	dirty  map[string]struct{}
}

// New creates an empty record of the given type with a freshly generated
// name in the default zone.
func New(recordType string) *Record {
	return NewWithID(recordType, NewRecordID(KSUIDNames()))
}

// NewInZone creates an empty record named by gen inside zone.
func NewInZone(recordType string, zone ZoneID, gen NameGenerator) *Record {
	if gen == nil {
		gen = KSUIDNames
	}
	return NewWithID(recordType, RecordID{Name: gen(), Zone: zone})
}

// NewWithID creates an empty record with a known identifier.
func NewWithID(recordType string, id RecordID) *Record {
	return &Record{
		recordType: recordType,
		id:         id,
		CreatedAt:  time.Now().UTC(),
		fields:     make(map[string]Value),
		dirty:      make(map[string]struct{}),
	}
}

// Type returns the record type.
func (r *Record) Type() string { return r.recordType }

// ID returns the record identifier.
func (r *Record) ID() RecordID { return r.id }

// Get returns the value stored at key, or nil when the key was never set
// or has been deleted. It never affects dirty tracking.
func (r *Record) Get(key string) Value {
	return r.fields[key]
}

// Set stores v at key and marks key dirty, even when v equals the current
// value. A nil v records a deletion. References and assets are bound to
// this record.
func (r *Record) Set(key string, v Value) {
	r.dirty[key] = struct{}{}
	r.fields[key] = r.bind(v)
}

// Delete is Set(key, nil).
func (r *Record) Delete(key string) {
	r.Set(key, nil)
}

// Has reports whether key currently holds a value.
func (r *Record) Has(key string) bool {
	return r.fields[key] != nil
}

// Deleted reports whether key was explicitly deleted.
func (r *Record) Deleted(key string) bool {
	v, ok := r.fields[key]
	return ok && v == nil
}

// AllKeys returns the sorted keys that currently hold a value.
func (r *Record) AllKeys() []string {
	keys := make([]string, 0, len(r.fields))
	for k, v := range r.fields {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// DirtyKeys returns the sorted keys touched by Set since the record was
// constructed, decoded or last cleaned.
func (r *Record) DirtyKeys() []string {
	keys := make([]string, 0, len(r.dirty))
	for k := range r.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsDirty reports whether key has been touched since the last clean state.
func (r *Record) IsDirty(key string) bool {
	_, ok := r.dirty[key]
	return ok
}

// Clean forgets dirty keys and drops deletion markers, as after a
// successful save.
func (r *Record) Clean() {
	for k, v := range r.fields {
		if v == nil {
			delete(r.fields, k)
		}
	}
	r.dirty = make(map[string]struct{})
}

// Clone returns a deep copy that shares no mutable state with r.
func (r *Record) Clone() *Record {
	c := *r
	c.fields = make(map[string]Value, len(r.fields))
	for k, v := range r.fields {
		c.fields[k] = cloneValue(v)
	}
	c.dirty = make(map[string]struct{}, len(r.dirty))
	for k := range r.dirty {
		c.dirty[k] = struct{}{}
	}
	if r.Creator != nil {
		creator := *r.Creator
		c.Creator = &creator
	}
	if r.Modifier != nil {
		modifier := *r.Modifier
		c.Modifier = &modifier
	}
	if r.Parent != nil {
		parent := *r.Parent
		c.Parent = &parent
	}
	return &c
}

// Load stores v at key without marking it dirty. Decoders use it to
// populate a record that mirrors persisted state.
func (r *Record) Load(key string, v Value) {
	r.fields[key] = r.bind(v)
}

func (r *Record) bind(v Value) Value {
	id := r.id
	switch tv := v.(type) {
	case Reference:
		tv.owner = &id
		return tv
	case Asset:
		tv.owner = &id
		return tv
	}
	return v
}

func cloneValue(v Value) Value {
	switch tv := v.(type) {
	case Bytes:
		return append(Bytes(nil), tv...)
	case IntegerList:
		return append(IntegerList(nil), tv...)
	case TextList:
		return append(TextList(nil), tv...)
	case TimestampList:
		return append(TimestampList(nil), tv...)
	}
	return v
}
