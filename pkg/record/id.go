package record

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Default zone identity used when the server omits a zoneID
const (
	DefaultZoneName  = "_defaultZone"
	DefaultZoneOwner = "_defaultOwner"
)

// ZoneID identifies a partition of records by name and owner
type ZoneID struct {
	Name  string
	Owner string
}

// DefaultZone is the well-known zone every container starts with
var DefaultZone = ZoneID{Name: DefaultZoneName, Owner: DefaultZoneOwner}

// IsDefault reports whether z is the default zone.
func (z ZoneID) IsDefault() bool {
	return z == DefaultZone
}

func (z ZoneID) String() string {
	return fmt.Sprintf("%s/%s", z.Owner, z.Name)
}

// RecordID addresses a record within a zone
type RecordID struct {
	Name string
	Zone ZoneID
}

// NewRecordID returns an identifier for name in the default zone.
func NewRecordID(name string) RecordID {
	return RecordID{Name: name, Zone: DefaultZone}
}

func (id RecordID) String() string {
	return fmt.Sprintf("%s:%s", id.Zone, id.Name)
}

// NameGenerator produces fresh record names
type NameGenerator func() string

// KSUIDNames generates sortable, time-prefixed record names.
func KSUIDNames() string {
	return ksuid.New().String()
}

// UUIDNames generates random (version 4) UUID record names.
func UUIDNames() string {
	return uuid.NewString()
}

// GeneratorFor maps a configured name scheme to a generator.
func GeneratorFor(scheme string) (NameGenerator, error) {
	switch scheme {
	case "", "ksuid":
		return KSUIDNames, nil
	case "uuid":
		return UUIDNames, nil
	}
	return nil, fmt.Errorf("unknown record name scheme %q", scheme)
}
