// Package wire describes the tagged JSON representation records take on their
// way to and from the document server: dictionary keys, field type tags, the
// {value, type} fragment and the error taxonomy shared by the codec and the
// response classifier.
package wire

// Dict is a decoded JSON object.
type Dict = map[string]any

// Record dictionary keys
const (
	KeyRecordName      = "recordName"
	KeyRecordType      = "recordType"
	KeyRecordChangeTag = "recordChangeTag"
	KeyFields          = "fields"
	KeyZoneID          = "zoneID"
	KeyCreated         = "created"
	KeyModified        = "modified"
	KeyParent          = "parent"
	KeyCreateShortGUID = "createShortGUID"
	KeyRecords         = "records"
)

// Field fragment keys
const (
	KeyValue = "value"
	KeyType  = "type"
)

// Zone, record log and nested value keys
const (
	KeyZoneName        = "zoneName"
	KeyOwnerRecordName = "ownerRecordName"

	KeyTimestamp      = "timestamp"
	KeyUserRecordName = "userRecordName"
	KeyDeviceID       = "deviceID"

	KeyLatitude  = "latitude"
	KeyLongitude = "longitude"
	KeyAction    = "action"

	KeyFileChecksum      = "fileChecksum"
	KeySize              = "size"
	KeyReferenceChecksum = "referenceChecksum"
	KeyWrappingKey       = "wrappingKey"
	KeyReceipt           = "receipt"
	KeyDownloadURL       = "downloadURL"
)

// Server error keys
const (
	KeyServerErrorCode = "serverErrorCode"
	KeyReason          = "reason"
	KeyUUID            = "uuid"
	KeyRetryAfter      = "retryAfter"
	KeyRedirectURL     = "redirectURL"
)

// Tag is the semantic type discriminator carried next to a field value.
// The empty Tag marks a bare value (numbers and booleans).
type Tag string

// Recognized type tags
const (
	TagNone          Tag = ""
	TagString        Tag = "STRING"
	TagBytes         Tag = "BYTES"
	TagTimestamp     Tag = "TIMESTAMP"
	TagLocation      Tag = "LOCATION"
	TagAsset         Tag = "ASSETID"
	TagReference     Tag = "REFERENCE"
	TagInt64List     Tag = "INT64_LIST"
	TagStringList    Tag = "STRING_LIST"
	TagTimestampList Tag = "TIMESTAMP_LIST"
)

// Reference actions
const (
	ActionNone       = "NONE"
	ActionDeleteSelf = "DELETE_SELF"
)

// Known reports whether t is one of the recognized tags.
func (t Tag) Known() bool {
	switch t {
	case TagString, TagBytes, TagTimestamp, TagLocation, TagAsset, TagReference,
		TagInt64List, TagStringList, TagTimestampList:
		return true
	}
	return false
}

// IsList reports whether t declares a list value.
func (t Tag) IsList() bool {
	return t == TagInt64List || t == TagStringList || t == TagTimestampList
}
