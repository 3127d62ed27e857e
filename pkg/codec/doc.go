// Package codec converts records between their in-memory form and the
// tagged JSON dictionaries exchanged with the document server.
//
// # Wire Format
//
// A record travels as a dictionary:
//
//	{
//	  "recordName":      "a3f...",
//	  "recordType":      "Item",
//	  "recordChangeTag": "k2x9",
//	  "zoneID":          {"zoneName": "_defaultZone", "ownerRecordName": "_defaultOwner"},
//	  "created":         {"timestamp": 1609459200500, "userRecordName": "_u1", "deviceID": "d1"},
//	  "modified":        {"timestamp": 1609459260000, "userRecordName": "_u1", "deviceID": "d1"},
//	  "parent":          {"recordName": "b7c..."},
//	  "fields": {
//	    "title": {"value": "Widget", "type": "STRING"},
//	    "count": {"value": 3}
//	  }
//	}
//
// Each field is a {value, type} fragment. Tagged variants always carry a
// type; numbers and booleans are bare and recognized by the JSON shape of
// the value. Integer and float numbers stay distinct, which requires the
// dictionary to be parsed with wire.Unmarshal (numbers as json.Number)
// rather than into float64.
//
//	STRING          string
//	BYTES           standard base64 text
//	TIMESTAMP       integer milliseconds since the epoch
//	LOCATION        {"latitude": f, "longitude": f}
//	REFERENCE       {"recordName": s, "action": "NONE"|"DELETE_SELF", "zoneID"?: {...}}
//	ASSETID         {"fileChecksum", "size", "downloadURL", ...}
//	INT64_LIST      [integer, ...]
//	STRING_LIST     [string, ...]
//	TIMESTAMP_LIST  [milliseconds, ...]
//
// # Usage
//
//	r := record.New("Item")
//	r.Set("title", record.Text("Widget"))
//
//	// Full encode for a create, dirty-only encode for an update
//	created := codec.EncodeRecord(r, nil)
//	update := codec.EncodeRecord(r, r.DirtyKeys())
//
//	// Decoding a server dictionary yields a clean record
//	decoded, err := codec.DecodeRecord(dict, nil)
//
// # Error Handling
//
// Decoding never panics. Failures are *wire.Error values matched with
// errors.Is against wire.ErrMissingRequiredKey, wire.ErrMalformedWireValue,
// wire.ErrUnsupportedFieldType and wire.ErrHeterogeneousList.
//
// By default a field that fails to decode fails the whole record and the
// error names the field. A Codec built with Options.AllowPartial skips
// such fields instead, leaving them absent from the record. Malformed or
// incomplete created/modified blocks never fail a decode; they leave the
// corresponding metadata unset.
//
// # Thread Safety
//
// All functions and Codec methods are safe for concurrent use. Records
// themselves are not; see package record.
package codec
