package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/response"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

const serverRecord = `{
	"recordName": "rec-1",
	"recordType": "Item",
	"recordChangeTag": "k2x9",
	"zoneID": {"zoneName": "Inventory", "ownerRecordName": "_owner7"},
	"created": {"timestamp": 1609459200500, "userRecordName": "_u1", "deviceID": "d1"},
	"modified": {"timestamp": 1609459260000, "userRecordName": "_u2", "deviceID": "d2"},
	"parent": {"recordName": "rec-0"},
	"fields": {
		"title":    {"value": "Widget", "type": "STRING"},
		"count":    {"value": 3},
		"price":    {"value": 9.99},
		"active":   {"value": true},
		"shipped":  {"value": 1609459200500, "type": "TIMESTAMP"},
		"thumb":    {"value": "aGVsbG8=", "type": "BYTES"},
		"sizes":    {"value": [1, 2, 3], "type": "INT64_LIST"},
		"tags":     {"value": ["a", "b"], "type": "STRING_LIST"},
		"history":  {"value": [1000, 2000], "type": "TIMESTAMP_LIST"},
		"where":    {"value": {"latitude": 37.33, "longitude": -122.0}, "type": "LOCATION"},
		"owner":    {"value": {"recordName": "user-9", "action": "DELETE_SELF"}, "type": "REFERENCE"},
		"manual":   {"value": {"fileChecksum": "abc", "size": 2048, "downloadURL": "https://cdn/m"}, "type": "ASSETID"},
		"cleared":  {"value": null}
	}
}`

func mustParse(t *testing.T, s string) wire.Dict {
	t.Helper()
	d, err := wire.Unmarshal([]byte(s))
	require.NoError(t, err)
	return d
}

func TestDecodeRecord(t *testing.T) {
	r, err := DecodeRecord(mustParse(t, serverRecord), nil)
	require.NoError(t, err)

	zone := record.ZoneID{Name: "Inventory", Owner: "_owner7"}
	assert.Equal(t, "Item", r.Type())
	assert.Equal(t, record.RecordID{Name: "rec-1", Zone: zone}, r.ID())
	assert.Equal(t, "k2x9", r.ChangeTag)

	require.NotNil(t, r.Creator)
	assert.Equal(t, record.NewRecordID("_u1"), *r.Creator)
	assert.Equal(t, "d1", r.CreatorDevice)
	assert.Equal(t, int64(1609459200500), r.CreatedAt.UnixMilli())
	require.NotNil(t, r.Modifier)
	assert.Equal(t, "_u2", r.Modifier.Name)
	assert.Equal(t, int64(1609459260000), r.ModifiedAt.UnixMilli())

	require.NotNil(t, r.Parent)
	assert.Equal(t, record.RecordID{Name: "rec-0", Zone: zone}, r.Parent.Target)

	assert.Equal(t, record.Text("Widget"), r.Get("title"))
	assert.Equal(t, record.Int(3), r.Get("count"))
	assert.Equal(t, record.Float(9.99), r.Get("price"))
	assert.Equal(t, record.Boolean(true), r.Get("active"))
	assert.Equal(t, int64(1609459200500), r.Get("shipped").(record.Timestamp).Millis())
	assert.Equal(t, record.Bytes("hello"), r.Get("thumb"))
	assert.Equal(t, record.IntegerList{1, 2, 3}, r.Get("sizes"))
	assert.Equal(t, record.TextList{"a", "b"}, r.Get("tags"))
	assert.Equal(t, record.KindTimestampList, r.Get("history").Kind())
	assert.Equal(t, record.Location{Latitude: 37.33, Longitude: -122.0}, r.Get("where"))
	assert.True(t, record.Equal(record.Asset{FileChecksum: "abc", Size: 2048, DownloadURL: "https://cdn/m"}, r.Get("manual")))

	ref := r.Get("owner").(record.Reference)
	assert.Equal(t, record.RecordID{Name: "user-9", Zone: zone}, ref.Target)
	assert.Equal(t, record.ActionDeleteSelf, ref.Action)
	owner, bound := ref.Owner()
	require.True(t, bound)
	assert.Equal(t, r.ID(), owner)

	assert.Nil(t, r.Get("cleared"))
	assert.NotContains(t, r.AllKeys(), "cleared")
	assert.Len(t, r.AllKeys(), 12)
}

func TestDecodeRecord_ProducesCleanState(t *testing.T) {
	r, err := DecodeRecord(mustParse(t, serverRecord), nil)
	require.NoError(t, err)
	assert.Empty(t, r.DirtyKeys())
}

func TestDecodeRecord_Defaults(t *testing.T) {
	r, err := DecodeRecord(wire.Dict{"recordName": "x", "recordType": "y"}, nil)
	require.NoError(t, err)

	assert.Equal(t, record.NewRecordID("x"), r.ID())
	assert.Empty(t, r.ChangeTag)
	assert.Nil(t, r.Creator)
	assert.Nil(t, r.Modifier)
	assert.True(t, r.ModifiedAt.IsZero())
	assert.Nil(t, r.Parent)
	assert.Empty(t, r.AllKeys())
}

func TestDecodeRecord_FallbackIdentifier(t *testing.T) {
	fallback := record.RecordID{Name: "x", Zone: record.ZoneID{Name: "Private", Owner: "_me"}}

	r, err := DecodeRecord(wire.Dict{"recordName": "x", "recordType": "y"}, &fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, r.ID())

	_, err = DecodeRecord(wire.Dict{"recordType": "y"}, &fallback)
	assert.True(t, errors.Is(err, wire.ErrMissingRequiredKey))
}

func TestDecodeRecord_RequiredKeys(t *testing.T) {
	testCases := []struct {
		name string
		dict wire.Dict
		want error
	}{
		{"missing name", wire.Dict{"recordType": "y"}, wire.ErrMissingRequiredKey},
		{"missing type", wire.Dict{"recordName": "x"}, wire.ErrMissingRequiredKey},
		{"null name", wire.Dict{"recordName": nil, "recordType": "y"}, wire.ErrMissingRequiredKey},
		{"numeric name", wire.Dict{"recordName": json.Number("1"), "recordType": "y"}, wire.ErrMalformedWireValue},
		{"zone not dict", wire.Dict{"recordName": "x", "recordType": "y", "zoneID": "z"}, wire.ErrMalformedWireValue},
		{"zone without name", wire.Dict{"recordName": "x", "recordType": "y", "zoneID": wire.Dict{}}, wire.ErrMalformedWireValue},
		{"fields not dict", wire.Dict{"recordName": "x", "recordType": "y", "fields": []any{}}, wire.ErrMalformedWireValue},
		{"error payload", wire.Dict{"serverErrorCode": "BAD_REQUEST", "reason": "..."}, wire.ErrMissingRequiredKey},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := DecodeRecord(tc.dict, nil)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestDecodeRecord_MetadataBlocksAreLenient(t *testing.T) {
	testCases := []struct {
		name    string
		created any
	}{
		{"not a dict", "yesterday"},
		{"missing timestamp", wire.Dict{"userRecordName": "_u", "deviceID": "d"}},
		{"string timestamp", wire.Dict{"timestamp": "1", "userRecordName": "_u", "deviceID": "d"}},
		{"missing user", wire.Dict{"timestamp": json.Number("1"), "deviceID": "d"}},
		{"missing device", wire.Dict{"timestamp": json.Number("1"), "userRecordName": "_u"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := wire.Dict{"recordName": "x", "recordType": "y", "created": tc.created, "modified": tc.created}
			r, err := DecodeRecord(d, nil)
			require.NoError(t, err)
			assert.Nil(t, r.Creator)
			assert.Nil(t, r.Modifier)
			assert.True(t, r.ModifiedAt.IsZero())
			assert.NotEqual(t, int64(1), r.CreatedAt.UnixMilli())
		})
	}
}

func TestDecodeRecord_FieldFailurePolicy(t *testing.T) {
	dict := func() wire.Dict {
		return wire.Dict{
			"recordName": "x",
			"recordType": "y",
			"fields": wire.Dict{
				"good":    wire.Dict{"value": "ok", "type": "STRING"},
				"mixed":   wire.Dict{"value": []any{json.Number("1"), "x"}, "type": "INT64_LIST"},
				"unknown": wire.Dict{"value": wire.Dict{}, "type": "FROBNICATE"},
				"scalar":  "not a fragment",
			},
		}
	}

	t.Run("strict fails on the first bad field", func(t *testing.T) {
		r, err := DecodeRecord(dict(), nil)
		require.Error(t, err)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, wire.ErrHeterogeneousList))

		var werr *wire.Error
		require.True(t, errors.As(err, &werr))
		assert.Equal(t, "mixed", werr.Field)
		assert.Contains(t, err.Error(), `record "x"`)
	})

	t.Run("partial skips bad fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
		c := New(Options{AllowPartial: true, Logger: &logger})

		r, err := c.DecodeRecord(dict(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, r.AllKeys())
		assert.Empty(t, r.DirtyKeys())

		assert.Contains(t, buf.String(), `"field":"mixed"`)
		assert.Contains(t, buf.String(), `"field":"unknown"`)
		assert.Contains(t, buf.String(), `"field":"scalar"`)
	})

	t.Run("partial without a logger", func(t *testing.T) {
		r, err := New(Options{AllowPartial: true}).DecodeRecord(dict(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, r.AllKeys())
	})
}

func TestEncodeRecord_CreateScenario(t *testing.T) {
	r := record.New("Item")
	r.Set("title", record.Text("Widget"))

	d := EncodeRecord(r, nil)

	assert.Equal(t, "Item", d["recordType"])
	assert.Equal(t, r.ID().Name, d["recordName"])
	assert.Equal(t, wire.Dict{"title": wire.Dict{"value": "Widget", "type": "STRING"}}, d["fields"])
	assert.NotContains(t, d, "parent")
	assert.NotContains(t, d, "createShortGUID")
	assert.NotContains(t, d, "recordChangeTag")
}

func TestEncodeRecord_PartialUpdate(t *testing.T) {
	r, err := DecodeRecord(mustParse(t, serverRecord), nil)
	require.NoError(t, err)
	require.Greater(t, len(r.AllKeys()), 3)

	r.Set("title", record.Text("Gadget"))
	r.Set("count", r.Get("count"))
	r.Delete("tags")

	d := EncodeRecord(r, r.DirtyKeys())
	fields := d["fields"].(wire.Dict)

	assert.Len(t, fields, 3)
	assert.Equal(t, wire.Dict{"value": "Gadget", "type": "STRING"}, fields["title"])
	assert.Equal(t, wire.Dict{"value": int64(3)}, fields["count"])
	assert.Equal(t, wire.Dict{"value": nil}, fields["tags"])
	assert.Equal(t, "k2x9", d["recordChangeTag"])
}

func TestEncodeRecord_KeyFilter(t *testing.T) {
	r := record.New("Item")
	r.Set("a", record.Int(1))
	r.Set("b", record.Int(2))

	d := EncodeRecord(r, []string{"b", "never-set"})
	assert.Equal(t, wire.Dict{"b": wire.Dict{"value": int64(2)}}, d["fields"])

	d = EncodeRecord(record.New("Item"), []string{})
	assert.Empty(t, d["fields"])

	var grown []string
	d = EncodeRecord(r, grown)
	assert.Len(t, d["fields"], 2, "nil filter encodes every field")

	d = EncodeRecord(r, make([]string, 0))
	assert.Empty(t, d["fields"])

	clean := r.Clone()
	clean.Clean()
	require.NotNil(t, clean.DirtyKeys())
	d = EncodeRecord(clean, clean.DirtyKeys())
	assert.Empty(t, d["fields"])
}

func TestEncodeRecord_Parent(t *testing.T) {
	r := record.New("Item")
	parent := record.NewReference(record.NewRecordID("p-1"), record.ActionNone)
	r.Parent = &parent

	d := EncodeRecord(r, nil)
	assert.Equal(t, int64(1), d["createShortGUID"])
	assert.Equal(t, wire.Dict{"recordName": "p-1"}, d["parent"])
	assert.Empty(t, r.DirtyKeys())
}

func TestEncodeSnapshotRoundTrip(t *testing.T) {
	original, err := DecodeRecord(mustParse(t, serverRecord), nil)
	require.NoError(t, err)

	data, err := wire.Marshal(EncodeSnapshot(original))
	require.NoError(t, err)

	restored, err := DecodeRecord(mustParse(t, string(data)), nil)
	require.NoError(t, err)

	assert.Equal(t, original.ID(), restored.ID())
	assert.Equal(t, original.Type(), restored.Type())
	assert.Equal(t, original.ChangeTag, restored.ChangeTag)
	assert.Equal(t, original.Creator, restored.Creator)
	assert.Equal(t, original.CreatorDevice, restored.CreatorDevice)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
	assert.Equal(t, original.Modifier, restored.Modifier)
	assert.True(t, original.ModifiedAt.Equal(restored.ModifiedAt))
	assert.Equal(t, original.Parent.Target, restored.Parent.Target)
	assert.Equal(t, original.AllKeys(), restored.AllKeys())
	for _, key := range original.AllKeys() {
		assert.True(t, record.Equal(original.Get(key), restored.Get(key)), "field %s", key)
	}
}

func TestEncodeSnapshot_FreshRecord(t *testing.T) {
	r := record.New("Item")
	r.Set("n", record.Float(2))

	d := EncodeSnapshot(r)
	assert.Equal(t, wire.Dict{"zoneName": "_defaultZone", "ownerRecordName": "_defaultOwner"}, d["zoneID"])
	assert.NotContains(t, d, "modified")

	restored, err := DecodeRecord(d, nil)
	require.NoError(t, err)
	assert.Nil(t, restored.Creator)
	assert.Equal(t, r.CreatedAt.Truncate(time.Millisecond).UnixMilli(), restored.CreatedAt.UnixMilli())
	assert.Equal(t, record.Float(2), restored.Get("n"))
}

func TestDecodeBatch(t *testing.T) {
	payload := mustParse(t, `{"records": [
		{"recordName": "a", "recordType": "Item", "fields": {"n": {"value": 1}}},
		{"serverErrorCode": "NOT_FOUND", "reason": "gone", "recordName": "b"},
		{"recordName": "c", "recordType": "Item", "fields": {"bad": {"value": "%%", "type": "BYTES"}}},
		"junk"
	]}`)

	results, err := DecodeBatch(payload)
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.NoError(t, results[0].Err)
	assert.Equal(t, "a", results[0].Record.ID().Name)
	assert.Equal(t, record.Int(1), results[0].Record.Get("n"))

	var serr *response.ServerError
	require.True(t, errors.As(results[1].Err, &serr))
	assert.Equal(t, "NOT_FOUND", serr.Code)
	assert.Nil(t, results[1].Record)

	assert.True(t, errors.Is(results[2].Err, wire.ErrMalformedWireValue))
	assert.Nil(t, results[2].Record)

	assert.True(t, errors.Is(results[3].Err, wire.ErrMalformedWireValue))

	partial, err := New(Options{AllowPartial: true}).DecodeBatch(payload)
	require.NoError(t, err)
	require.NoError(t, partial[2].Err)
	assert.Empty(t, partial[2].Record.AllKeys())
}

func TestDecodeBatch_MissingRecords(t *testing.T) {
	_, err := DecodeBatch(wire.Dict{})
	assert.True(t, errors.Is(err, wire.ErrMissingRequiredKey))

	_, err = DecodeBatch(wire.Dict{"records": wire.Dict{}})
	assert.True(t, errors.Is(err, wire.ErrMalformedWireValue))
}
