//go:build fuzz
// +build fuzz

package codec

import (
	"encoding/json"
	"testing"

	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// FuzzDecodeRecord feeds arbitrary JSON through the decoder. Whatever
// decodes must survive a snapshot round trip unchanged.
func FuzzDecodeRecord(f *testing.F) {
	f.Add([]byte(`{"recordName":"a","recordType":"T"}`))
	f.Add([]byte(`{"recordName":"a","recordType":"T","fields":{"n":{"value":1.5}}}`))
	f.Add([]byte(`{"recordName":"a","recordType":"T","fields":{"l":{"value":[1,"x"],"type":"INT64_LIST"}}}`))
	f.Add([]byte(`{"recordName":"a","recordType":"T","fields":{"r":{"value":{"recordName":"b"},"type":"REFERENCE"}}}`))
	f.Add([]byte(`{"serverErrorCode":"NOT_FOUND"}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 64*1024 {
			t.Skip("Input too large for fuzz test")
		}

		d, err := wire.Unmarshal(data)
		if err != nil {
			return
		}

		for _, c := range []*Codec{strict, New(Options{AllowPartial: true})} {
			r, err := c.DecodeRecord(d, nil)
			if err != nil {
				continue
			}
			if len(r.DirtyKeys()) != 0 {
				t.Fatalf("decoded record has dirty keys %v", r.DirtyKeys())
			}

			encoded, err := json.Marshal(EncodeSnapshot(r))
			if err != nil {
				t.Fatalf("failed to marshal snapshot: %v", err)
			}
			again, err := wire.Unmarshal(encoded)
			if err != nil {
				t.Fatalf("failed to parse snapshot %s: %v", encoded, err)
			}
			restored, err := strict.DecodeRecord(again, nil)
			if err != nil {
				t.Fatalf("snapshot %s does not decode: %v", encoded, err)
			}

			for _, key := range r.AllKeys() {
				if !record.Equal(r.Get(key), restored.Get(key)) {
					t.Errorf("field %q changed: %#v -> %#v", key, r.Get(key), restored.Get(key))
				}
			}
		}
	})
}

// FuzzDecodeFragment checks that a fragment never decodes to a non-nil
// value alongside an error.
func FuzzDecodeFragment(f *testing.F) {
	f.Add([]byte(`{"value":1}`))
	f.Add([]byte(`{"value":"aGk=","type":"BYTES"}`))
	f.Add([]byte(`{"value":{"latitude":1,"longitude":2},"type":"LOCATION"}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		d, err := wire.Unmarshal(data)
		if err != nil {
			return
		}
		frag, err := wire.FragmentFromDict(d)
		if err != nil {
			return
		}
		v, err := DecodeFragment(frag)
		if err != nil && v != nil {
			t.Fatalf("got value %#v alongside error %v", v, err)
		}
	})
}
