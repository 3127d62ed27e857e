package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Unmarshal parses a JSON object, keeping numbers as json.Number so that
// integer and float spellings stay distinguishable.
func Unmarshal(data []byte) (Dict, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single JSON object from r. See Unmarshal.
func Decode(r io.Reader) (Dict, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	d, ok := AsDict(v)
	if !ok {
		return nil, Errorf(MalformedWireValue, TagNone, "top-level JSON value is %s, not an object", ShapeOf(v))
	}
	return d, nil
}

// Marshal renders d as JSON.
func Marshal(d Dict) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wire dictionary: %w", err)
	}
	return data, nil
}
