package wire

import "fmt"

// Fragment is the {value, type} pair a single field takes on the wire.
// Bare values (numbers, booleans) leave Type empty.
type Fragment struct {
	Value any
	Type  Tag
}

// Dict renders the fragment as a wire dictionary, omitting the type key
// for bare values.
func (f Fragment) Dict() Dict {
	d := Dict{KeyValue: f.Value}
	if f.Type != TagNone {
		d[KeyType] = string(f.Type)
	}
	return d
}

// FragmentFromDict reads a field dictionary. A missing value key reads as
// null; a type key that is present must be a string.
func FragmentFromDict(d Dict) (Fragment, error) {
	f := Fragment{Value: d[KeyValue]}
	raw, ok := d[KeyType]
	if !ok || raw == nil {
		return f, nil
	}
	tag, ok := raw.(string)
	if !ok {
		return f, Errorf(MalformedWireValue, TagNone, "type key is %T, not a string", raw)
	}
	f.Type = Tag(tag)
	return f, nil
}

// AsDict returns v as a dictionary if it has that shape.
func AsDict(v any) (Dict, bool) {
	d, ok := v.(map[string]any)
	return d, ok
}

// AsList returns v as a list if it has that shape.
func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// String reads a string-valued key from d.
func String(d Dict, key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// RequireString reads a mandatory string key from d.
func RequireString(d Dict, key string) (string, error) {
	raw, ok := d[key]
	if !ok || raw == nil {
		return "", &Error{Kind: MissingRequiredKey, Field: key, Message: "key is absent"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &Error{Kind: MalformedWireValue, Field: key, Message: fmt.Sprintf("expected string, got %T", raw)}
	}
	return s, nil
}
