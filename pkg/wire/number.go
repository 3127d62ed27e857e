package wire

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Shape is the JSON-level kind of a decoded value.
type Shape int

const (
	ShapeNull Shape = iota
	ShapeBool
	ShapeInteger
	ShapeFloat
	ShapeString
	ShapeDict
	ShapeList
	ShapeUnknown
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeBool:
		return "boolean"
	case ShapeInteger:
		return "integer"
	case ShapeFloat:
		return "float"
	case ShapeString:
		return "string"
	case ShapeDict:
		return "dictionary"
	case ShapeList:
		return "list"
	}
	return "unknown"
}

// IsNumber reports whether s is either numeric shape.
func (s Shape) IsNumber() bool {
	return s == ShapeInteger || s == ShapeFloat
}

// Primitive collapses the two numeric shapes into one so list homogeneity
// can be checked independently of integer/float spelling.
func (s Shape) Primitive() Shape {
	if s == ShapeFloat {
		return ShapeInteger
	}
	return s
}

// ShapeOf classifies v. A json.Number is integral when its text has no
// fraction or exponent and fits in an int64; Go float types are always
// float-shaped.
func ShapeOf(v any) Shape {
	switch n := v.(type) {
	case nil:
		return ShapeNull
	case bool:
		return ShapeBool
	case json.Number:
		if numberIsIntegral(n) {
			return ShapeInteger
		}
		return ShapeFloat
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return ShapeInteger
	case uint64:
		if n > math.MaxInt64 {
			return ShapeFloat
		}
		return ShapeInteger
	case float32, float64, Float:
		return ShapeFloat
	case string:
		return ShapeString
	case map[string]any:
		return ShapeDict
	case []any:
		return ShapeList
	}
	return ShapeUnknown
}

func numberIsIntegral(n json.Number) bool {
	s := string(n)
	if strings.ContainsAny(s, ".eE") {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// AsInt64 returns v as an integer. Float-shaped values are accepted only
// when they hold an integral value in int64 range.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case Float:
		return floatToInt64(float64(n))
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// AsFloat64 returns any numeric v as a float64.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case Float:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Float is a double that renders in JSON with a fraction or exponent even
// when its value is integral, so that it reads back float-shaped.
type Float float64

// MarshalJSON renders f, appending ".0" to integral values.
func (f Float) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(float64(f))
	if err != nil {
		return nil, err
	}
	if !strings.ContainsAny(string(data), ".eE") {
		data = append(data, '.', '0')
	}
	return data, nil
}
