// Package numeric normalizes loosely-typed document values into numbers.
//
// Tour and booking documents are written by several clients over time and
// carry numbers as JSON numbers, numeric strings, empty strings or nothing at
// all. Every numeric field decodes through ToNumber so that downstream
// arithmetic never has to deal with a missing or malformed value.
package numeric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ToNumber coerces v to a float64. nil, empty strings and anything that does
// not parse as a finite number yield 0. Negative and fractional values are
// returned unchanged.
func ToNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case Number:
		f = float64(n)
	case *Number:
		if n == nil {
			return 0
		}
		f = float64(*n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Number is a float64 that tolerates malformed input when decoded.
type Number float64

// Float returns n as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Ptr returns a pointer to a Number holding v.
func Ptr(v float64) *Number {
	n := Number(v)
	return &n
}

// UnmarshalJSON accepts numbers, numeric strings, null and garbage; anything
// that is not a number decodes as 0.
func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		*n = 0
		return nil
	}
	*n = Number(ToNumber(raw))
	return nil
}

// UnmarshalBSONValue mirrors UnmarshalJSON for documents read from MongoDB.
func (n *Number) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw any
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&raw); err != nil {
		*n = 0
		return nil
	}
	*n = Number(ToNumber(raw))
	return nil
}

// Optional is a number that remembers whether a value was configured. null,
// empty strings and non-numeric input decode as unset; a real 0 is set.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a configured Optional holding v.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// IsZero reports whether o is unset, so omitzero and bson omitempty drop it.
func (o Optional) IsZero() bool {
	return !o.Valid
}

// Or returns the configured value, or def when unset.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// optionalFrom is ToNumber that also reports whether raw held a number.
func optionalFrom(raw any) Optional {
	switch v := raw.(type) {
	case nil:
		return Optional{}
	case string:
		s := strings.TrimSpace(v)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Optional{}
		}
		return Some(f)
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Optional{}
		}
		return Some(f)
	case bool:
		return Optional{}
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Some(ToNumber(raw))
	}
	return Optional{}
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		*o = Optional{}
		return nil
	}
	*o = optionalFrom(raw)
	return nil
}

func (o Optional) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !o.Valid {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(o.Value)
}

func (o *Optional) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw any
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&raw); err != nil {
		*o = Optional{}
		return nil
	}
	*o = optionalFrom(raw)
	return nil
}
