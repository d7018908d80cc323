/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Marshal serializes value into compact JSON. Object members are written in insertion order
// and HTML characters are not escaped, so the output is reproducible byte for byte.
func Marshal(v Value) ([]byte, error) {
	buf := &bytes.Buffer{}

	if err := appendValue(buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return Marshal(s)
}

// MarshalJSON implements json.Marshaler.
func (s Sequence) MarshalJSON() ([]byte, error) {
	return Marshal(s)
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	parsed, err := ParseObject(data)
	if err != nil {
		return err
	}

	*o = *parsed

	return nil
}

func appendValue(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Object:
		if t == nil {
			buf.WriteString("null")

			return nil
		}

		buf.WriteByte('{')

		for i, name := range t.names {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendLiteral(buf, name); err != nil {
				return err
			}

			buf.WriteByte(':')

			if err := appendValue(buf, t.members[name]); err != nil {
				return fmt.Errorf("marshal member '%s': %w", name, err)
			}
		}

		buf.WriteByte('}')
	case Sequence:
		buf.WriteByte('[')

		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendValue(buf, e); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case Scalar:
		return appendLiteral(buf, t.v)
	default:
		return fmt.Errorf("unsupported value type[%T]", v)
	}

	return nil
}

func appendLiteral(buf *bytes.Buffer, v interface{}) error {
	lit := &bytes.Buffer{}

	enc := json.NewEncoder(lit)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return err
	}

	buf.Write(bytes.TrimSuffix(lit.Bytes(), []byte("\n")))

	return nil
}

// Parse parses JSON document preserving object member order. Numbers are kept as json.Number.
// Objects with duplicate member names are rejected.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	return fromResult(gjson.ParseBytes(data))
}

// ParseObject parses JSON document that must be an object.
func ParseObject(data []byte) (*Object, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}

	obj, ok := AsObject(v)
	if !ok {
		return nil, fmt.Errorf("JSON document type[%T] is not an object", v)
	}

	return obj, nil
}

func fromResult(r gjson.Result) (Value, error) {
	switch {
	case r.IsObject():
		obj := NewObject()

		var err error

		r.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if obj.Has(name) {
				err = fmt.Errorf("duplicate member name '%s'", name)

				return false
			}

			var v Value

			v, err = fromResult(value)
			if err != nil {
				return false
			}

			obj.Set(name, v)

			return true
		})

		if err != nil {
			return nil, err
		}

		return obj, nil
	case r.IsArray():
		elements := r.Array()
		seq := make(Sequence, 0, len(elements))

		for _, e := range elements {
			v, err := fromResult(e)
			if err != nil {
				return nil, err
			}

			seq = append(seq, v)
		}

		return seq, nil
	}

	switch r.Type {
	case gjson.String:
		return String(r.Str), nil
	case gjson.Number:
		return Number(json.Number(r.Raw)), nil
	case gjson.True:
		return Bool(true), nil
	case gjson.False:
		return Bool(false), nil
	default:
		return Null(), nil
	}
}

// FromInterface converts generic Go value (as produced by encoding/json) into Value.
// Map members are sorted by name. Other types are converted through their JSON encoding.
func FromInterface(i interface{}) (Value, error) { //nolint:gocyclo
	switch t := i.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("unsupported number value: %v", t)
		}

		return Scalar{v: t}, nil
	case map[string]interface{}:
		names := make([]string, 0, len(t))
		for name := range t {
			names = append(names, name)
		}

		sort.Strings(names)

		obj := NewObject()

		for _, name := range names {
			v, err := FromInterface(t[name])
			if err != nil {
				return nil, fmt.Errorf("convert member '%s': %w", name, err)
			}

			obj.Set(name, v)
		}

		return obj, nil
	case []interface{}:
		seq := make(Sequence, 0, len(t))

		for _, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return nil, err
			}

			seq = append(seq, v)
		}

		return seq, nil
	}

	if rv := reflect.ValueOf(i); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return Null(), nil
	}

	b, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("marshal value type[%T]: %w", i, err)
	}

	return Parse(b)
}

// ToInterface converts value into generic Go representation:
// map[string]interface{}, []interface{} and JSON literals.
func ToInterface(v Value) interface{} {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}

		m := make(map[string]interface{}, t.Len())

		t.Range(func(name string, member Value) bool {
			m[name] = ToInterface(member)

			return true
		})

		return m
	case Sequence:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = ToInterface(e)
		}

		return s
	case Scalar:
		return t.v
	default:
		return nil
	}
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
