/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package claims models claim values and the claim trees an SD-JWT issuer encodes.
//
// A Value is one of three shapes:
//
//   - Scalar: a JSON literal (string, number, boolean or null)
//   - Sequence: an ordered list of values
//   - *Object: an ordered mapping of member name to value
//
// Objects keep member insertion order so that a value always serializes to the same
// bytes. Digests of disclosures are computed over those bytes.
package claims

import (
	"encoding/json"
)

// Value is a JSON compatible claim value: Scalar, Sequence or *Object.
type Value interface {
	isValue()
}

// Scalar is a JSON literal.
type Scalar struct {
	v interface{}
}

func (Scalar) isValue() {}

// Interface returns the underlying Go value (string, bool, nil, json.Number or another number type).
func (s Scalar) Interface() interface{} {
	return s.v
}

// IsNull checks whether scalar is JSON null.
func (s Scalar) IsNull() bool {
	return s.v == nil
}

// String creates string scalar.
func String(s string) Scalar {
	return Scalar{v: s}
}

// Bool creates boolean scalar.
func Bool(b bool) Scalar {
	return Scalar{v: b}
}

// Number creates number scalar keeping its textual representation.
func Number(n json.Number) Scalar {
	return Scalar{v: n}
}

// Int creates number scalar from integer.
func Int(i int64) Scalar {
	return Scalar{v: json.Number(formatInt(i))}
}

// Null creates JSON null.
func Null() Scalar {
	return Scalar{}
}

// Sequence is an ordered list of values.
type Sequence []Value

func (Sequence) isValue() {}

// Object is an ordered mapping of member names to values.
// The zero value is an empty object ready to use.
type Object struct {
	names   []string
	members map[string]Value
}

func (*Object) isValue() {}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{}
}

// Set adds member to object. Replacing an existing member keeps its position.
func (o *Object) Set(name string, v Value) {
	if o.members == nil {
		o.members = make(map[string]Value)
	}

	if _, ok := o.members[name]; !ok {
		o.names = append(o.names, name)
	}

	o.members[name] = v
}

// Get returns member value.
func (o *Object) Get(name string) (Value, bool) {
	if o == nil {
		return nil, false
	}

	v, ok := o.members[name]

	return v, ok
}

// Has checks for member existence.
func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)

	return ok
}

// Delete removes member.
func (o *Object) Delete(name string) {
	if o == nil {
		return
	}

	if _, ok := o.members[name]; !ok {
		return
	}

	delete(o.members, name)

	for i, n := range o.names {
		if n == name {
			o.names = append(o.names[:i:i], o.names[i+1:]...)

			break
		}
	}
}

// Names returns member names in insertion order.
func (o *Object) Names() []string {
	if o == nil {
		return nil
	}

	return append([]string(nil), o.names...)
}

// Len returns number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.names)
}

// Range calls fn for every member in insertion order until fn returns false.
func (o *Object) Range(fn func(name string, v Value) bool) {
	if o == nil {
		return
	}

	for _, n := range o.names {
		if !fn(n, o.members[n]) {
			return
		}
	}
}

// Copy returns deep copy of the object.
func (o *Object) Copy() *Object {
	c, _ := Copy(o).(*Object) //nolint:errcheck

	return c
}

// Copy returns deep copy of value. Scalars are immutable and shared.
func Copy(v Value) Value {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return (*Object)(nil)
		}

		c := NewObject()

		t.Range(func(name string, m Value) bool {
			c.Set(name, Copy(m))

			return true
		})

		return c
	case Sequence:
		c := make(Sequence, len(t))
		for i, e := range t {
			c[i] = Copy(e)
		}

		return c
	default:
		return v
	}
}

// AsObject returns value as object.
func AsObject(v Value) (*Object, bool) {
	o, ok := v.(*Object)

	return o, ok && o != nil
}

// AsSequence returns value as sequence.
func AsSequence(v Value) (Sequence, bool) {
	s, ok := v.(Sequence)

	return s, ok
}

// AsString returns value as string.
func AsString(v Value) (string, bool) {
	s, ok := v.(Scalar)
	if !ok {
		return "", false
	}

	str, ok := s.v.(string)

	return str, ok
}

// IsScalar checks whether value is a JSON literal.
func IsScalar(v Value) bool {
	_, ok := v.(Scalar)

	return ok || v == nil
}

// Equal compares two values by their serialized form.
func Equal(a, b Value) bool {
	aBytes, err := Marshal(a)
	if err != nil {
		return false
	}

	bBytes, err := Marshal(b)
	if err != nil {
		return false
	}

	return string(aBytes) == string(bBytes)
}
