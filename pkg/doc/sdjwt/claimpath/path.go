/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package claimpath addresses values inside a claim set, either with a structured claim path
// (claim name / array index / all array elements) or with an RFC 6901 JSON pointer.
package claimpath

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ElementKind identifies claim path element variant.
type ElementKind int

const (
	// NameElement selects object member.
	NameElement ElementKind = iota
	// IndexElement selects array element at offset.
	IndexElement
	// AllElementsElement selects every element of an array.
	AllElementsElement
)

// Element is a single step of a claim path.
type Element struct {
	kind  ElementKind
	name  string
	index int
}

// Name creates element selecting object member n.
func Name(n string) Element {
	return Element{kind: NameElement, name: n}
}

// Index creates element selecting array element i.
func Index(i int) Element {
	return Element{kind: IndexElement, index: i}
}

// AllElements creates element selecting every element of an array.
func AllElements() Element {
	return Element{kind: AllElementsElement}
}

// Kind returns element variant.
func (e Element) Kind() ElementKind {
	return e.kind
}

// Name returns member name for a name element.
func (e Element) Name() (string, bool) {
	return e.name, e.kind == NameElement
}

// Index returns array offset for an index element.
func (e Element) Index() (int, bool) {
	return e.index, e.kind == IndexElement
}

// IsAllElements checks for the all elements wildcard.
func (e Element) IsAllElements() bool {
	return e.kind == AllElementsElement
}

// Matches compares elements. AllElements matches any index and itself.
func (e Element) Matches(other Element) bool {
	switch {
	case e.kind == AllElementsElement:
		return other.kind != NameElement
	case other.kind == AllElementsElement:
		return e.kind != NameElement
	default:
		return e == other
	}
}

// String returns element in its JSON form: "name", 0 or null.
func (e Element) String() string {
	switch e.kind {
	case IndexElement:
		return strconv.Itoa(e.index)
	case AllElementsElement:
		return "null"
	default:
		b, err := json.Marshal(e.name)
		if err != nil {
			return strconv.Quote(e.name)
		}

		return string(b)
	}
}

// MarshalJSON encodes element as a string, an integer or null.
func (e Element) MarshalJSON() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalJSON decodes element from a string, a non-negative integer or null.
func (e *Element) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if string(data) == "null" {
		*e = AllElements()

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("decode claim path element: %w", err)
		}

		*e = Name(name)

		return nil
	}

	i, err := strconv.Atoi(string(data))
	if err != nil || i < 0 {
		return fmt.Errorf("claim path element '%s' must be a string, a non-negative integer or null", data)
	}

	*e = Index(i)

	return nil
}

// Path is an immutable sequence of claim path elements.
type Path struct {
	elements []Element
}

// New creates claim path from elements.
func New(elements ...Element) Path {
	return Path{elements: append([]Element(nil), elements...)}
}

// ClaimNames creates claim path selecting nested object members.
func ClaimNames(names ...string) Path {
	elements := make([]Element, 0, len(names))
	for _, n := range names {
		elements = append(elements, Name(n))
	}

	return Path{elements: elements}
}

// Parse parses claim path from its JSON array form, for example ["address","street_address"].
func Parse(s string) (Path, error) {
	var p Path

	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return Path{}, err
	}

	return p, nil
}

// Elements returns copy of path elements.
func (p Path) Elements() []Element {
	return append([]Element(nil), p.elements...)
}

// Len returns number of elements.
func (p Path) Len() int {
	return len(p.elements)
}

// IsEmpty checks whether path addresses the root.
func (p Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// Head returns first element.
func (p Path) Head() (Element, bool) {
	if p.IsEmpty() {
		return Element{}, false
	}

	return p.elements[0], true
}

// Tail returns path without its first element.
func (p Path) Tail() Path {
	if p.IsEmpty() {
		return p
	}

	return Path{elements: p.elements[1:]}
}

// Last returns last element.
func (p Path) Last() (Element, bool) {
	if p.IsEmpty() {
		return Element{}, false
	}

	return p.elements[len(p.elements)-1], true
}

// Parent returns path without its last element. The root has no parent.
func (p Path) Parent() (Path, bool) {
	if p.IsEmpty() {
		return Path{}, false
	}

	return Path{elements: p.elements[:len(p.elements)-1]}, true
}

// Append returns new path extended with elements.
func (p Path) Append(elements ...Element) Path {
	res := make([]Element, 0, len(p.elements)+len(elements))
	res = append(res, p.elements...)
	res = append(res, elements...)

	return Path{elements: res}
}

// AppendName returns new path extended with object member.
func (p Path) AppendName(name string) Path {
	return p.Append(Name(name))
}

// AppendIndex returns new path extended with array offset.
func (p Path) AppendIndex(i int) Path {
	return p.Append(Index(i))
}

// Contains checks whether other is p or lies under p. AllElements in either path matches any index.
func (p Path) Contains(other Path) bool {
	if len(p.elements) > len(other.elements) {
		return false
	}

	for i, e := range p.elements {
		if !e.Matches(other.elements[i]) {
			return false
		}
	}

	return true
}

// Matches checks whether both paths have the same length and matching elements.
func (p Path) Matches(other Path) bool {
	return len(p.elements) == len(other.elements) && p.Contains(other)
}

// Equal checks for element-wise equality, wildcards included.
func (p Path) Equal(other Path) bool {
	if len(p.elements) != len(other.elements) {
		return false
	}

	for i, e := range p.elements {
		if e != other.elements[i] {
			return false
		}
	}

	return true
}

// String returns path in JSON array form, for example ["nationalities",0] or ["degrees",null,"type"].
func (p Path) String() string {
	parts := make([]string, len(p.elements))
	for i, e := range p.elements {
		parts[i] = e.String()
	}

	return "[" + strings.Join(parts, ",") + "]"
}

// Key returns canonical map key of the path.
func (p Path) Key() string {
	return p.String()
}

// MarshalJSON encodes path as JSON array.
func (p Path) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON decodes path from JSON array.
func (p *Path) UnmarshalJSON(data []byte) error {
	var elements []Element

	if err := json.Unmarshal(data, &elements); err != nil {
		return fmt.Errorf("decode claim path: %w", err)
	}

	if elements == nil {
		return errors.New("claim path must be an array")
	}

	p.elements = elements

	return nil
}
