/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claims

import (
	"fmt"
)

// Node is a claim awaiting encoding. It is one of:
//
//	Plain            included verbatim, never disclosable
//	Flat             a selectively disclosable leaf or subtree
//	ObjectNode       nested object whose members are independently plain or disclosed
//	ArrayNode        array whose elements are independently plain or disclosed
//	RecursiveObject  ObjectNode that is additionally disclosed as a single unit
//	RecursiveArray   ArrayNode that is additionally disclosed as a single unit
//
// The same variants are used for array elements, where a Flat element becomes
// an array element disclosure.
type Node interface {
	isNode()
}

// Plain claim value is included verbatim.
type Plain struct {
	Value Value
}

// Flat claim value is selectively disclosable as a whole.
type Flat struct {
	Value Value
}

// ObjectNode is a nested object encoded in place.
type ObjectNode struct {
	Members *Tree
}

// ArrayNode is an array encoded in place.
type ArrayNode struct {
	Elements []Node
}

// RecursiveObject is a nested object that is encoded and then disclosed as a single unit.
type RecursiveObject struct {
	Members *Tree
}

// RecursiveArray is an array that is encoded and then disclosed as a single unit.
type RecursiveArray struct {
	Elements []Node
}

// invalidNode keeps a conversion failure until the tree is encoded.
type invalidNode struct {
	err error
}

func (Plain) isNode()           {}
func (Flat) isNode()            {}
func (ObjectNode) isNode()      {}
func (ArrayNode) isNode()       {}
func (RecursiveObject) isNode() {}
func (RecursiveArray) isNode()  {}
func (invalidNode) isNode()     {}

// PlainOf creates Plain node from generic Go value.
func PlainOf(v interface{}) Node {
	value, err := FromInterface(v)
	if err != nil {
		return invalidNode{err: err}
	}

	return Plain{Value: value}
}

// FlatOf creates Flat node from generic Go value.
func FlatOf(v interface{}) Node {
	value, err := FromInterface(v)
	if err != nil {
		return invalidNode{err: err}
	}

	return Flat{Value: value}
}

// NodeErr returns the conversion error carried by node, including nested trees and elements.
func NodeErr(n Node) error {
	switch t := n.(type) {
	case invalidNode:
		return t.err
	case ObjectNode:
		return t.Members.Err()
	case RecursiveObject:
		return t.Members.Err()
	case ArrayNode:
		return elementsErr(t.Elements)
	case RecursiveArray:
		return elementsErr(t.Elements)
	case Plain, Flat:
		return nil
	default:
		return fmt.Errorf("unsupported claim node type[%T]", n)
	}
}

func elementsErr(elements []Node) error {
	for i, e := range elements {
		if err := NodeErr(e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

// Tree is an ordered mapping of claim names to nodes.
// The builder methods return the tree so that claim sets can be declared fluently:
//
//	claims.NewTree().
//		Plain("iss", "https://example.com/issuer").
//		Flat("given_name", "John").
//		Object("address", claims.NewTree().
//			Flat("street_address", "123 Main St").
//			Plain("country", "US"))
type Tree struct {
	names []string
	nodes map[string]Node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]Node)}
}

// Add sets node for the claim name. Replacing an existing claim keeps its position.
func (t *Tree) Add(name string, n Node) *Tree {
	if t.nodes == nil {
		t.nodes = make(map[string]Node)
	}

	if _, ok := t.nodes[name]; !ok {
		t.names = append(t.names, name)
	}

	t.nodes[name] = n

	return t
}

// Plain adds claim included verbatim.
func (t *Tree) Plain(name string, v interface{}) *Tree {
	return t.Add(name, PlainOf(v))
}

// Flat adds selectively disclosable claim.
func (t *Tree) Flat(name string, v interface{}) *Tree {
	return t.Add(name, FlatOf(v))
}

// Object adds nested object with its own plain and disclosable members.
func (t *Tree) Object(name string, members *Tree) *Tree {
	return t.Add(name, ObjectNode{Members: members})
}

// Array adds array with plain and disclosable elements.
func (t *Tree) Array(name string, elements ...Node) *Tree {
	return t.Add(name, ArrayNode{Elements: elements})
}

// RecursiveObject adds nested object that is disclosed as a whole on top of its members.
func (t *Tree) RecursiveObject(name string, members *Tree) *Tree {
	return t.Add(name, RecursiveObject{Members: members})
}

// RecursiveArray adds array that is disclosed as a whole on top of its elements.
func (t *Tree) RecursiveArray(name string, elements ...Node) *Tree {
	return t.Add(name, RecursiveArray{Elements: elements})
}

// Names returns claim names in insertion order.
func (t *Tree) Names() []string {
	if t == nil {
		return nil
	}

	return append([]string(nil), t.names...)
}

// Node returns node for the claim name.
func (t *Tree) Node(name string) (Node, bool) {
	if t == nil {
		return nil, false
	}

	n, ok := t.nodes[name]

	return n, ok
}

// Len returns number of claims.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}

	return len(t.names)
}

// Range calls fn for every claim in insertion order until fn returns false.
func (t *Tree) Range(fn func(name string, n Node) bool) {
	if t == nil {
		return
	}

	for _, name := range t.names {
		if !fn(name, t.nodes[name]) {
			return
		}
	}
}

// Err returns the first value conversion error recorded in the tree.
func (t *Tree) Err() error {
	if t == nil {
		return nil
	}

	for _, name := range t.names {
		if err := NodeErr(t.nodes[name]); err != nil {
			return fmt.Errorf("claim '%s': %w", name, err)
		}
	}

	return nil
}

// DisclosableCount returns number of disclosures the tree produces, decoys excluded.
func (t *Tree) DisclosableCount() int {
	count := 0

	t.Range(func(_ string, n Node) bool {
		count += nodeDisclosures(n)

		return true
	})

	return count
}

func nodeDisclosures(n Node) int {
	switch node := n.(type) {
	case Flat:
		return 1
	case ObjectNode:
		return node.Members.DisclosableCount()
	case RecursiveObject:
		return 1 + node.Members.DisclosableCount()
	case ArrayNode:
		return elementsDisclosures(node.Elements)
	case RecursiveArray:
		return 1 + elementsDisclosures(node.Elements)
	default:
		return 0
	}
}

func elementsDisclosures(elements []Node) int {
	count := 0
	for _, e := range elements {
		count += nodeDisclosures(e)
	}

	return count
}
