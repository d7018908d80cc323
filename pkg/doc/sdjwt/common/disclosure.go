/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
)

const (
	objectDisclosureParts = 3
	arrayDisclosureParts  = 2

	saltIndex  = 0
	nameIndex  = 1
	valueIndex = 2
)

// Disclosure is base64url encoded JSON array [salt, name, value] (object member)
// or [salt, value] (array element).
type Disclosure string

// NewObjectDisclosure creates disclosure of object member.
func NewObjectDisclosure(salt, name string, value claims.Value) (Disclosure, error) {
	return newDisclosure(claims.String(salt), claims.String(name), value)
}

// NewArrayDisclosure creates disclosure of array element.
func NewArrayDisclosure(salt string, value claims.Value) (Disclosure, error) {
	return newDisclosure(claims.String(salt), value)
}

// newDisclosure serializes parts as ["a", "b", value]: a space follows every separating comma
// of the outer array while values are compact.
func newDisclosure(parts ...claims.Value) (Disclosure, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('[')

	for i, part := range parts {
		if i > 0 {
			buf.WriteString(", ")
		}

		b, err := claims.Marshal(part)
		if err != nil {
			return "", NewError(ErrEncoding, fmt.Errorf("marshal disclosure: %w", err))
		}

		buf.Write(b)
	}

	buf.WriteByte(']')

	return Disclosure(base64.RawURLEncoding.EncodeToString(buf.Bytes())), nil
}

func (d Disclosure) String() string {
	return string(d)
}

// DisclosureClaim is a decoded disclosure.
type DisclosureClaim struct {
	Disclosure Disclosure
	Salt       string
	// Name is empty for array element disclosures.
	Name     string
	Value    claims.Value
	Elements int
}

// IsArrayElement checks whether disclosure is [salt, value].
func (c *DisclosureClaim) IsArrayElement() bool {
	return c.Elements == arrayDisclosureParts
}

// Decode decodes disclosure. The JSON array must have two or three elements with a string salt
// (and a string name).
func (d Disclosure) Decode() (*DisclosureClaim, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(string(d))
	if err != nil {
		return nil, NewError(ErrInvalidDisclosure, fmt.Errorf("failed to decode disclosure: %w", err)).
			WithDisclosures(d)
	}

	v, err := claims.Parse(decoded)
	if err != nil {
		return nil, NewError(ErrInvalidDisclosure, fmt.Errorf("failed to unmarshal disclosure array: %w", err)).
			WithDisclosures(d)
	}

	parts, ok := claims.AsSequence(v)
	if !ok || (len(parts) != objectDisclosureParts && len(parts) != arrayDisclosureParts) {
		return nil, NewError(ErrInvalidDisclosure,
			fmt.Errorf("disclosure must be an array of %d or %d elements", arrayDisclosureParts, objectDisclosureParts)).
			WithDisclosures(d)
	}

	salt, ok := claims.AsString(parts[saltIndex])
	if !ok {
		return nil, NewError(ErrInvalidDisclosure, fmt.Errorf("disclosure salt type[%T] must be string", parts[saltIndex])).
			WithDisclosures(d)
	}

	claim := &DisclosureClaim{Disclosure: d, Salt: salt, Elements: len(parts)}

	if len(parts) == arrayDisclosureParts {
		claim.Value = parts[1]

		return claim, nil
	}

	name, ok := claims.AsString(parts[nameIndex])
	if !ok {
		return nil, NewError(ErrInvalidDisclosure, fmt.Errorf("disclosure name type[%T] must be string", parts[nameIndex])).
			WithDisclosures(d)
	}

	claim.Name = name
	claim.Value = parts[valueIndex]

	return claim, nil
}

// DecodeDisclosures decodes disclosures in order.
func DecodeDisclosures(disclosures []Disclosure) ([]*DisclosureClaim, error) {
	var result []*DisclosureClaim

	for _, d := range disclosures {
		claim, err := d.Decode()
		if err != nil {
			return nil, err
		}

		result = append(result, claim)
	}

	return result, nil
}

// DigestKind identifies where the digest was found in the payload.
type DigestKind int

const (
	// ObjectDigest is listed in an _sd array and expects [salt, name, value].
	ObjectDigest DigestKind = iota
	// ArrayDigest is an array element {"...": digest} and expects [salt, value].
	ArrayDigest
)

func (k DigestKind) String() string {
	if k == ArrayDigest {
		return "array"
	}

	return "object"
}

// DigestType is a digest found in the payload.
type DigestType struct {
	Kind  DigestKind
	Value string
}

// ExpectedElements returns number of elements the matching disclosure must have.
func (t DigestType) ExpectedElements() int {
	if t.Kind == ArrayDigest {
		return arrayDisclosureParts
	}

	return objectDisclosureParts
}
