/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claimpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
)

const pointerSeparator = "/"

var (
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~") //nolint:gochecknoglobals
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1") //nolint:gochecknoglobals
)

// Pointer is a JSON pointer (https://www.rfc-editor.org/rfc/rfc6901).
type Pointer struct {
	tokens []string
}

// NewPointer creates pointer from unescaped reference tokens.
func NewPointer(tokens ...string) Pointer {
	return Pointer{tokens: append([]string(nil), tokens...)}
}

// ParsePointer parses JSON pointer string. The pointer must start with "/".
func ParsePointer(s string) (Pointer, error) {
	if !strings.HasPrefix(s, pointerSeparator) {
		return Pointer{}, fmt.Errorf("JSON pointer '%s' must start with '/'", s)
	}

	parts := strings.Split(s[1:], pointerSeparator)

	tokens := make([]string, len(parts))
	for i, part := range parts {
		tokens[i] = pointerUnescaper.Replace(part)
	}

	return Pointer{tokens: tokens}, nil
}

// MustParsePointer parses JSON pointer and panics on error.
func MustParsePointer(s string) Pointer {
	p, err := ParsePointer(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Tokens returns unescaped reference tokens.
func (p Pointer) Tokens() []string {
	return append([]string(nil), p.tokens...)
}

// String returns escaped pointer.
func (p Pointer) String() string {
	var sb strings.Builder

	for _, t := range p.tokens {
		sb.WriteString(pointerSeparator)
		sb.WriteString(pointerEscaper.Replace(t))
	}

	return sb.String()
}

// Evaluate resolves pointer against value. A token is an array index only when the current value is an array.
func (p Pointer) Evaluate(v claims.Value) (claims.Value, bool) {
	current := v

	for _, t := range p.tokens {
		switch c := current.(type) {
		case *claims.Object:
			member, ok := c.Get(t)
			if !ok {
				return nil, false
			}

			current = member
		case claims.Sequence:
			i, ok := arrayIndex(t)
			if !ok || i >= len(c) {
				return nil, false
			}

			current = c[i]
		default:
			return nil, false
		}
	}

	return current, true
}

// ToClaimPath converts pointer into claim path. Tokens made of digits become array indices.
func (p Pointer) ToClaimPath() Path {
	elements := make([]Element, len(p.tokens))

	for i, t := range p.tokens {
		if idx, ok := arrayIndex(t); ok {
			elements[i] = Index(idx)
		} else {
			elements[i] = Name(t)
		}
	}

	return Path{elements: elements}
}

// PointerFromClaimPath converts claim path into pointer. AllElements has no pointer form.
func PointerFromClaimPath(path Path) (Pointer, error) {
	tokens := make([]string, len(path.elements))

	for i, e := range path.elements {
		switch e.kind {
		case NameElement:
			tokens[i] = e.name
		case IndexElement:
			tokens[i] = strconv.Itoa(e.index)
		default:
			return Pointer{}, fmt.Errorf("claim path %s: all elements selector has no JSON pointer form", path)
		}
	}

	return Pointer{tokens: tokens}, nil
}

func arrayIndex(token string) (int, bool) {
	if token == "" {
		return 0, false
	}

	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}

	return i, true
}
