/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"fmt"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

// Mode tells how a claim of a plain JSON claim set is encoded.
type Mode int

const (
	// ModePlain includes the claim verbatim.
	ModePlain Mode = iota
	// ModeFlat discloses the claim as a whole.
	ModeFlat
	// ModeStructured keeps the object or array in place and applies the policy to its members.
	ModeStructured
	// ModeRecursive is ModeStructured plus disclosure of the object or array as a whole.
	ModeRecursive
)

// Policy selects encoding mode for the claim at path.
type Policy interface {
	Mode(path claimpath.Path, v claims.Value) Mode
}

// PolicyFunc adapts function to Policy.
type PolicyFunc func(path claimpath.Path, v claims.Value) Mode

// Mode calls f(path, v).
func (f PolicyFunc) Mode(path claimpath.Path, v claims.Value) Mode {
	return f(path, v)
}

// FlatPolicy discloses every top level claim as a whole.
func FlatPolicy() Policy {
	return PolicyFunc(func(path claimpath.Path, _ claims.Value) Mode {
		if path.Len() == 1 {
			return ModeFlat
		}

		return ModePlain
	})
}

// StructuredPolicy keeps nested objects in place and discloses every other member separately.
func StructuredPolicy() Policy {
	return PolicyFunc(func(path claimpath.Path, v claims.Value) Mode {
		if last, ok := path.Last(); ok && last.Kind() == claimpath.IndexElement {
			return ModePlain
		}

		if _, ok := claims.AsObject(v); ok {
			return ModeStructured
		}

		return ModeFlat
	})
}

// PointerPolicy selects mode by JSON pointer. Claims not listed are plain.
func PointerPolicy(flat, structured, recursive []claimpath.Pointer) Policy {
	modes := make(map[string]Mode)

	for _, p := range structured {
		modes[p.String()] = ModeStructured
	}

	for _, p := range recursive {
		modes[p.String()] = ModeRecursive
	}

	for _, p := range flat {
		modes[p.String()] = ModeFlat
	}

	return PolicyFunc(func(path claimpath.Path, _ claims.Value) Mode {
		p, err := claimpath.PointerFromClaimPath(path)
		if err != nil {
			return ModePlain
		}

		return modes[p.String()]
	})
}

// TreeFromObject builds claim tree from plain JSON claim set.
func TreeFromObject(obj *claims.Object, policy Policy) (*claims.Tree, error) {
	if obj == nil {
		return nil, common.NewError(common.ErrNonObjectFormat, nil)
	}

	return treeFromObject(claimpath.New(), obj, policy)
}

func treeFromObject(path claimpath.Path, obj *claims.Object, policy Policy) (*claims.Tree, error) {
	tree := claims.NewTree()

	var err error

	obj.Range(func(name string, v claims.Value) bool {
		memberPath := path.AppendName(name)

		if common.IsReservedClaimName(name) {
			err = common.NewError(common.ErrReservedClaimName, fmt.Errorf("claim name '%s'", name)).WithPath(memberPath)

			return false
		}

		var n claims.Node

		n, err = nodeOf(memberPath, v, policy)
		if err != nil {
			return false
		}

		tree.Add(name, n)

		return true
	})

	if err != nil {
		return nil, err
	}

	return tree, nil
}

func nodeOf(path claimpath.Path, v claims.Value, policy Policy) (claims.Node, error) {
	mode := policy.Mode(path, v)

	switch mode {
	case ModePlain:
		return claims.Plain{Value: v}, nil
	case ModeFlat:
		return claims.Flat{Value: v}, nil
	case ModeStructured, ModeRecursive:
	default:
		return nil, fmt.Errorf("claim %s: unsupported mode %d", path, mode)
	}

	recursive := mode == ModeRecursive

	switch t := v.(type) {
	case *claims.Object:
		members, err := treeFromObject(path, t, policy)
		if err != nil {
			return nil, err
		}

		if recursive {
			return claims.RecursiveObject{Members: members}, nil
		}

		return claims.ObjectNode{Members: members}, nil
	case claims.Sequence:
		elements := make([]claims.Node, len(t))

		for i, e := range t {
			n, err := nodeOf(path.AppendIndex(i), e, policy)
			if err != nil {
				return nil, err
			}

			elements[i] = n
		}

		if recursive {
			return claims.RecursiveArray{Elements: elements}, nil
		}

		return claims.ArrayNode{Elements: elements}, nil
	default:
		return nil, fmt.Errorf("claim %s: only objects and arrays can be structured", path)
	}
}
