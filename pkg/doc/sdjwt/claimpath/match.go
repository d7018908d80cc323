/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claimpath

import (
	"context"
	"fmt"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
)

// Match evaluates claim path against value.
//
// Name requires an object member, Index requires an array element at that offset.
// AllElements as the last element selects the whole array, which must not be empty; otherwise the
// rest of the path is applied to every element and the matches are returned as a sequence.
func Match(path Path, v claims.Value) (claims.Value, bool) {
	head, ok := path.Head()
	if !ok {
		return v, true
	}

	switch head.kind {
	case NameElement:
		obj, ok := claims.AsObject(v)
		if !ok {
			return nil, false
		}

		member, ok := obj.Get(head.name)
		if !ok {
			return nil, false
		}

		return Match(path.Tail(), member)
	case IndexElement:
		seq, ok := claims.AsSequence(v)
		if !ok || head.index < 0 || head.index >= len(seq) {
			return nil, false
		}

		return Match(path.Tail(), seq[head.index])
	default:
		seq, ok := claims.AsSequence(v)
		if !ok || len(seq) == 0 {
			return nil, false
		}

		rest := path.Tail()
		if rest.IsEmpty() {
			return seq, true
		}

		var matches claims.Sequence

		for _, e := range seq {
			if m, found := Match(rest, e); found {
				matches = append(matches, m)
			}
		}

		if len(matches) == 0 {
			return nil, false
		}

		return matches, true
	}
}

// EvaluateJSONPath runs JSONPath query (for example "$.address.country" or "$.nationalities[*]")
// against value.
func EvaluateJSONPath(expr string, v claims.Value) (claims.Value, error) {
	builder := gval.Full(jsonpath.PlaceholderExtension())

	path, err := builder.NewEvaluable(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to build new json path evaluator: %w", err)
	}

	result, err := path(context.TODO(), claims.ToInterface(v))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate json path [%s]: %w", expr, err)
	}

	return claims.FromInterface(result)
}
