/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package holder

import (
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/verifier"
)

// Query selects claim paths to be presented.
type Query func(path claimpath.Path) bool

// PathsQuery selects claims at exactly the given paths. AllElements matches every array element.
func PathsQuery(paths ...claimpath.Path) Query {
	return func(path claimpath.Path) bool {
		for _, p := range paths {
			if p.Matches(path) {
				return true
			}
		}

		return false
	}
}

// SubtreeQuery selects claims at the given paths and everything below them.
func SubtreeQuery(paths ...claimpath.Path) Query {
	return func(path claimpath.Path) bool {
		for _, p := range paths {
			if p.Contains(path) {
				return true
			}
		}

		return false
	}
}

// PointersQuery selects claims addressed by JSON pointers.
func PointersQuery(pointers ...claimpath.Pointer) Query {
	paths := make([]claimpath.Path, len(pointers))
	for i, p := range pointers {
		paths[i] = p.ToClaimPath()
	}

	return PathsQuery(paths...)
}

// Select returns disclosures required to reveal every claim path matched by query.
// Disclosures keep the order of the disclosures argument. False is returned when no disclosure is required.
func Select(payload *claims.Object, disclosures []common.Disclosure, query Query,
	opts ...Option) ([]common.Disclosure, bool, error) {
	hOpts := newOptions(opts)

	if query == nil {
		query = func(claimpath.Path) bool { return false }
	}

	recreated, err := verifier.VerifyDisclosures(payload, disclosures,
		verifier.WithHasherFactory(hOpts.hasherFactory))
	if err != nil {
		return nil, false, err
	}

	required := make(map[common.Disclosure]bool)

	recreated.Disclosures.Range(func(path claimpath.Path, pathDisclosures []common.Disclosure) bool {
		if query(path) {
			for _, d := range pathDisclosures {
				required[d] = true
			}
		}

		return true
	})

	if len(required) == 0 {
		return nil, false, nil
	}

	selected := make([]common.Disclosure, 0, len(required))

	for _, d := range disclosures {
		if required[d] {
			selected = append(selected, d)
		}
	}

	logger.Debugf("selected %d of %d disclosures", len(selected), len(disclosures))

	return selected, true, nil
}
