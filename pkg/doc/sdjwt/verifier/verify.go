/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

// VerifyDisclosures checks that every disclosure is referenced by exactly one digest of payload
// and returns the recreated claims.
//
// The checks run in this order:
//   - _sd_alg must be present and supported;
//   - every disclosure must be hashable and well formed;
//   - no digest may be referenced twice and no disclosure may be supplied twice;
//   - every disclosure digest must be found in payload;
//   - object digests must reference name/value disclosures and array digests must reference element disclosures.
func VerifyDisclosures(payload *claims.Object, disclosures []common.Disclosure, opts ...ParseOpt) (*Recreated, error) {
	vOpts := newParseOpts(opts)

	if payload == nil {
		return nil, common.NewError(common.ErrNonObjectFormat, nil)
	}

	hasher, err := hasherForPayload(payload, vOpts.hasherFactory)
	if err != nil {
		return nil, err
	}

	table := make(map[string]*tableEntry, len(disclosures))

	// reported after the payload digests are checked for duplicates
	var duplicate error

	for _, d := range disclosures {
		digest, err := hasher.Digest(d)
		if err != nil {
			return nil, common.NewError(common.ErrFailedToCreateVerifier, err).WithDisclosures(d)
		}

		claim, err := d.Decode()
		if err != nil {
			return nil, err
		}

		if prev, ok := table[digest]; ok {
			if duplicate == nil {
				duplicate = common.NewError(common.ErrNonUniqueDisclosures, nil).
					WithDigest(digest).WithDisclosures(prev.claim.Disclosure, d)
			}

			continue
		}

		table[digest] = &tableEntry{digest: digest, claim: claim}
	}

	recreated, err := recreate(payload, table)
	if err != nil {
		return nil, err
	}

	if err := checkFoundDigests(recreated.DigestsFound, table, duplicate); err != nil {
		return nil, err
	}

	return recreated, nil
}

func hasherForPayload(payload *claims.Object, factory common.HasherFactory) (common.Hasher, error) {
	v, ok := payload.Get(common.SDAlgorithmKey)
	if !ok {
		return nil, common.NewError(common.ErrMissingOrUnknownHashingAlgorithm,
			fmt.Errorf("%s claim is missing", common.SDAlgorithmKey))
	}

	name, ok := claims.AsString(v)
	if !ok {
		return nil, common.NewError(common.ErrMissingOrUnknownHashingAlgorithm,
			fmt.Errorf("%s claim type[%T] is not a string", common.SDAlgorithmKey, v))
	}

	alg, err := common.ParseHashAlgorithm(name)
	if err != nil {
		return nil, err
	}

	hasher, err := factory.Create(alg)
	if err != nil {
		return nil, common.NewError(common.ErrFailedToCreateVerifier, err)
	}

	return hasher, nil
}

func checkFoundDigests(found []common.DigestType, table map[string]*tableEntry, duplicate error) error {
	seen := make(map[string]bool, len(found))

	for _, f := range found {
		if seen[f.Value] {
			return common.NewError(common.ErrNonUniqueDisclosureDigests, nil).WithDigest(f.Value)
		}

		seen[f.Value] = true
	}

	if duplicate != nil {
		return duplicate
	}

	var missing []common.Disclosure

	for digest, entry := range table {
		if !seen[digest] {
			missing = append(missing, entry.claim.Disclosure)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return common.NewError(common.ErrMissingDigests, nil).WithDisclosures(missing...)
	}

	for _, f := range found {
		entry := table[f.Value]

		if entry.claim.Elements != f.ExpectedElements() {
			return common.NewError(common.ErrInvalidDisclosure,
				fmt.Errorf("%s digest references disclosure of %d elements", f.Kind, entry.claim.Elements)).
				WithDigest(f.Value).WithDisclosures(entry.claim.Disclosure)
		}
	}

	return nil
}
