/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"fmt"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

// PathDisclosures are the disclosures required to reveal the claim at Path, ancestors included.
type PathDisclosures struct {
	Path        claimpath.Path
	Disclosures []common.Disclosure
}

// DisclosuresPerClaimPath maps every claim path of the recreated claims to its required disclosures.
// Paths without own disclosure (plain claims) are recorded with their ancestors' disclosures only.
type DisclosuresPerClaimPath struct {
	keys    []string
	entries map[string]*PathDisclosures
}

func newDisclosuresPerClaimPath() *DisclosuresPerClaimPath {
	return &DisclosuresPerClaimPath{entries: make(map[string]*PathDisclosures)}
}

// set records disclosures for path. Every JSON position is visited once, so a second set is a bug.
func (d *DisclosuresPerClaimPath) set(path claimpath.Path, disclosures []common.Disclosure) {
	key := path.Key()

	if _, ok := d.entries[key]; ok {
		panic(fmt.Sprintf("disclosures for path %s already computed", key))
	}

	d.keys = append(d.keys, key)
	d.entries[key] = &PathDisclosures{Path: path, Disclosures: disclosures}
}

// Get returns disclosures required for path.
func (d *DisclosuresPerClaimPath) Get(path claimpath.Path) ([]common.Disclosure, bool) {
	e, ok := d.entries[path.Key()]
	if !ok {
		return nil, false
	}

	return append([]common.Disclosure(nil), e.Disclosures...), true
}

// Paths returns recorded paths in visit order (depth first).
func (d *DisclosuresPerClaimPath) Paths() []claimpath.Path {
	paths := make([]claimpath.Path, len(d.keys))
	for i, k := range d.keys {
		paths[i] = d.entries[k].Path
	}

	return paths
}

// Len returns number of recorded paths.
func (d *DisclosuresPerClaimPath) Len() int {
	return len(d.keys)
}

// Range calls fn for every path in visit order until fn returns false.
func (d *DisclosuresPerClaimPath) Range(fn func(path claimpath.Path, disclosures []common.Disclosure) bool) {
	for _, k := range d.keys {
		e := d.entries[k]

		if !fn(e.Path, e.Disclosures) {
			return
		}
	}
}

// Recreated is the result of processing SD-JWT payload with disclosures.
type Recreated struct {
	// DigestsFound lists digests of the payload that matched a disclosure, in visit order.
	DigestsFound []common.DigestType
	// Claims are the recreated plaintext claims without _sd, _sd_alg and unmatched digests.
	Claims      *claims.Object
	Disclosures *DisclosuresPerClaimPath
}

// Recreate replaces digests in payload with the values of the matching disclosures.
// Digests without disclosure are decoys or withheld claims and are dropped. The payload is not modified.
func Recreate(payload *claims.Object, disclosures []common.Disclosure, hasher common.Hasher) (*Recreated, error) {
	table, err := digestTable(disclosures, hasher)
	if err != nil {
		return nil, err
	}

	return recreate(payload, table)
}

type tableEntry struct {
	digest string
	claim  *common.DisclosureClaim
}

func digestTable(disclosures []common.Disclosure, hasher common.Hasher) (map[string]*tableEntry, error) {
	table := make(map[string]*tableEntry, len(disclosures))

	for _, d := range disclosures {
		digest, err := hasher.Digest(d)
		if err != nil {
			return nil, common.NewError(common.ErrFailedToCreateVerifier, err).WithDisclosures(d)
		}

		claim, err := d.Decode()
		if err != nil {
			return nil, err
		}

		table[digest] = &tableEntry{digest: digest, claim: claim}
	}

	return table, nil
}

func recreate(payload *claims.Object, table map[string]*tableEntry) (*Recreated, error) {
	if payload == nil {
		return nil, common.NewError(common.ErrNonObjectFormat, nil)
	}

	x := &extractor{
		table:    table,
		consumed: make(map[string]bool),
		paths:    newDisclosuresPerClaimPath(),
	}

	root := payload.Copy()
	root.Delete(common.SDAlgorithmKey)

	obj, err := x.object(claimpath.New(), root, nil)
	if err != nil {
		return nil, err
	}

	return &Recreated{DigestsFound: x.found, Claims: obj, Disclosures: x.paths}, nil
}

type extractor struct {
	table    map[string]*tableEntry
	consumed map[string]bool
	found    []common.DigestType
	paths    *DisclosuresPerClaimPath
}

// lookup records digest as found with the kind given by its position.
// A digest listed twice is recorded again but its disclosure is used once.
func (x *extractor) lookup(digest string, kind common.DigestKind) (*common.DisclosureClaim, bool) {
	entry, ok := x.table[digest]
	if !ok {
		return nil, false
	}

	x.found = append(x.found, common.DigestType{Kind: kind, Value: digest})

	if x.consumed[digest] {
		return nil, false
	}

	x.consumed[digest] = true

	return entry.claim, true
}

func (x *extractor) object(path claimpath.Path, obj *claims.Object,
	inherited []common.Disclosure) (*claims.Object, error) {
	result := claims.NewObject()

	for _, name := range obj.Names() {
		v, _ := obj.Get(name)

		if name == common.SDKey {
			if err := x.expand(path, obj, v, result, inherited); err != nil {
				return nil, err
			}

			continue
		}

		if result.Has(name) {
			return nil, common.NewError(common.ErrNonUniqueDisclosures,
				fmt.Errorf("claim '%s' is disclosed and also present in plain text", name)).WithPath(path.AppendName(name))
		}

		memberPath := path.AppendName(name)
		x.paths.set(memberPath, inherited)

		value, err := x.value(memberPath, v, inherited)
		if err != nil {
			return nil, err
		}

		result.Set(name, value)
	}

	return result, nil
}

// expand inserts the members disclosed by the _sd digests of obj into result.
func (x *extractor) expand(path claimpath.Path, obj *claims.Object, sd claims.Value,
	result *claims.Object, inherited []common.Disclosure) error {
	digests, ok := claims.AsSequence(sd)
	if !ok {
		return common.NewError(common.ErrInvalidDisclosure,
			fmt.Errorf("%s must be an array of digests", common.SDKey)).WithPath(path)
	}

	for _, d := range digests {
		digest, ok := claims.AsString(d)
		if !ok {
			return common.NewError(common.ErrInvalidDisclosure,
				fmt.Errorf("%s entry type[%T] is not a string", common.SDKey, d)).WithPath(path)
		}

		claim, ok := x.lookup(digest, common.ObjectDigest)
		if !ok || claim.IsArrayElement() {
			continue
		}

		memberPath := path.AppendName(claim.Name)

		if common.IsReservedClaimName(claim.Name) {
			return common.NewError(common.ErrInvalidDisclosure,
				fmt.Errorf("disclosed claim name '%s' is reserved", claim.Name)).
				WithPath(memberPath).WithDisclosures(claim.Disclosure)
		}

		if result.Has(claim.Name) || obj.Has(claim.Name) {
			return common.NewError(common.ErrNonUniqueDisclosures,
				fmt.Errorf("claim '%s' is already present", claim.Name)).
				WithPath(memberPath).WithDigest(digest).WithDisclosures(claim.Disclosure)
		}

		required := appendDisclosure(inherited, claim.Disclosure)
		x.paths.set(memberPath, required)

		value, err := x.value(memberPath, claim.Value, required)
		if err != nil {
			return err
		}

		result.Set(claim.Name, value)
	}

	return nil
}

func (x *extractor) array(path claimpath.Path, seq claims.Sequence,
	inherited []common.Disclosure) (claims.Sequence, error) {
	result := claims.Sequence{}

	for _, e := range seq {
		if digest, ok, err := elementDigest(path, e); err != nil {
			return nil, err
		} else if ok {
			claim, found := x.lookup(digest, common.ArrayDigest)
			if !found || !claim.IsArrayElement() {
				continue
			}

			elementPath := path.AppendIndex(len(result))
			required := appendDisclosure(inherited, claim.Disclosure)
			x.paths.set(elementPath, required)

			value, err := x.value(elementPath, claim.Value, required)
			if err != nil {
				return nil, err
			}

			result = append(result, value)

			continue
		}

		elementPath := path.AppendIndex(len(result))
		x.paths.set(elementPath, inherited)

		value, err := x.value(elementPath, e, inherited)
		if err != nil {
			return nil, err
		}

		result = append(result, value)
	}

	return result, nil
}

func (x *extractor) value(path claimpath.Path, v claims.Value,
	inherited []common.Disclosure) (claims.Value, error) {
	switch t := v.(type) {
	case *claims.Object:
		if t == nil {
			return claims.Null(), nil
		}

		return x.object(path, t, inherited)
	case claims.Sequence:
		return x.array(path, t, inherited)
	default:
		return v, nil
	}
}

// elementDigest returns digest of {"...": digest} array element.
func elementDigest(path claimpath.Path, e claims.Value) (string, bool, error) {
	obj, ok := claims.AsObject(e)
	if !ok || obj.Len() != 1 {
		return "", false, nil
	}

	v, ok := obj.Get(common.ArrayElementDigestKey)
	if !ok {
		return "", false, nil
	}

	digest, ok := claims.AsString(v)
	if !ok {
		return "", false, common.NewError(common.ErrInvalidDisclosure,
			fmt.Errorf("array element digest type[%T] is not a string", v)).WithPath(path)
	}

	return digest, true, nil
}

func appendDisclosure(inherited []common.Disclosure, d common.Disclosure) []common.Disclosure {
	required := make([]common.Disclosure, 0, len(inherited)+1)
	required = append(required, inherited...)

	return append(required, d)
}
