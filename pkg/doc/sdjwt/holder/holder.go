/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package holder enables the Holder: an entity that receives SD-JWTs from the Issuer and has control over them.
package holder

import (
	"errors"
	"time"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/verifier"
)

var logger = log.New("sdjwt/holder")

// Claim defines claim revealed by a disclosure.
type Claim struct {
	Disclosure common.Disclosure
	Path       claimpath.Path
	// Name is empty for array elements.
	Name  string
	Value claims.Value
}

// parseOpts holds options for the SD-JWT parsing.
type parseOpts struct {
	verificationKey interface{}
	algorithms      []string
	expectedTyp     string
	leeway          *time.Duration
	hasherFactory   common.HasherFactory
}

// ParseOpt is the SD-JWT Parser option.
type ParseOpt func(opts *parseOpts)

// WithVerificationKey option is for definition of issuer public key. Signature is not checked by default.
func WithVerificationKey(key interface{}) ParseOpt {
	return func(opts *parseOpts) {
		opts.verificationKey = key
	}
}

// WithIssuerSigningAlgorithms option is for defining secure signing algorithms (for issuer).
func WithIssuerSigningAlgorithms(algorithms ...string) ParseOpt {
	return func(opts *parseOpts) {
		opts.algorithms = algorithms
	}
}

// WithExpectedTypHeader is an option for JWT typ header validation.
func WithExpectedTypHeader(typ string) ParseOpt {
	return func(opts *parseOpts) {
		opts.expectedTyp = typ
	}
}

// WithLeewayForClaimsValidation is an option for claims time(s) validation.
func WithLeewayForClaimsValidation(duration time.Duration) ParseOpt {
	return func(opts *parseOpts) {
		opts.leeway = &duration
	}
}

// WithHasherFactory option is for providing hasher used to digest disclosures.
func WithHasherFactory(factory common.HasherFactory) ParseOpt {
	return func(opts *parseOpts) {
		opts.hasherFactory = factory
	}
}

func (o *parseOpts) verifierOpts() []verifier.ParseOpt {
	var vOpts []verifier.ParseOpt

	if o.verificationKey != nil {
		vOpts = append(vOpts, verifier.WithVerificationKey(o.verificationKey))
	} else {
		vOpts = append(vOpts, verifier.WithoutSignatureVerification())
	}

	if len(o.algorithms) > 0 {
		vOpts = append(vOpts, verifier.WithSigningAlgorithms(o.algorithms...))
	}

	if o.expectedTyp != "" {
		vOpts = append(vOpts, verifier.WithExpectedTypHeader(o.expectedTyp))
	}

	if o.leeway != nil {
		vOpts = append(vOpts, verifier.WithLeeway(*o.leeway))
	}

	if o.hasherFactory != nil {
		vOpts = append(vOpts, verifier.WithHasherFactory(o.hasherFactory))
	}

	return vOpts
}

// Parse parses issuer SD-JWT and returns claims that can be selected.
// The Holder MUST perform the following (or equivalent) steps when receiving a Combined Format for Issuance:
//
//   - Separate the SD-JWT and the Disclosures in the Combined Format for Issuance.
//
//   - Hash all the Disclosures separately.
//
//   - Find the places in the SD-JWT where the digests of the Disclosures are included.
//
//   - If any of the digests cannot be found in the SD-JWT, the Holder MUST reject the SD-JWT.
//
//   - Decode Disclosures and obtain plaintext of the claim values.
//
// Claims are returned in the order of disclosures.
func Parse(combinedFormatForIssuance string, opts ...ParseOpt) ([]*Claim, error) {
	pOpts := &parseOpts{}

	for _, opt := range opts {
		opt(pOpts)
	}

	cf := common.ParseCombinedFormat(combinedFormatForIssuance)
	if cf.KeyBinding != "" {
		return nil, errors.New("combined format for issuance must not contain key binding")
	}

	verified, err := verifier.Parse(combinedFormatForIssuance, pOpts.verifierOpts()...)
	if err != nil {
		return nil, err
	}

	paths := disclosurePaths(verified.Result.Disclosures)

	result := make([]*Claim, 0, len(cf.Disclosures))

	for _, d := range cf.Disclosures {
		decoded, err := d.Decode()
		if err != nil {
			return nil, err
		}

		result = append(result, &Claim{
			Disclosure: d,
			Path:       paths[d],
			Name:       decoded.Name,
			Value:      decoded.Value,
		})
	}

	logger.Debugf("parsed SD-JWT with %d disclosures", len(result))

	return result, nil
}

// disclosurePaths maps every disclosure to the path of the claim it reveals.
func disclosurePaths(perPath *verifier.DisclosuresPerClaimPath) map[common.Disclosure]claimpath.Path {
	paths := make(map[common.Disclosure]claimpath.Path)

	perPath.Range(func(path claimpath.Path, disclosures []common.Disclosure) bool {
		if len(disclosures) == 0 {
			return true
		}

		own := disclosures[len(disclosures)-1]
		if _, ok := paths[own]; !ok {
			paths[own] = path
		}

		return true
	})

	return paths
}
