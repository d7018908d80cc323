/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuer enables the Issuer: an entity that creates SD-JWTs.
//
// An SD-JWT is a digitally signed document containing digests over the claim values, along with the
// Disclosures that reveal them. The Issuer builds a claim tree (or derives one from plain JSON with a
// Policy), encodes it and signs the payload:
//
//	tree := claims.NewTree().
//		Flat("given_name", "John").
//		Object("address", claims.NewTree().Flat("street_address", "123 Main St"))
//
//	token, err := issuer.New("https://example.com/issuer", tree, signer)
//
//	combinedFormatForIssuance := token.Serialize()
package issuer

import (
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

// defaultDecoysLimit is the decoy budget used by WithDecoyDigests.
const defaultDecoysLimit = 4

var logger = log.New("sdjwt/issuer")

// Claims defines JSON Web Token Claims (https://tools.ietf.org/html/rfc7519#section-4)
type Claims jwt.Claims

// newOpts holds options for creating new SD-JWT.
type newOpts struct {
	Subject  string
	Audience []string
	JTI      string

	Expiry    *jwt.NumericDate
	NotBefore *jwt.NumericDate
	IssuedAt  *jwt.NumericDate

	HolderPublicKey *jose.JSONWebKey

	HashAlg common.HashAlgorithm

	saltProvider common.SaltProvider
	decoysLimit  int
}

// NewOpt is the SD-JWT New option.
type NewOpt func(opts *newOpts)

// WithSaltProvider is an option for generating disclosure salts.
func WithSaltProvider(provider common.SaltProvider) NewOpt {
	return func(opts *newOpts) {
		opts.saltProvider = provider
	}
}

// WithSaltFnc is an option for generating disclosure salts.
func WithSaltFnc(fnc func() (string, error)) NewOpt {
	return WithSaltProvider(common.SaltFunc(fnc))
}

// WithIssuedAt is an option for SD-JWT payload.
func WithIssuedAt(issuedAt *jwt.NumericDate) NewOpt {
	return func(opts *newOpts) {
		opts.IssuedAt = issuedAt
	}
}

// WithExpiry is an option for SD-JWT payload.
func WithExpiry(expiry *jwt.NumericDate) NewOpt {
	return func(opts *newOpts) {
		opts.Expiry = expiry
	}
}

// WithNotBefore is an option for SD-JWT payload.
func WithNotBefore(notBefore *jwt.NumericDate) NewOpt {
	return func(opts *newOpts) {
		opts.NotBefore = notBefore
	}
}

// WithSubject is an option for SD-JWT payload.
func WithSubject(subject string) NewOpt {
	return func(opts *newOpts) {
		opts.Subject = subject
	}
}

// WithAudience is an option for SD-JWT payload.
func WithAudience(audience ...string) NewOpt {
	return func(opts *newOpts) {
		opts.Audience = audience
	}
}

// WithJTI is an option for SD-JWT payload.
func WithJTI(jti string) NewOpt {
	return func(opts *newOpts) {
		opts.JTI = jti
	}
}

// WithHolderPublicKey is an option for SD-JWT payload. The key is written as cnf.jwk.
func WithHolderPublicKey(jwk *jose.JSONWebKey) NewOpt {
	return func(opts *newOpts) {
		opts.HolderPublicKey = jwk
	}
}

// WithHashAlgorithm is an option for hashing disclosures.
func WithHashAlgorithm(alg common.HashAlgorithm) NewOpt {
	return func(opts *newOpts) {
		opts.HashAlg = alg
	}
}

// WithDecoyDigests is an option for adding decoy digests(default is false).
func WithDecoyDigests(flag bool) NewOpt {
	return func(opts *newOpts) {
		if flag {
			opts.decoysLimit = defaultDecoysLimit
		} else {
			opts.decoysLimit = 0
		}
	}
}

// WithDecoyDigestsLimit is an option for adding up to limit decoy digests.
func WithDecoyDigestsLimit(limit int) NewOpt {
	return func(opts *newOpts) {
		opts.decoysLimit = limit
	}
}

// New creates new signed Selective Disclosure JWT based on the claim tree.
// Registered claims given by options are added as plain claims ahead of the tree claims.
func New(issuer string, tree *claims.Tree, signer afgjwt.Signer, opts ...NewOpt) (*SelectiveDisclosureJWT, error) {
	nOpts := &newOpts{
		saltProvider: common.NewRandomSaltProvider(),
		HashAlg:      common.DefaultHashAlgorithm,
	}

	for _, opt := range opts {
		opt(nOpts)
	}

	if tree == nil {
		return nil, common.NewError(common.ErrNonObjectFormat, nil)
	}

	engine, err := common.NewDigestEngine(
		common.WithHashAlgorithm(nOpts.HashAlg),
		common.WithSaltProvider(nOpts.saltProvider))
	if err != nil {
		return nil, err
	}

	encoder := NewEncoder(engine, WithDecoysLimit(nOpts.decoysLimit))

	encoded, err := encoder.Encode(withRegisteredClaims(issuer, tree, nOpts))
	if err != nil {
		return nil, err
	}

	signedJWT, err := afgjwt.NewSigned(encoded.Payload, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create SD-JWT from payload: %w", err)
	}

	return &SelectiveDisclosureJWT{Disclosures: encoded.Disclosures, SignedJWT: signedJWT}, nil
}

func withRegisteredClaims(issuer string, tree *claims.Tree, nOpts *newOpts) *claims.Tree {
	full := claims.NewTree()

	if issuer != "" {
		full.Plain("iss", issuer)
	}

	if nOpts.Subject != "" {
		full.Plain("sub", nOpts.Subject)
	}

	switch len(nOpts.Audience) {
	case 0:
	case 1:
		full.Plain("aud", nOpts.Audience[0])
	default:
		aud := make([]interface{}, len(nOpts.Audience))
		for i, a := range nOpts.Audience {
			aud[i] = a
		}

		full.Plain("aud", aud)
	}

	if nOpts.JTI != "" {
		full.Plain("jti", nOpts.JTI)
	}

	addNumericDate(full, "iat", nOpts.IssuedAt)
	addNumericDate(full, "nbf", nOpts.NotBefore)
	addNumericDate(full, "exp", nOpts.Expiry)

	if nOpts.HolderPublicKey != nil {
		full.Plain(common.CNFKey, map[string]interface{}{"jwk": nOpts.HolderPublicKey})
	}

	tree.Range(func(name string, n claims.Node) bool {
		full.Add(name, n)

		return true
	})

	return full
}

func addNumericDate(tree *claims.Tree, name string, date *jwt.NumericDate) {
	if date != nil {
		tree.Add(name, claims.Plain{Value: claims.Int(int64(*date))})
	}
}

// SelectiveDisclosureJWT defines Selective Disclosure JSON Web Token (https://tools.ietf.org/html/rfc7519)
type SelectiveDisclosureJWT struct {
	SignedJWT   *afgjwt.JSONWebToken
	Disclosures []common.Disclosure
}

// DecodeClaims fills input c with claims of a token.
func (j *SelectiveDisclosureJWT) DecodeClaims(c interface{}) error {
	return j.SignedJWT.DecodeClaims(c)
}

// LookupStringHeader makes look up of particular header with string value.
func (j *SelectiveDisclosureJWT) LookupStringHeader(name string) string {
	return j.SignedJWT.LookupStringHeader(name)
}

// Serialize assembles combined format for issuance.
func (j *SelectiveDisclosureJWT) Serialize() string {
	cf := common.CombinedFormat{
		SDJWT:       j.SignedJWT.Serialize(),
		Disclosures: j.Disclosures,
	}

	return cf.Serialize()
}
