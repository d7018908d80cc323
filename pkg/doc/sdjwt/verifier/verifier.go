/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

/*
Package verifier enables the Verifier: An entity that requests, checks and
extracts the claims from an SD-JWT and respective Disclosures.
*/
package verifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

var logger = log.New("sdjwt/verifier")

// parseOpts holds options for the SD-JWT parsing.
type parseOpts struct {
	verificationKey  interface{}
	skipVerification bool

	issuerSigningAlgorithms []string
	holderSigningAlgorithms []string

	expectedTyp string
	leeway      time.Duration

	keyBindingRequired bool
	expectedNonce      string
	expectedAudience   string

	hasherFactory common.HasherFactory
}

// ParseOpt is the SD-JWT Parser option.
type ParseOpt func(opts *parseOpts)

func newParseOpts(opts []ParseOpt) *parseOpts {
	pOpts := &parseOpts{
		issuerSigningAlgorithms: []string{"EdDSA", "ES256", "ES384", "RS256", "PS256"},
		holderSigningAlgorithms: []string{"EdDSA", "ES256", "ES384"},
		leeway:                  jwt.DefaultLeeway,
		hasherFactory:           common.DefaultHasherFactory(),
	}

	for _, opt := range opts {
		opt(pOpts)
	}

	return pOpts
}

// WithVerificationKey option is for definition of issuer public key (or *jose.JSONWebKey).
func WithVerificationKey(key interface{}) ParseOpt {
	return func(opts *parseOpts) {
		opts.verificationKey = key
	}
}

// WithoutSignatureVerification option skips issuer signature check.
func WithoutSignatureVerification() ParseOpt {
	return func(opts *parseOpts) {
		opts.skipVerification = true
	}
}

// WithSigningAlgorithms option is for defining secure signing algorithms (for issuer).
func WithSigningAlgorithms(algorithms ...string) ParseOpt {
	return func(opts *parseOpts) {
		opts.issuerSigningAlgorithms = algorithms
	}
}

// WithHolderSigningAlgorithms option is for defining secure signing algorithms (for holder).
func WithHolderSigningAlgorithms(algorithms ...string) ParseOpt {
	return func(opts *parseOpts) {
		opts.holderSigningAlgorithms = algorithms
	}
}

// WithExpectedTypHeader option is to require "typ" header of SD-JWT.
func WithExpectedTypHeader(typ string) ParseOpt {
	return func(opts *parseOpts) {
		opts.expectedTyp = typ
	}
}

// WithLeeway is an option for claims time(s) validation.
func WithLeeway(duration time.Duration) ParseOpt {
	return func(opts *parseOpts) {
		opts.leeway = duration
	}
}

// WithKeyBindingRequired option is for enforcing key binding.
func WithKeyBindingRequired(flag bool) ParseOpt {
	return func(opts *parseOpts) {
		opts.keyBindingRequired = flag
	}
}

// WithExpectedNonce option is to pass nonce value for key binding.
func WithExpectedNonce(nonce string) ParseOpt {
	return func(opts *parseOpts) {
		opts.expectedNonce = nonce
	}
}

// WithExpectedAudience option is to pass expected audience for key binding.
func WithExpectedAudience(audience string) ParseOpt {
	return func(opts *parseOpts) {
		opts.expectedAudience = audience
	}
}

// WithHasherFactory option is for providing hasher used to digest disclosures.
func WithHasherFactory(factory common.HasherFactory) ParseOpt {
	return func(opts *parseOpts) {
		opts.hasherFactory = factory
	}
}

// VerifiedSDJWT is SD-JWT that passed all verifier checks.
type VerifiedSDJWT struct {
	Token       *afgjwt.JSONWebToken
	Disclosures []common.Disclosure
	KeyBinding  *afgjwt.JSONWebToken
	Result      *Recreated
}

// Claims returns recreated claims.
func (v *VerifiedSDJWT) Claims() *claims.Object {
	return v.Result.Claims
}

// Parse parses combined format for presentation and returns verified claims.
//
// The Verifier has to verify that all disclosed claim values were part of the original, Issuer-signed SD-JWT:
//   - the SD-JWT signature is checked with the issuer key and the allowed algorithm list;
//   - the "typ" header is checked when WithExpectedTypHeader is used;
//   - every disclosure must be referenced by exactly one digest (see VerifyDisclosures);
//   - exp, nbf and iat of the recreated claims are validated with leeway;
//   - key binding JWT, when present or required, must be signed with cnf.jwk and carry the expected nonce,
//     audience and sd_hash.
func Parse(combinedFormatForPresentation string, opts ...ParseOpt) (*VerifiedSDJWT, error) {
	pOpts := newParseOpts(opts)

	cf := common.ParseCombinedFormat(combinedFormatForPresentation)

	jwtOpts := []afgjwt.ParseOpt{afgjwt.WithSigningAlgorithms(pOpts.issuerSigningAlgorithms...)}

	if pOpts.skipVerification {
		jwtOpts = append(jwtOpts, afgjwt.WithoutSignatureVerification())
	} else {
		jwtOpts = append(jwtOpts, afgjwt.WithVerificationKey(pOpts.verificationKey))
	}

	token, err := afgjwt.Parse(cf.SDJWT, jwtOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to verify issuer signed SD-JWT: %w", err)
	}

	if pOpts.expectedTyp != "" {
		if err = afgjwt.VerifyTyp(token.Headers, pOpts.expectedTyp); err != nil {
			return nil, fmt.Errorf("verify SD-JWT header: %w", err)
		}
	}

	recreated, err := VerifyDisclosures(token.Payload, cf.Disclosures, opts...)
	if err != nil {
		return nil, err
	}

	if err = afgjwt.VerifyTimeClaims(recreated.Claims, pOpts.leeway); err != nil {
		return nil, err
	}

	verified := &VerifiedSDJWT{
		Token:       token,
		Disclosures: cf.Disclosures,
		Result:      recreated,
	}

	switch {
	case cf.KeyBinding != "":
		verified.KeyBinding, err = verifyKeyBinding(cf, token.Payload, recreated.Claims, pOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to verify key binding: %w", err)
		}
	case pOpts.keyBindingRequired:
		return nil, errors.New("key binding is required")
	}

	logger.Debugf("verified SD-JWT with %d disclosures", len(cf.Disclosures))

	return verified, nil
}

func verifyKeyBinding(cf *common.CombinedFormat, payload, recreated *claims.Object,
	pOpts *parseOpts) (*afgjwt.JSONWebToken, error) {
	key, err := ConfirmationKey(recreated)
	if err != nil {
		return nil, err
	}

	kb, err := afgjwt.Parse(cf.KeyBinding,
		afgjwt.WithVerificationKey(key),
		afgjwt.WithSigningAlgorithms(pOpts.holderSigningAlgorithms...))
	if err != nil {
		return nil, err
	}

	if err = afgjwt.VerifyTyp(kb.Headers, common.KeyBindingJWTType); err != nil {
		return nil, err
	}

	if err = verifyKeyBindingClaims(kb.Payload, pOpts); err != nil {
		return nil, err
	}

	if err = verifySDHash(cf, payload, kb.Payload); err != nil {
		return nil, err
	}

	if err = afgjwt.VerifyTimeClaims(kb.Payload, pOpts.leeway); err != nil {
		return nil, err
	}

	return kb, nil
}

func verifyKeyBindingClaims(kb *claims.Object, pOpts *parseOpts) error {
	registered, err := afgjwt.RegisteredClaims(kb)
	if err != nil {
		return err
	}

	if registered.IssuedAt == nil {
		return errors.New("iat is required")
	}

	nonce, _ := lookupString(kb, "nonce")

	if pOpts.expectedNonce != "" && nonce != pOpts.expectedNonce {
		return fmt.Errorf("nonce value '%s' does not match expected nonce value '%s'", nonce, pOpts.expectedNonce)
	}

	if pOpts.expectedAudience != "" && !registered.Audience.Contains(pOpts.expectedAudience) {
		return fmt.Errorf("audience value '%v' does not match expected audience value '%s'",
			registered.Audience, pOpts.expectedAudience)
	}

	return nil
}

func verifySDHash(cf *common.CombinedFormat, payload, kb *claims.Object) error {
	sdHash, ok := lookupString(kb, common.SDHashKey)
	if !ok {
		return fmt.Errorf("%s is required", common.SDHashKey)
	}

	algName, _ := lookupString(payload, common.SDAlgorithmKey)

	alg, err := common.ParseHashAlgorithm(algName)
	if err != nil {
		return err
	}

	h, err := alg.CryptoHash()
	if err != nil {
		return err
	}

	expected, err := common.GetHash(h, cf.KeyBindingInput())
	if err != nil {
		return err
	}

	if sdHash != expected {
		return fmt.Errorf("%s '%s' does not match presentation", common.SDHashKey, sdHash)
	}

	return nil
}

// ConfirmationKey returns holder public key from cnf.jwk claim.
func ConfirmationKey(c *claims.Object) (*jose.JSONWebKey, error) {
	cnf, ok := c.Get(common.CNFKey)
	if !ok {
		return nil, fmt.Errorf("%s claim is missing", common.CNFKey)
	}

	cnfObj, ok := claims.AsObject(cnf)
	if !ok {
		return nil, fmt.Errorf("%s claim must be an object", common.CNFKey)
	}

	jwkValue, ok := cnfObj.Get("jwk")
	if !ok {
		return nil, fmt.Errorf("%s.jwk is missing", common.CNFKey)
	}

	raw, err := claims.Marshal(jwkValue)
	if err != nil {
		return nil, err
	}

	key := &jose.JSONWebKey{}

	if err = json.Unmarshal(raw, key); err != nil {
		return nil, fmt.Errorf("unmarshal %s.jwk: %w", common.CNFKey, err)
	}

	return key, nil
}

func lookupString(obj *claims.Object, name string) (string, bool) {
	v, ok := obj.Get(name)
	if !ok {
		return "", false
	}

	return claims.AsString(v)
}
