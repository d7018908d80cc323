/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwt signs and parses the compact JWS that carries an SD-JWT payload.
package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
)

const (
	// TypeJWT defines JWT type.
	TypeJWT = "JWT"

	// AlgorithmNone used to indicate unsecured JWT.
	AlgorithmNone = "none"

	// HeaderAlgorithm identifies the signing algorithm.
	HeaderAlgorithm = "alg"
	// HeaderType is the media type of the token.
	HeaderType = "typ"
	// HeaderKeyID is the key identifier.
	HeaderKeyID = "kid"
	// HeaderContentType is the content type of the payload.
	HeaderContentType = "cty"
)

var logger = log.New("jwt")

// Headers are JOSE headers of the token.
type Headers map[string]interface{}

// Algorithm returns "alg" header.
func (h Headers) Algorithm() (string, bool) {
	return h.stringValue(HeaderAlgorithm)
}

// Type returns "typ" header.
func (h Headers) Type() (string, bool) {
	return h.stringValue(HeaderType)
}

// KeyID returns "kid" header.
func (h Headers) KeyID() (string, bool) {
	return h.stringValue(HeaderKeyID)
}

func (h Headers) stringValue(name string) (string, bool) {
	v, ok := h[name]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// parseOpts holds options for the JWT parsing.
type parseOpts struct {
	verificationKey   interface{}
	signingAlgorithms []string
	skipVerification  bool
	checkSigningAlgs  bool
}

// ParseOpt is the JWT Parser option.
type ParseOpt func(opts *parseOpts)

// WithVerificationKey sets public key (or *jose.JSONWebKey) the signature is verified with.
func WithVerificationKey(key interface{}) ParseOpt {
	return func(opts *parseOpts) {
		opts.verificationKey = key
	}
}

// WithSigningAlgorithms restricts accepted "alg" header values.
func WithSigningAlgorithms(algorithms ...string) ParseOpt {
	return func(opts *parseOpts) {
		opts.signingAlgorithms = algorithms
		opts.checkSigningAlgs = true
	}
}

// WithoutSignatureVerification skips signature check. The payload is still decoded.
func WithoutSignatureVerification() ParseOpt {
	return func(opts *parseOpts) {
		opts.skipVerification = true
	}
}

// JSONWebToken defines JSON Web Token (https://tools.ietf.org/html/rfc7519)
type JSONWebToken struct {
	Headers Headers

	Payload    *claims.Object
	RawPayload []byte

	serialized string
}

// Parse parses compact JWS into JSON Web Token.
// The signature is verified with the key given by WithVerificationKey unless WithoutSignatureVerification is used.
func Parse(jwtSerialized string, opts ...ParseOpt) (*JSONWebToken, error) {
	pOpts := &parseOpts{}

	for _, opt := range opts {
		opt(pOpts)
	}

	jws, err := jose.ParseSigned(jwtSerialized)
	if err != nil {
		return nil, fmt.Errorf("parse JWT from compact JWS: %w", err)
	}

	if len(jws.Signatures) != 1 {
		return nil, fmt.Errorf("JWS must have exactly one signature, got %d", len(jws.Signatures))
	}

	headers := headersOf(jws.Signatures[0].Header)

	if pOpts.checkSigningAlgs {
		if err = VerifySigningAlg(headers, pOpts.signingAlgorithms); err != nil {
			return nil, err
		}
	}

	var payload []byte

	switch {
	case pOpts.skipVerification:
		payload = jws.UnsafePayloadWithoutVerification()
	case pOpts.verificationKey == nil:
		return nil, errors.New("verification key is required to check JWT signature")
	default:
		if alg, _ := headers.Algorithm(); alg == AlgorithmNone { //nolint:errcheck
			return nil, errors.New("alg value cannot be 'none'")
		}

		payload, err = jws.Verify(pOpts.verificationKey)
		if err != nil {
			return nil, fmt.Errorf("verify JWT signature: %w", err)
		}
	}

	if cty, ok := headers[HeaderContentType]; ok && cty == TypeJWT { // https://tools.ietf.org/html/rfc7519#section-5.2
		return nil, errors.New("nested JWT is not supported")
	}

	obj, err := claims.ParseObject(payload)
	if err != nil {
		return nil, fmt.Errorf("read JWT claims from JWS payload: %w", err)
	}

	logger.Debugf("parsed JWT with headers %v", headers)

	return &JSONWebToken{
		Headers:    headers,
		Payload:    obj,
		RawPayload: payload,
		serialized: jwtSerialized,
	}, nil
}

func headersOf(h jose.Header) Headers {
	headers := Headers{}

	for k, v := range h.ExtraHeaders {
		headers[string(k)] = v
	}

	if h.Algorithm != "" {
		headers[HeaderAlgorithm] = h.Algorithm
	}

	if h.KeyID != "" {
		headers[HeaderKeyID] = h.KeyID
	}

	return headers
}

// DecodeClaims fills input c with claims of a token.
func (j *JSONWebToken) DecodeClaims(c interface{}) error {
	d := json.NewDecoder(bytes.NewReader(j.RawPayload))
	d.UseNumber()

	return d.Decode(c)
}

// LookupStringHeader makes look up of particular header with string value.
func (j *JSONWebToken) LookupStringHeader(name string) string {
	s, _ := j.Headers.stringValue(name) //nolint:errcheck

	return s
}

// Serialize returns compact serialization of token.
func (j *JSONWebToken) Serialize() string {
	return j.serialized
}
