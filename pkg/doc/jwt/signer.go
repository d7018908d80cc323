/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"fmt"

	"github.com/go-jose/go-jose/v3"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
)

// Signer produces compact JWS over payload.
type Signer interface {
	Sign(payload []byte) (string, error)
}

// JOSESigner signs with go-jose.
type JOSESigner struct {
	signer jose.Signer
	alg    jose.SignatureAlgorithm
}

// signerOpts holds options for the signer.
type signerOpts struct {
	keyID   string
	headers map[jose.HeaderKey]interface{}
}

// SignerOpt is the signer option.
type SignerOpt func(opts *signerOpts)

// WithKeyID sets "kid" header.
func WithKeyID(kid string) SignerOpt {
	return func(opts *signerOpts) {
		opts.keyID = kid
	}
}

// WithHeader sets additional protected header.
func WithHeader(name string, value interface{}) SignerOpt {
	return func(opts *signerOpts) {
		opts.headers[jose.HeaderKey(name)] = value
	}
}

// NewSigner creates signer for alg (for example EdDSA or ES256) and private key.
// typ is written into the "typ" header when not empty.
func NewSigner(alg jose.SignatureAlgorithm, key interface{}, typ string, opts ...SignerOpt) (*JOSESigner, error) {
	if alg == AlgorithmNone {
		return nil, fmt.Errorf("alg value cannot be 'none'")
	}

	sOpts := &signerOpts{headers: map[jose.HeaderKey]interface{}{}}

	for _, opt := range opts {
		opt(sOpts)
	}

	joseOpts := &jose.SignerOptions{}

	if typ != "" {
		joseOpts = joseOpts.WithType(jose.ContentType(typ))
	}

	if sOpts.keyID != "" {
		joseOpts = joseOpts.WithHeader(jose.HeaderKey(HeaderKeyID), sOpts.keyID)
	}

	for k, v := range sOpts.headers {
		joseOpts = joseOpts.WithHeader(k, v)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, joseOpts)
	if err != nil {
		return nil, fmt.Errorf("create JWS signer: %w", err)
	}

	return &JOSESigner{signer: signer, alg: alg}, nil
}

// Algorithm returns signing algorithm.
func (s *JOSESigner) Algorithm() string {
	return string(s.alg)
}

// Sign signs payload and returns compact JWS.
func (s *JOSESigner) Sign(payload []byte) (string, error) {
	jws, err := s.signer.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("sign JWT: %w", err)
	}

	return jws.CompactSerialize()
}

// NewSigned signs claims and returns parsed token.
func NewSigned(payload *claims.Object, signer Signer) (*JSONWebToken, error) {
	payloadBytes, err := claims.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal JWT claims: %w", err)
	}

	compact, err := signer.Sign(payloadBytes)
	if err != nil {
		return nil, err
	}

	return Parse(compact, WithoutSignatureVerification())
}
