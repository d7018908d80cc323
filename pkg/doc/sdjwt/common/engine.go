/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"fmt"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
)

var logger = log.New("sdjwt/common")

// engineOpts holds options for the digest engine.
type engineOpts struct {
	alg           HashAlgorithm
	saltProvider  SaltProvider
	hasherFactory HasherFactory
}

// EngineOpt is the DigestEngine option.
type EngineOpt func(opts *engineOpts)

// WithHashAlgorithm sets digest algorithm (default sha-256).
func WithHashAlgorithm(alg HashAlgorithm) EngineOpt {
	return func(opts *engineOpts) {
		opts.alg = alg
	}
}

// WithSaltProvider sets salt source (default is random 16 bytes).
func WithSaltProvider(provider SaltProvider) EngineOpt {
	return func(opts *engineOpts) {
		opts.saltProvider = provider
	}
}

// WithHasherFactory sets hasher factory.
func WithHasherFactory(factory HasherFactory) EngineOpt {
	return func(opts *engineOpts) {
		opts.hasherFactory = factory
	}
}

// DigestEngine generates salts and calculates disclosure digests for one algorithm.
type DigestEngine struct {
	hasher Hasher
	salts  SaltProvider
}

// NewDigestEngine creates digest engine.
func NewDigestEngine(opts ...EngineOpt) (*DigestEngine, error) {
	eOpts := &engineOpts{
		alg:           DefaultHashAlgorithm,
		saltProvider:  NewRandomSaltProvider(),
		hasherFactory: DefaultHasherFactory(),
	}

	for _, opt := range opts {
		opt(eOpts)
	}

	h, err := eOpts.hasherFactory.Create(eOpts.alg)
	if err != nil {
		return nil, err
	}

	return &DigestEngine{hasher: h, salts: eOpts.saltProvider}, nil
}

// Algorithm returns the value written into _sd_alg.
func (e *DigestEngine) Algorithm() HashAlgorithm {
	return e.hasher.Algorithm()
}

// Salt returns a new salt.
func (e *DigestEngine) Salt() (string, error) {
	salt, err := e.salts.Salt()
	if err != nil {
		return "", NewError(ErrDisclose, fmt.Errorf("generate salt: %w", err))
	}

	return salt, nil
}

// Digest calculates digest of disclosure.
func (e *DigestEngine) Digest(disclosure Disclosure) (string, error) {
	return e.hasher.Digest(disclosure)
}

// Decoy returns digest over a random salt. It has no matching disclosure.
func (e *DigestEngine) Decoy() (string, error) {
	salt, err := e.Salt()
	if err != nil {
		return "", err
	}

	return e.hasher.Digest(Disclosure(salt))
}
