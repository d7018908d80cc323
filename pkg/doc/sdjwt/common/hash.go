/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"crypto"
	"fmt"
	"strings"

	"github.com/bluele/gcache"
	// registers SHA-3 hash functions with crypto.
	_ "golang.org/x/crypto/sha3"
)

// HashAlgorithm is a hash algorithm name from the IANA "Named Information Hash Algorithm" registry.
type HashAlgorithm string

// Supported hash algorithms.
const (
	SHA256   HashAlgorithm = "sha-256"
	SHA384   HashAlgorithm = "sha-384"
	SHA512   HashAlgorithm = "sha-512"
	SHA3_256 HashAlgorithm = "sha3-256" //nolint:revive,stylecheck
	SHA3_384 HashAlgorithm = "sha3-384" //nolint:revive,stylecheck
	SHA3_512 HashAlgorithm = "sha3-512" //nolint:revive,stylecheck

	// DefaultHashAlgorithm is used when no algorithm is configured.
	DefaultHashAlgorithm = SHA256
)

//nolint:gochecknoglobals
var cryptoHashes = map[HashAlgorithm]crypto.Hash{
	SHA256:   crypto.SHA256,
	SHA384:   crypto.SHA384,
	SHA512:   crypto.SHA512,
	SHA3_256: crypto.SHA3_256,
	SHA3_384: crypto.SHA3_384,
	SHA3_512: crypto.SHA3_512,
}

// ParseHashAlgorithm resolves _sd_alg value.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	alg := HashAlgorithm(strings.ToLower(name))

	if _, ok := cryptoHashes[alg]; !ok {
		return "", NewError(ErrMissingOrUnknownHashingAlgorithm, fmt.Errorf("%s '%s' not supported", SDAlgorithmKey, name))
	}

	return alg, nil
}

// CryptoHash returns hash function for the algorithm.
func (a HashAlgorithm) CryptoHash() (crypto.Hash, error) {
	h, ok := cryptoHashes[a]
	if !ok {
		return 0, NewError(ErrMissingOrUnknownHashingAlgorithm, fmt.Errorf("%s '%s' not supported", SDAlgorithmKey, a))
	}

	return h, nil
}

func (a HashAlgorithm) String() string {
	return string(a)
}

// Hasher calculates disclosure digests.
type Hasher interface {
	Algorithm() HashAlgorithm
	Digest(disclosure Disclosure) (string, error)
}

// HasherFactory creates hasher for the algorithm named by _sd_alg.
type HasherFactory interface {
	Create(alg HashAlgorithm) (Hasher, error)
}

// HasherFactoryFunc adapts function to HasherFactory.
type HasherFactoryFunc func(alg HashAlgorithm) (Hasher, error)

// Create calls f(alg).
func (f HasherFactoryFunc) Create(alg HashAlgorithm) (Hasher, error) {
	return f(alg)
}

type hasher struct {
	alg  HashAlgorithm
	hash crypto.Hash
}

// NewHasher creates hasher for the algorithm.
func NewHasher(alg HashAlgorithm) (Hasher, error) {
	h, err := alg.CryptoHash()
	if err != nil {
		return nil, err
	}

	return &hasher{alg: alg, hash: h}, nil
}

func (h *hasher) Algorithm() HashAlgorithm {
	return h.alg
}

func (h *hasher) Digest(disclosure Disclosure) (string, error) {
	return GetHash(h.hash, string(disclosure))
}

// DefaultHasherFactory returns factory of plain hashers.
func DefaultHasherFactory() HasherFactory {
	return HasherFactoryFunc(NewHasher)
}

type cachingHasherFactory struct {
	cache gcache.Cache
}

// CachingHasherFactory returns factory whose hashers share an LRU cache of disclosure digests.
// The factory is safe to share between concurrent verifications.
func CachingHasherFactory(size int) HasherFactory {
	return &cachingHasherFactory{cache: gcache.New(size).LRU().Build()}
}

func (f *cachingHasherFactory) Create(alg HashAlgorithm) (Hasher, error) {
	h, err := NewHasher(alg)
	if err != nil {
		return nil, err
	}

	return &cachingHasher{Hasher: h, cache: f.cache}, nil
}

type cachingHasher struct {
	Hasher
	cache gcache.Cache
}

func (h *cachingHasher) Digest(disclosure Disclosure) (string, error) {
	key := h.Algorithm().String() + CombinedFormatSeparator + string(disclosure)

	if v, err := h.cache.Get(key); err == nil {
		if digest, ok := v.(string); ok {
			return digest, nil
		}
	}

	digest, err := h.Hasher.Digest(disclosure)
	if err != nil {
		return "", err
	}

	if err = h.cache.Set(key, digest); err != nil {
		logger.Warnf("failed to cache digest: %s", err)
	}

	return digest, nil
}
