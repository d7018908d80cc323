/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultSaltSize is the number of random bytes in a salt.
const DefaultSaltSize = 128 / 8

// SaltProvider generates disclosure salts.
type SaltProvider interface {
	Salt() (string, error)
}

// SaltFunc adapts function to SaltProvider.
type SaltFunc func() (string, error)

// Salt calls f().
func (f SaltFunc) Salt() (string, error) {
	return f()
}

// RandomSaltProvider generates cryptographically random salts.
type RandomSaltProvider struct {
	Size int
}

// NewRandomSaltProvider creates salt provider with DefaultSaltSize.
func NewRandomSaltProvider() *RandomSaltProvider {
	return &RandomSaltProvider{Size: DefaultSaltSize}
}

// Salt returns base64url encoded random bytes.
func (p *RandomSaltProvider) Salt() (string, error) {
	size := p.Size
	if size <= 0 {
		size = DefaultSaltSize
	}

	salt := make([]byte, size)

	_, err := rand.Read(salt)
	if err != nil {
		return "", err
	}

	// it is RECOMMENDED to base64url-encode the salt value, producing a string.
	return base64.RawURLEncoding.EncodeToString(salt), nil
}
