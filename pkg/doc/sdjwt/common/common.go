/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination ../../../mock/sdjwt/mocks.go -package sdjwt . SaltProvider,Hasher

// Package common holds the SD-JWT building blocks shared by issuer, holder and verifier:
// hash algorithms and digests, salts, disclosures and the combined serialization format.
package common

import (
	"crypto"
	"encoding/base64"
	"fmt"
	"strings"
)

// CombinedFormatSeparator is disclosure separator.
const (
	CombinedFormatSeparator = "~"

	SDAlgorithmKey        = "_sd_alg"
	SDKey                 = "_sd"
	ArrayElementDigestKey = "..."
	CNFKey                = "cnf"

	// KeyBindingJWTType is "typ" header of key binding JWT.
	KeyBindingJWTType = "kb+jwt"
	// SDHashKey is key binding JWT claim holding digest of the presentation.
	SDHashKey = "sd_hash"
)

// IsReservedClaimName checks whether name is used by SD-JWT itself and cannot be a claim name.
func IsReservedClaimName(name string) bool {
	return name == SDKey || name == SDAlgorithmKey || name == ArrayElementDigestKey
}

// CombinedFormat holds SD-JWT, disclosures and optional key binding JWT.
// It covers both the issuance form (no key binding) and the presentation form.
type CombinedFormat struct {
	SDJWT       string
	Disclosures []Disclosure
	KeyBinding  string
}

// Serialize assembles combined format: <SD-JWT>~<Disclosure 1>~...~<Disclosure N>~<optional KB-JWT>.
func (cf *CombinedFormat) Serialize() string {
	var sb strings.Builder

	sb.WriteString(cf.SDJWT)

	for _, disclosure := range cf.Disclosures {
		sb.WriteString(CombinedFormatSeparator)
		sb.WriteString(string(disclosure))
	}

	if len(cf.Disclosures) > 0 || cf.KeyBinding != "" {
		sb.WriteString(CombinedFormatSeparator)
	}

	sb.WriteString(cf.KeyBinding)

	return sb.String()
}

// KeyBindingInput returns presentation without key binding JWT: <SD-JWT>~<Disclosure 1>~...~<Disclosure N>~.
// Key binding JWT signs over digest of this string (sd_hash).
func (cf *CombinedFormat) KeyBindingInput() string {
	var sb strings.Builder

	sb.WriteString(cf.SDJWT)
	sb.WriteString(CombinedFormatSeparator)

	for _, disclosure := range cf.Disclosures {
		sb.WriteString(string(disclosure))
		sb.WriteString(CombinedFormatSeparator)
	}

	return sb.String()
}

// ParseCombinedFormat splits combined format into its parts.
// The last part is treated as key binding JWT when it is a JWS (contains '.').
func ParseCombinedFormat(combinedFormat string) *CombinedFormat {
	parts := strings.Split(combinedFormat, CombinedFormatSeparator)

	cf := &CombinedFormat{SDJWT: parts[0]}

	rest := parts[1:]
	if len(rest) == 0 {
		return cf
	}

	last := rest[len(rest)-1]
	rest = rest[:len(rest)-1]

	for _, d := range rest {
		cf.Disclosures = append(cf.Disclosures, Disclosure(d))
	}

	switch {
	case strings.Contains(last, "."):
		cf.KeyBinding = last
	case last != "":
		cf.Disclosures = append(cf.Disclosures, Disclosure(last))
	}

	return cf
}

// GetHash calculates hash of data using hash function identified by hash.
func GetHash(hash crypto.Hash, value string) (string, error) {
	if !hash.Available() {
		return "", fmt.Errorf("hash function not available for: %d", hash)
	}

	h := hash.New()

	if _, hashErr := h.Write([]byte(value)); hashErr != nil {
		return "", hashErr
	}

	result := h.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(result), nil
}
