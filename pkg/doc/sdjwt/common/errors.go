/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is to classify failures returned by encoding and verification.
var (
	// ErrEncoding is returned when a claim value or disclosure cannot be serialized.
	ErrEncoding = errors.New("encoding error")
	// ErrDisclose is returned when a disclosure cannot be created.
	ErrDisclose = errors.New("disclose error")
	// ErrNonObjectFormat is returned when the claim set root is missing or is not an object.
	ErrNonObjectFormat = errors.New("claim set must be an object")
	// ErrReservedClaimName is returned for claims named _sd, _sd_alg or "...".
	ErrReservedClaimName = errors.New("reserved claim name")
	// ErrNonUniqueDisclosures is returned when a disclosure is repeated or reveals an existing claim name.
	ErrNonUniqueDisclosures = errors.New("non unique disclosures")
	// ErrNonUniqueDisclosureDigests is returned when the payload lists a digest more than once.
	ErrNonUniqueDisclosureDigests = errors.New("non unique disclosure digests")
	// ErrMissingDigests is returned when a disclosure digest is not found in the payload.
	ErrMissingDigests = errors.New("missing digests")
	// ErrInvalidDisclosure is returned when a disclosure is malformed or used in the wrong position.
	ErrInvalidDisclosure = errors.New("invalid disclosure")
	// ErrMissingOrUnknownHashingAlgorithm is returned when _sd_alg is absent or not supported.
	ErrMissingOrUnknownHashingAlgorithm = errors.New("missing or unknown hashing algorithm")
	// ErrFailedToCreateVerifier is returned when disclosures cannot be hashed for verification.
	ErrFailedToCreateVerifier = errors.New("failed to create verifier")
)

// Error is a classified SD-JWT failure with the context that caused it.
type Error struct {
	Kind        error
	Path        string
	Digest      string
	Disclosures []Disclosure
	Err         error
}

// NewError creates error of kind caused by err (optional).
func NewError(kind error, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithPath sets claim path context.
func (e *Error) WithPath(path fmt.Stringer) *Error {
	e.Path = path.String()

	return e
}

// WithDigest sets digest context.
func (e *Error) WithDigest(digest string) *Error {
	e.Digest = digest

	return e
}

// WithDisclosures sets disclosures context.
func (e *Error) WithDisclosures(disclosures ...Disclosure) *Error {
	e.Disclosures = append(e.Disclosures, disclosures...)

	return e
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Kind.Error())

	if e.Path != "" {
		sb.WriteString(" at path " + e.Path)
	}

	if e.Digest != "" {
		sb.WriteString(" digest[" + e.Digest + "]")
	}

	if len(e.Disclosures) > 0 {
		ds := make([]string, len(e.Disclosures))
		for i, d := range e.Disclosures {
			ds[i] = string(d)
		}

		sb.WriteString(" disclosures[" + strings.Join(ds, ", ") + "]")
	}

	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}

	return sb.String()
}

// Is reports whether target is the error kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}
