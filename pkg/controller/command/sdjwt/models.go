/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"encoding/json"

	"github.com/go-jose/go-jose/v3"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
)

// IssueRequest model
//
// This is used for issuing SD-JWT from plain JSON claims.
type IssueRequest struct {
	// Plain JSON claim set.
	Claims json.RawMessage `json:"claims"`

	// JSON pointers of claims disclosed as a whole.
	Flat []string `json:"flat,omitempty"`

	// JSON pointers of objects and arrays whose members are disclosed individually.
	Structured []string `json:"structured,omitempty"`

	// JSON pointers of objects and arrays disclosed both individually and as a whole.
	Recursive []string `json:"recursive,omitempty"`

	// Digest algorithm, sha-256 by default.
	HashAlgorithm string `json:"hashAlgorithm,omitempty"`

	// Adds decoy digests.
	Decoys bool `json:"decoys,omitempty"`

	Subject  string   `json:"sub,omitempty"`
	Audience []string `json:"aud,omitempty"`

	// Lifetime of the SD-JWT in seconds, no expiry when zero.
	ExpiresIn int64 `json:"expiresIn,omitempty"`

	// Holder public key placed into cnf claim.
	HolderKey *jose.JSONWebKey `json:"holderKey,omitempty"`
}

// IssueResponse model
//
// This is used for returning issued SD-JWT.
type IssueResponse struct {
	// Combined format for issuance.
	SDJWT string `json:"sdjwt"`

	Disclosures []string `json:"disclosures"`
}

// VerifyRequest model
//
// This is used for verifying SD-JWT presentation.
type VerifyRequest struct {
	// Combined format for presentation.
	SDJWT string `json:"sdjwt"`

	// Issuer public key, the configured verification key is used when missing.
	IssuerKey *jose.JSONWebKey `json:"issuerKey,omitempty"`

	SkipSignatureVerification bool `json:"skipSignatureVerification,omitempty"`

	Typ string `json:"typ,omitempty"`

	KeyBindingRequired bool   `json:"keyBindingRequired,omitempty"`
	Nonce              string `json:"nonce,omitempty"`
	Audience           string `json:"aud,omitempty"`

	// Optional JSONPath query evaluated against recreated claims, for example $.address.country.
	JSONPath string `json:"jsonPath,omitempty"`
}

// PathDisclosures lists disclosures required to reveal claim at path.
type PathDisclosures struct {
	Path        claimpath.Path `json:"path"`
	Disclosures []string       `json:"disclosures"`
}

// VerifyResponse model
//
// This is used for returning recreated claims.
type VerifyResponse struct {
	Claims      json.RawMessage   `json:"claims"`
	Disclosures []PathDisclosures `json:"disclosures"`
	Result      json.RawMessage   `json:"result,omitempty"`
}

// PresentRequest model
//
// This is used for creating presentation of selected claims.
type PresentRequest struct {
	// Combined format for issuance.
	SDJWT string `json:"sdjwt"`

	// JSON pointers of claims to disclose.
	Pointers []string `json:"pointers,omitempty"`

	// Claim paths to disclose, for example ["nationalities",null].
	Paths []claimpath.Path `json:"paths,omitempty"`

	// Key binding JWT appended as is.
	KeyBinding string `json:"keyBinding,omitempty"`

	// Key binding JWT is created with the configured holder signer when nonce is set.
	Nonce    string `json:"nonce,omitempty"`
	Audience string `json:"aud,omitempty"`
}

// PresentResponse model
//
// This is used for returning combined format for presentation.
type PresentResponse struct {
	Presentation string `json:"presentation"`
}

// VerifiedEvent is sent to notifier on successful verification.
type VerifiedEvent struct {
	Issuer      string   `json:"iss,omitempty"`
	Disclosures int      `json:"disclosures"`
	Paths       []string `json:"paths"`
	KeyBinding  bool     `json:"keyBinding"`
}
