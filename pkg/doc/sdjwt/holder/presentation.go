/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package holder

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"

	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

// BindingPayload represents key binding payload.
type BindingPayload struct {
	Nonce    string           `json:"nonce,omitempty"`
	Audience string           `json:"aud,omitempty"`
	IssuedAt *jwt.NumericDate `json:"iat,omitempty"`
}

// BindingInfo defines key binding payload and signer.
// Signer is expected to set "typ" header to kb+jwt.
type BindingInfo struct {
	Payload BindingPayload
	Signer  afgjwt.Signer
}

// options holds options for presentation.
type options struct {
	keyBinding     string
	keyBindingInfo *BindingInfo
	hasherFactory  common.HasherFactory
}

// Option is a holder option.
type Option func(opts *options)

func newOptions(opts []Option) *options {
	hOpts := &options{hasherFactory: common.DefaultHasherFactory()}

	for _, opt := range opts {
		opt(hOpts)
	}

	return hOpts
}

// WithKeyBinding option to attach already created key binding JWT.
func WithKeyBinding(keyBindingJWT string) Option {
	return func(opts *options) {
		opts.keyBinding = keyBindingJWT
	}
}

// WithKeyBindingInfo option to create key binding JWT over the presentation.
func WithKeyBindingInfo(info *BindingInfo) Option {
	return func(opts *options) {
		opts.keyBindingInfo = info
	}
}

// WithDisclosureHasherFactory option is for providing hasher used to digest disclosures.
func WithDisclosureHasherFactory(factory common.HasherFactory) Option {
	return func(opts *options) {
		opts.hasherFactory = factory
	}
}

// CreatePresentation is a convenience method to assemble combined format for presentation
// using disclosures selected by query and optional key binding.
// This call assumes that combinedFormatForIssuance has already been parsed and verified using Parse() function.
//
// For presentation to a Verifier, the Holder MUST perform the following (or equivalent) steps:
//   - Decide which Disclosures to release to the Verifier, obtaining proper End-User consent if necessary.
//   - If Key Binding is required, create a Key Binding JWT.
//   - Create the Combined Format for Presentation from selected Disclosures and Key Binding JWT (if applicable).
//   - Send the Presentation to the Verifier.
func CreatePresentation(combinedFormatForIssuance string, query Query, opts ...Option) (string, error) {
	hOpts := newOptions(opts)

	if hOpts.keyBinding != "" && hOpts.keyBindingInfo != nil {
		return "", errors.New("key binding JWT and key binding info are mutually exclusive")
	}

	cf := common.ParseCombinedFormat(combinedFormatForIssuance)

	token, err := afgjwt.Parse(cf.SDJWT, afgjwt.WithoutSignatureVerification())
	if err != nil {
		return "", fmt.Errorf("parse SD-JWT: %w", err)
	}

	selected, _, err := Select(token.Payload, cf.Disclosures, query, opts...)
	if err != nil {
		return "", err
	}

	presentation := &common.CombinedFormat{
		SDJWT:       cf.SDJWT,
		Disclosures: selected,
		KeyBinding:  hOpts.keyBinding,
	}

	if hOpts.keyBindingInfo != nil {
		alg, err := sdAlgorithm(token.Payload)
		if err != nil {
			return "", err
		}

		presentation.KeyBinding, err = CreateKeyBinding(hOpts.keyBindingInfo, presentation, alg)
		if err != nil {
			return "", fmt.Errorf("create key binding: %w", err)
		}
	}

	return presentation.Serialize(), nil
}

// CreateKeyBinding creates key binding JWT over presentation. Missing iat is set to the current time.
// The sd_hash claim is the digest of presentation without key binding, computed with alg.
func CreateKeyBinding(info *BindingInfo, presentation *common.CombinedFormat, alg common.HashAlgorithm) (string, error) {
	if info == nil || info.Signer == nil {
		return "", errors.New("key binding signer is missing")
	}

	bindingPayload := info.Payload
	if bindingPayload.IssuedAt == nil {
		bindingPayload.IssuedAt = jwt.NewNumericDate(time.Now())
	}

	payload, err := claims.FromInterface(bindingPayload)
	if err != nil {
		return "", err
	}

	obj, _ := claims.AsObject(payload)

	h, err := alg.CryptoHash()
	if err != nil {
		return "", err
	}

	sdHash, err := common.GetHash(h, presentation.KeyBindingInput())
	if err != nil {
		return "", err
	}

	obj.Set(common.SDHashKey, claims.String(sdHash))

	signed, err := afgjwt.NewSigned(obj, info.Signer)
	if err != nil {
		return "", err
	}

	return signed.Serialize(), nil
}

func sdAlgorithm(payload *claims.Object) (common.HashAlgorithm, error) {
	v, _ := payload.Get(common.SDAlgorithmKey)

	name, ok := claims.AsString(v)
	if !ok {
		return "", common.NewError(common.ErrMissingOrUnknownHashingAlgorithm,
			fmt.Errorf("%s claim is missing", common.SDAlgorithmKey))
	}

	return common.ParseHashAlgorithm(name)
}
