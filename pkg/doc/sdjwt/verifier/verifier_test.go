/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/issuer"
)

const (
	testIssuer   = "https://example.com/issuer"
	testNonce    = "nonce-123"
	testAudience = "https://example.com/verifier"
	testTyp      = "example+sd-jwt"
)

func TestParse(t *testing.T) {
	issuerPub, issuerPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	holderPub, holderPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := afgjwt.NewSigner(jose.EdDSA, issuerPriv, testTyp)
	require.NoError(t, err)

	tree := claims.NewTree().
		Flat("given_name", "John").
		Flat("family_name", "Doe").
		Object("address", claims.NewTree().
			Flat("locality", "Berlin").
			Plain("country", "DE"))

	now := time.Now()

	token, err := issuer.New(testIssuer, tree, signer,
		issuer.WithIssuedAt(jwt.NewNumericDate(now)),
		issuer.WithExpiry(jwt.NewNumericDate(now.Add(time.Hour))),
		issuer.WithHolderPublicKey(&jose.JSONWebKey{Key: holderPub}),
		issuer.WithDecoyDigests(true))
	require.NoError(t, err)

	combinedFormatForIssuance := token.Serialize()

	t.Run("success", func(t *testing.T) {
		r := require.New(t)

		verified, err := Parse(combinedFormatForIssuance,
			WithVerificationKey(issuerPub),
			WithExpectedTypHeader(testTyp))
		r.NoError(err)
		r.Len(verified.Disclosures, 3)
		r.Nil(verified.KeyBinding)

		got, ok := claims.ToInterface(verified.Claims()).(map[string]interface{})
		r.True(ok)
		r.Equal("John", got["given_name"])
		r.Equal("Doe", got["family_name"])
		r.Equal(map[string]interface{}{"locality": "Berlin", "country": "DE"}, got["address"])
		r.Equal(testIssuer, got["iss"])
		r.NotContains(got, common.SDAlgorithmKey)
		r.NotContains(got, common.SDKey)
	})

	t.Run("success - JWK verification key and selected disclosures", func(t *testing.T) {
		r := require.New(t)

		cf := common.ParseCombinedFormat(combinedFormatForIssuance)
		cf.Disclosures = cf.Disclosures[:1]

		verified, err := Parse(cf.Serialize(), WithVerificationKey(&jose.JSONWebKey{Key: issuerPub}))
		r.NoError(err)
		r.Len(verified.Result.DigestsFound, 1)
	})

	t.Run("success - signature check skipped", func(t *testing.T) {
		_, err := Parse(combinedFormatForIssuance, WithoutSignatureVerification())
		require.NoError(t, err)
	})

	t.Run("error - signature", func(t *testing.T) {
		otherPub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		_, err = Parse(combinedFormatForIssuance, WithVerificationKey(otherPub))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to verify issuer signed SD-JWT")

		_, err = Parse(combinedFormatForIssuance)
		require.Error(t, err)
		require.Contains(t, err.Error(), "verification key is required")
	})

	t.Run("error - algorithm not allowed", func(t *testing.T) {
		_, err := Parse(combinedFormatForIssuance, WithVerificationKey(issuerPub), WithSigningAlgorithms("ES256"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "alg 'EdDSA' is not in the allowed list")
	})

	t.Run("error - typ", func(t *testing.T) {
		_, err := Parse(combinedFormatForIssuance, WithVerificationKey(issuerPub), WithExpectedTypHeader("vc+sd-jwt"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "verify SD-JWT header")
	})

	t.Run("error - expired", func(t *testing.T) {
		expired, err := issuer.New(testIssuer, tree, signer,
			issuer.WithExpiry(jwt.NewNumericDate(now.Add(-time.Hour))))
		require.NoError(t, err)

		_, err = Parse(expired.Serialize(), WithVerificationKey(issuerPub))
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid JWT time values")

		_, err = Parse(expired.Serialize(), WithVerificationKey(issuerPub), WithLeeway(2*time.Hour))
		require.NoError(t, err)
	})

	t.Run("error - unknown disclosure", func(t *testing.T) {
		_, err := Parse(combinedFormatForIssuance+mobiusDisclosure+"~", WithVerificationKey(issuerPub))
		require.ErrorIs(t, err, common.ErrMissingDigests)
	})

	t.Run("key binding", func(t *testing.T) {
		presentation := func(t *testing.T, key ed25519.PrivateKey, typ string, edit func(kb *claims.Object)) string {
			t.Helper()

			cf := common.ParseCombinedFormat(combinedFormatForIssuance)

			sdHash, err := common.GetHash(crypto.SHA256, cf.KeyBindingInput())
			require.NoError(t, err)

			kbClaims := claims.NewObject()
			kbClaims.Set("nonce", claims.String(testNonce))
			kbClaims.Set("aud", claims.String(testAudience))
			kbClaims.Set("iat", claims.Int(now.Unix()))
			kbClaims.Set(common.SDHashKey, claims.String(sdHash))

			if edit != nil {
				edit(kbClaims)
			}

			kbSigner, err := afgjwt.NewSigner(jose.EdDSA, key, typ)
			require.NoError(t, err)

			kb, err := afgjwt.NewSigned(kbClaims, kbSigner)
			require.NoError(t, err)

			cf.KeyBinding = kb.Serialize()

			return cf.Serialize()
		}

		opts := []ParseOpt{
			WithVerificationKey(issuerPub),
			WithKeyBindingRequired(true),
			WithExpectedNonce(testNonce),
			WithExpectedAudience(testAudience),
		}

		t.Run("success", func(t *testing.T) {
			r := require.New(t)

			verified, err := Parse(presentation(t, holderPriv, common.KeyBindingJWTType, nil), opts...)
			r.NoError(err)
			r.NotNil(verified.KeyBinding)
			r.Equal(common.KeyBindingJWTType, verified.KeyBinding.LookupStringHeader(afgjwt.HeaderType))
			r.Equal(testNonce, lookupNonce(t, verified))
		})

		t.Run("error - required", func(t *testing.T) {
			_, err := Parse(combinedFormatForIssuance, opts...)
			require.EqualError(t, err, "key binding is required")
		})

		t.Run("error - signed by other key", func(t *testing.T) {
			_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
			require.NoError(t, err)

			_, err = Parse(presentation(t, otherPriv, common.KeyBindingJWTType, nil), opts...)
			require.Error(t, err)
			require.Contains(t, err.Error(), "failed to verify key binding")
		})

		t.Run("error - typ", func(t *testing.T) {
			_, err := Parse(presentation(t, holderPriv, "JWT", nil), opts...)
			require.Error(t, err)
			require.Contains(t, err.Error(), `unexpected typ "JWT"`)
		})

		t.Run("error - claims", func(t *testing.T) {
			for expected, edit := range map[string]func(kb *claims.Object){
				"does not match expected nonce value": func(kb *claims.Object) {
					kb.Set("nonce", claims.String("other"))
				},
				"does not match expected audience value": func(kb *claims.Object) {
					kb.Set("aud", claims.String("https://other.example.com"))
				},
				"iat is required": func(kb *claims.Object) {
					kb.Delete("iat")
				},
				"sd_hash is required": func(kb *claims.Object) {
					kb.Delete(common.SDHashKey)
				},
				"does not match presentation": func(kb *claims.Object) {
					kb.Set(common.SDHashKey, claims.String("hash"))
				},
			} {
				_, err := Parse(presentation(t, holderPriv, common.KeyBindingJWTType, edit), opts...)
				require.Error(t, err)
				require.Contains(t, err.Error(), expected)
			}
		})

		t.Run("error - no confirmation key", func(t *testing.T) {
			unbound, err := issuer.New(testIssuer, tree, signer)
			require.NoError(t, err)

			cf := common.ParseCombinedFormat(unbound.Serialize())
			cf.KeyBinding = common.ParseCombinedFormat(presentation(t, holderPriv, common.KeyBindingJWTType, nil)).KeyBinding

			_, err = Parse(cf.Serialize(), WithVerificationKey(issuerPub))
			require.Error(t, err)
			require.Contains(t, err.Error(), "cnf claim is missing")
		})
	})
}

func TestConfirmationKey(t *testing.T) {
	for payload, expected := range map[string]string{
		`{}`:                        "cnf claim is missing",
		`{"cnf":1}`:                 "cnf claim must be an object",
		`{"cnf":{}}`:                "cnf.jwk is missing",
		`{"cnf":{"jwk":"key"}}`:     "unmarshal cnf.jwk",
		`{"cnf":{"jwk":{"kty":1}}}`: "unmarshal cnf.jwk",
	} {
		_, err := ConfirmationKey(mustParseObject(t, payload))
		require.Error(t, err)
		require.Contains(t, err.Error(), expected)
	}
}

func lookupNonce(t *testing.T, verified *VerifiedSDJWT) string {
	t.Helper()

	nonce, ok := lookupString(verified.KeyBinding.Payload, "nonce")
	require.True(t, ok)

	return nonce
}
