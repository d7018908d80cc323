/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

const issuer = "https://example.com/issuer"

func TestNew(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := afgjwt.NewSigner(jose.EdDSA, privKey, "example+sd-jwt")
	require.NoError(t, err)

	tree := claims.NewTree().
		Flat("given_name", "Albert").
		Flat("last_name", "Smith")

	t.Run("success", func(t *testing.T) {
		r := require.New(t)

		token, err := New(issuer, tree, signer)
		r.NoError(err)
		r.Len(token.Disclosures, 2)
		r.Equal("example+sd-jwt", token.LookupStringHeader(afgjwt.HeaderType))

		combinedFormatForIssuance := token.Serialize()

		cf := common.ParseCombinedFormat(combinedFormatForIssuance)
		r.Equal(token.Disclosures, cf.Disclosures)

		parsed, err := afgjwt.Parse(cf.SDJWT, afgjwt.WithVerificationKey(pubKey))
		r.NoError(err)
		r.Equal([]string{common.SDAlgorithmKey, "iss", common.SDKey}, parsed.Payload.Names())

		var payload map[string]interface{}
		r.NoError(token.DecodeClaims(&payload))
		r.Equal(issuer, payload["iss"])
		r.Equal("sha-256", payload[common.SDAlgorithmKey])
		r.Len(payload[common.SDKey], 2)
	})

	t.Run("success - registered claims", func(t *testing.T) {
		r := require.New(t)

		holderPub, _, err := ed25519.GenerateKey(rand.Reader)
		r.NoError(err)

		issued := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

		token, err := New(issuer, tree, signer,
			WithSubject("user"),
			WithAudience("verifier-1", "verifier-2"),
			WithJTI("jti-1"),
			WithIssuedAt(jwt.NewNumericDate(issued)),
			WithNotBefore(jwt.NewNumericDate(issued)),
			WithExpiry(jwt.NewNumericDate(issued.AddDate(1, 0, 0))),
			WithHolderPublicKey(&jose.JSONWebKey{Key: holderPub}),
			WithHashAlgorithm(common.SHA512),
			WithSaltFnc(func() (string, error) { return "salt", nil }),
			WithDecoyDigests(true))
		r.NoError(err)

		payload := token.SignedJWT.Payload
		r.Equal([]string{
			common.SDAlgorithmKey, "iss", "sub", "aud", "jti", "iat", "nbf", "exp", common.CNFKey, common.SDKey,
		}, payload.Names())

		registered, err := afgjwt.RegisteredClaims(payload)
		r.NoError(err)
		r.Equal("user", registered.Subject)
		r.Equal(jwt.Audience{"verifier-1", "verifier-2"}, registered.Audience)
		r.Equal(issued.Unix(), registered.IssuedAt.Time().Unix())

		alg, ok := payload.Get(common.SDAlgorithmKey)
		r.True(ok)
		r.True(claims.Equal(claims.String("sha-512"), alg))

		cnf, ok := payload.Get(common.CNFKey)
		r.True(ok)

		jwkValue, ok := cnf.(*claims.Object).Get("jwk")
		r.True(ok)

		kty, ok := jwkValue.(*claims.Object).Get("kty")
		r.True(ok)
		r.True(claims.Equal(claims.String("OKP"), kty))

		sd, ok := payload.Get(common.SDKey)
		r.True(ok)
		r.GreaterOrEqual(len(sd.(claims.Sequence)), 2)
		r.LessOrEqual(len(sd.(claims.Sequence)), 2+defaultDecoysLimit)
	})

	t.Run("error - nil tree", func(t *testing.T) {
		_, err := New(issuer, nil, signer)
		require.ErrorIs(t, err, common.ErrNonObjectFormat)
	})

	t.Run("error - unsupported hash", func(t *testing.T) {
		_, err := New(issuer, tree, signer, WithHashAlgorithm("md5"))
		require.ErrorIs(t, err, common.ErrMissingOrUnknownHashingAlgorithm)
	})

	t.Run("error - reserved claim", func(t *testing.T) {
		_, err := New(issuer, claims.NewTree().Plain("_sd", "x"), signer)
		require.ErrorIs(t, err, common.ErrReservedClaimName)
	})

	t.Run("error - signer", func(t *testing.T) {
		_, err := New(issuer, tree, &failingSigner{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create SD-JWT from payload: sign error")
	})
}

func TestTreeFromObject(t *testing.T) {
	credential, err := claims.ParseObject([]byte(`{
		"given_name": "John",
		"address": {"street_address": "123 Main St", "country": "US"},
		"nationalities": ["US", "DE"],
		"degree": {"type": "BachelorDegree", "name": "Computer Science"}
	}`))
	require.NoError(t, err)

	t.Run("flat policy", func(t *testing.T) {
		r := require.New(t)

		tree, err := TreeFromObject(credential, FlatPolicy())
		r.NoError(err)
		r.Equal(4, tree.DisclosableCount())

		n, _ := tree.Node("address")
		r.IsType(claims.Flat{}, n)
	})

	t.Run("structured policy", func(t *testing.T) {
		r := require.New(t)

		tree, err := TreeFromObject(credential, StructuredPolicy())
		r.NoError(err)
		r.Equal(6, tree.DisclosableCount())

		n, _ := tree.Node("address")
		r.IsType(claims.ObjectNode{}, n)

		n, _ = tree.Node("nationalities")
		r.IsType(claims.Flat{}, n)
	})

	t.Run("pointer policy", func(t *testing.T) {
		r := require.New(t)

		policy := PointerPolicy(
			[]claimpath.Pointer{
				claimpath.MustParsePointer("/given_name"),
				claimpath.MustParsePointer("/address/street_address"),
				claimpath.MustParsePointer("/nationalities/1"),
				claimpath.MustParsePointer("/degree/type"),
			},
			[]claimpath.Pointer{
				claimpath.MustParsePointer("/address"),
				claimpath.MustParsePointer("/nationalities"),
			},
			[]claimpath.Pointer{claimpath.MustParsePointer("/degree")},
		)

		tree, err := TreeFromObject(credential, policy)
		r.NoError(err)
		r.Equal(5, tree.DisclosableCount())

		n, _ := tree.Node("nationalities")
		r.Equal(claims.ArrayNode{Elements: []claims.Node{
			claims.Plain{Value: claims.String("US")},
			claims.Flat{Value: claims.String("DE")},
		}}, n)

		n, _ = tree.Node("degree")
		r.IsType(claims.RecursiveObject{}, n)

		encoded, err := NewEncoder(newEngine(t, nil)).Encode(tree)
		r.NoError(err)
		r.Len(encoded.Disclosures, 5)
	})

	t.Run("error - structured scalar", func(t *testing.T) {
		_, err := TreeFromObject(credential, PointerPolicy(nil,
			[]claimpath.Pointer{claimpath.MustParsePointer("/given_name")}, nil))
		require.Error(t, err)
		require.Contains(t, err.Error(), "only objects and arrays can be structured")
	})

	t.Run("error - reserved claim name", func(t *testing.T) {
		obj, err := claims.ParseObject([]byte(`{"a":{"_sd":[]}}`))
		require.NoError(t, err)

		_, err = TreeFromObject(obj, StructuredPolicy())
		require.ErrorIs(t, err, common.ErrReservedClaimName)
	})

	t.Run("error - nil object", func(t *testing.T) {
		_, err := TreeFromObject(nil, FlatPolicy())
		require.ErrorIs(t, err, common.ErrNonObjectFormat)
	})
}

type failingSigner struct{}

func (s *failingSigner) Sign(_ []byte) (string, error) {
	return "", errors.New("sign error")
}
