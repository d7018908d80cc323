/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/holder"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/issuer"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/verifier"
)

const (
	testIssuer = "https://example.com/issuer"
)

func TestSDJWTFlow(t *testing.T) {
	r := require.New(t)

	issuerPublicKey, issuerPrivateKey, e := ed25519.GenerateKey(rand.Reader)
	r.NoError(e)

	signer, e := afgjwt.NewSigner(jose.EdDSA, issuerPrivateKey, "vc+sd-jwt")
	r.NoError(e)

	simpleClaims := claims.NewTree().
		Flat("given_name", "Albert").
		Flat("last_name", "Smith")

	t.Run("success - simple claims (flat option)", func(t *testing.T) {
		// Issuer will issue SD-JWT for specified claims.
		token, err := issuer.New(testIssuer, simpleClaims, signer,
			issuer.WithIssuedAt(jwt.NewNumericDate(time.Now())))
		r.NoError(err)

		var simpleClaimsFlatOption map[string]interface{}
		err = token.DecodeClaims(&simpleClaimsFlatOption)
		r.NoError(err)

		printObject(t, "Simple Claims:", simpleClaimsFlatOption)

		combinedFormatForIssuance := token.Serialize()

		// Holder will parse combined format for issuance and hold on to that
		// combined format for issuance and the claims that can be selected.
		holderClaims, err := holder.Parse(combinedFormatForIssuance, holder.WithVerificationKey(issuerPublicKey))
		r.NoError(err)

		// expected disclosures given_name and last_name
		r.Equal(2, len(holderClaims))

		// Holder will disclose only sub-set of claims to verifier.
		combinedFormatForPresentation, err := holder.CreatePresentation(combinedFormatForIssuance,
			holder.PathsQuery(claimpath.ClaimNames("given_name")))
		r.NoError(err)

		// Verifier will validate combined format for presentation and create verified claims.
		verified, err := verifier.Parse(combinedFormatForPresentation,
			verifier.WithVerificationKey(issuerPublicKey))
		r.NoError(err)

		printObject(t, "Verified Claims", verified.Claims())

		// expected claims iss, iat, given_name; last_name was not disclosed
		r.Equal([]string{"iss", "iat", "given_name"}, verified.Claims().Names())
	})

	t.Run("success - with key binding", func(t *testing.T) {
		holderPublicKey, holderPrivateKey, err := ed25519.GenerateKey(rand.Reader)
		r.NoError(err)

		// Issuer will issue SD-JWT for specified claims and holder public key.
		token, err := issuer.New(testIssuer, simpleClaims, signer,
			issuer.WithHolderPublicKey(&jose.JSONWebKey{Key: holderPublicKey}))
		r.NoError(err)

		combinedFormatForIssuance := token.Serialize()

		holderClaims, err := holder.Parse(combinedFormatForIssuance, holder.WithVerificationKey(issuerPublicKey))
		r.NoError(err)
		r.Equal(2, len(holderClaims))

		holderSigner, err := afgjwt.NewSigner(jose.EdDSA, holderPrivateKey, common.KeyBindingJWTType)
		r.NoError(err)

		const testAudience = "https://test.com/verifier"

		const testNonce = "nonce"

		// Holder will disclose only sub-set of claims to verifier and add key binding.
		combinedFormatForPresentation, err := holder.CreatePresentation(combinedFormatForIssuance,
			holder.PathsQuery(claimpath.ClaimNames("given_name")),
			holder.WithKeyBindingInfo(&holder.BindingInfo{
				Payload: holder.BindingPayload{
					Nonce:    testNonce,
					Audience: testAudience,
					IssuedAt: jwt.NewNumericDate(time.Now()),
				},
				Signer: holderSigner,
			}))
		r.NoError(err)

		// Verifier will validate combined format for presentation and create verified claims.
		verified, err := verifier.Parse(combinedFormatForPresentation,
			verifier.WithVerificationKey(issuerPublicKey),
			verifier.WithKeyBindingRequired(true),
			verifier.WithExpectedAudience(testAudience),
			verifier.WithExpectedNonce(testNonce))
		r.NoError(err)

		// expected claims iss, cnf, given_name; last_name was not disclosed
		r.Equal([]string{"iss", "cnf", "given_name"}, verified.Claims().Names())
	})

	t.Run("success - complex claims with structured and recursive options", func(t *testing.T) {
		complexClaims, err := claims.ParseObject([]byte(complexClaimsJSON))
		r.NoError(err)

		tree, err := issuer.TreeFromObject(complexClaims, issuer.PointerPolicy(
			pointers("/given_name", "/family_name", "/email", "/phone_number", "/birthdate",
				"/address/street_address", "/address/locality", "/nationalities/0", "/nationalities/1"),
			pointers("/address", "/nationalities"),
			pointers("/place_of_birth")))
		r.NoError(err)

		token, err := issuer.New(testIssuer, tree, signer,
			issuer.WithHashAlgorithm(common.SHA384),
			issuer.WithDecoyDigests(true))
		r.NoError(err)

		var structuredClaims map[string]interface{}
		r.NoError(token.DecodeClaims(&structuredClaims))

		printObject(t, "Complex Claims", structuredClaims)

		combinedFormatForIssuance := token.Serialize()

		holderClaims, err := holder.Parse(combinedFormatForIssuance, holder.WithVerificationKey(issuerPublicKey))
		r.NoError(err)
		r.Len(holderClaims, 10)

		combinedFormatForPresentation, err := holder.CreatePresentation(combinedFormatForIssuance,
			holder.PointersQuery(
				claimpath.MustParsePointer("/email"),
				claimpath.MustParsePointer("/address/street_address"),
				claimpath.MustParsePointer("/place_of_birth/locality")))
		r.NoError(err)

		verified, err := verifier.Parse(combinedFormatForPresentation,
			verifier.WithVerificationKey(issuerPublicKey))
		r.NoError(err)
		r.Len(verified.Disclosures, 3)

		printObject(t, "Verified Claims", verified.Claims())

		// expected claims sub, iss, email, address.street_address, address.country, nationalities (empty),
		// place_of_birth (recursively disclosed as a whole)
		got := claims.ToInterface(verified.Claims())
		r.Equal(map[string]interface{}{
			"iss":   testIssuer,
			"sub":   "john_doe_42",
			"email": "johndoe@example.com",
			"address": map[string]interface{}{
				"street_address": "123 Main St",
				"country":        "US",
			},
			"nationalities": []interface{}{},
			"place_of_birth": map[string]interface{}{
				"country":  "DE",
				"locality": "Berlin",
			},
		}, got)

		email, err := claimpath.EvaluateJSONPath("$.email", verified.Claims())
		r.NoError(err)
		r.Equal(claims.String("johndoe@example.com"), email)
	})
}

const complexClaimsJSON = `{
	"sub": "john_doe_42",
	"given_name": "John",
	"family_name": "Doe",
	"email": "johndoe@example.com",
	"phone_number": "+1-202-555-0101",
	"birthdate": "1940-01-01",
	"address": {
		"street_address": "123 Main St",
		"locality": "Anytown",
		"country": "US"
	},
	"nationalities": ["US", "DE"],
	"place_of_birth": {
		"country": "DE",
		"locality": "Berlin"
	}
}`

func pointers(values ...string) []claimpath.Pointer {
	result := make([]claimpath.Pointer, len(values))
	for i, v := range values {
		result[i] = claimpath.MustParsePointer(v)
	}

	return result
}

func printObject(t *testing.T, name string, obj interface{}) {
	t.Helper()

	objBytes, err := json.Marshal(obj)
	require.NoError(t, err)

	prettyJSON, err := prettyPrint(objBytes)
	require.NoError(t, err)

	fmt.Println(name + ":")
	fmt.Println(prettyJSON)
}

func prettyPrint(msg []byte) (string, error) {
	var prettyJSON bytes.Buffer

	err := json.Indent(&prettyJSON, msg, "", "\t")
	if err != nil {
		return "", err
	}

	return prettyJSON.String(), nil
}
