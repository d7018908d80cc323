/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package holder

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
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/issuer"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/verifier"
)

const (
	testIssuer   = "https://example.com/issuer"
	testAudience = "https://example.com/verifier"
	testNonce    = "nonce"
)

type fixture struct {
	issuerPub  ed25519.PublicKey
	holderPriv ed25519.PrivateKey
	token      *issuer.SelectiveDisclosureJWT
	combined   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	issuerPub, issuerPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	holderPub, holderPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := afgjwt.NewSigner(jose.EdDSA, issuerPriv, "vc+sd-jwt")
	require.NoError(t, err)

	tree := claims.NewTree().
		Flat("given_name", "John").
		Flat("family_name", "Doe").
		Flat("email", "john@example.com").
		Flat("birthdate", "1940-01-01").
		Object("address", claims.NewTree().
			Flat("street_address", "123 Main St").
			Flat("locality", "Anytown").
			Plain("country", "US")).
		Array("nationalities", claims.FlatOf("US"), claims.FlatOf("DE")).
		RecursiveObject("place_of_birth", claims.NewTree().
			Flat("country", "DE").
			Flat("locality", "Berlin"))

	token, err := issuer.New(testIssuer, tree, signer,
		issuer.WithIssuedAt(jwt.NewNumericDate(time.Now())),
		issuer.WithHolderPublicKey(&jose.JSONWebKey{Key: holderPub}),
		issuer.WithDecoyDigests(true))
	require.NoError(t, err)

	return &fixture{
		issuerPub:  issuerPub,
		holderPriv: holderPriv,
		token:      token,
		combined:   token.Serialize(),
	}
}

func TestParse(t *testing.T) {
	f := newFixture(t)

	t.Run("success - default is no signature verification", func(t *testing.T) {
		r := require.New(t)

		parsed, err := Parse(f.combined)
		r.NoError(err)
		r.Len(parsed, len(f.token.Disclosures))

		byPath := make(map[string]*Claim)
		for _, c := range parsed {
			byPath[c.Path.String()] = c
		}

		r.Equal("given_name", byPath[`["given_name"]`].Name)
		r.Equal(claims.String("John"), byPath[`["given_name"]`].Value)
		r.Empty(byPath[`["nationalities",1]`].Name)
		r.Equal(claims.String("DE"), byPath[`["nationalities",1]`].Value)
		r.Equal("locality", byPath[`["place_of_birth","locality"]`].Name)
		r.Contains(byPath, `["place_of_birth"]`)
	})

	t.Run("success - signature verified", func(t *testing.T) {
		_, err := Parse(f.combined,
			WithVerificationKey(f.issuerPub),
			WithIssuerSigningAlgorithms("EdDSA"),
			WithExpectedTypHeader("vc+sd-jwt"),
			WithLeewayForClaimsValidation(time.Minute),
			WithHasherFactory(common.CachingHasherFactory(100)))
		require.NoError(t, err)
	})

	t.Run("error - wrong key", func(t *testing.T) {
		otherPub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		_, err = Parse(f.combined, WithVerificationKey(otherPub))
		require.Error(t, err)
	})

	t.Run("error - duplicate disclosure", func(t *testing.T) {
		d := string(f.token.Disclosures[0])

		_, err := Parse(f.combined + d + "~")
		require.True(t, errors.Is(err, common.ErrNonUniqueDisclosures))
	})

	t.Run("error - key binding in issuance", func(t *testing.T) {
		_, err := Parse(f.combined + "a.b.c")
		require.EqualError(t, err, "combined format for issuance must not contain key binding")
	})
}

func TestSelect(t *testing.T) {
	f := newFixture(t)
	payload := f.token.SignedJWT.Payload
	disclosures := f.token.Disclosures

	names := func(t *testing.T, selected []common.Disclosure) []string {
		t.Helper()

		var result []string

		for _, d := range selected {
			decoded, err := d.Decode()
			require.NoError(t, err)

			if decoded.IsArrayElement() {
				result = append(result, "["+claimsString(t, decoded.Value)+"]")

				continue
			}

			result = append(result, decoded.Name)
		}

		return result
	}

	t.Run("success - two paths", func(t *testing.T) {
		r := require.New(t)

		selected, ok, err := Select(payload, disclosures, PathsQuery(
			claimpath.ClaimNames("family_name"),
			claimpath.ClaimNames("given_name")))
		r.NoError(err)
		r.True(ok)
		r.Len(selected, 2)
		r.Equal([]string{"given_name", "family_name"}, names(t, selected))
		r.Subset(disclosures, selected)
	})

	t.Run("success - pointers", func(t *testing.T) {
		r := require.New(t)

		selected, ok, err := Select(payload, disclosures, PointersQuery(
			claimpath.MustParsePointer("/family_name"),
			claimpath.MustParsePointer("/given_name")))
		r.NoError(err)
		r.True(ok)
		r.Equal([]string{"given_name", "family_name"}, names(t, selected))
	})

	t.Run("success - nested claim brings recursive parent", func(t *testing.T) {
		selected, ok, err := Select(payload, disclosures, PathsQuery(
			claimpath.ClaimNames("place_of_birth", "locality")))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []string{"locality", "place_of_birth"}, names(t, selected))
	})

	t.Run("success - all array elements", func(t *testing.T) {
		selected, ok, err := Select(payload, disclosures, PathsQuery(
			claimpath.ClaimNames("nationalities").Append(claimpath.AllElements())))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []string{`["US"]`, `["DE"]`}, names(t, selected))
	})

	t.Run("success - subtree", func(t *testing.T) {
		selected, ok, err := Select(payload, disclosures, SubtreeQuery(claimpath.ClaimNames("address")))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []string{"street_address", "locality"}, names(t, selected))
	})

	t.Run("success - nothing selected", func(t *testing.T) {
		for _, query := range []Query{
			PathsQuery(claimpath.ClaimNames("address", "country")),
			PathsQuery(claimpath.ClaimNames("unknown")),
			nil,
		} {
			selected, ok, err := Select(payload, disclosures, query)
			require.NoError(t, err)
			require.False(t, ok)
			require.Empty(t, selected)
		}
	})

	t.Run("error - foreign disclosure", func(t *testing.T) {
		d, err := common.NewObjectDisclosure("salt", "age", claims.Int(42))
		require.NoError(t, err)

		_, _, err = Select(payload, append([]common.Disclosure{d}, disclosures...),
			PathsQuery(claimpath.ClaimNames("age")))
		require.True(t, errors.Is(err, common.ErrMissingDigests))
	})
}

func TestCreatePresentation(t *testing.T) {
	f := newFixture(t)
	query := PathsQuery(claimpath.ClaimNames("given_name"))

	t.Run("success - without key binding", func(t *testing.T) {
		r := require.New(t)

		presentation, err := CreatePresentation(f.combined, query)
		r.NoError(err)

		cf := common.ParseCombinedFormat(presentation)
		r.Len(cf.Disclosures, 1)
		r.Empty(cf.KeyBinding)

		verified, err := verifier.Parse(presentation, verifier.WithVerificationKey(f.issuerPub))
		r.NoError(err)

		got, ok := claims.ToInterface(verified.Claims()).(map[string]interface{})
		r.True(ok)
		r.Equal("John", got["given_name"])
		r.NotContains(got, "family_name")
		r.Contains(got, "address")
	})

	t.Run("success - with key binding", func(t *testing.T) {
		r := require.New(t)

		holderSigner, err := afgjwt.NewSigner(jose.EdDSA, f.holderPriv, common.KeyBindingJWTType)
		r.NoError(err)

		presentation, err := CreatePresentation(f.combined, query, WithKeyBindingInfo(&BindingInfo{
			Payload: BindingPayload{
				Nonce:    testNonce,
				Audience: testAudience,
			},
			Signer: holderSigner,
		}))
		r.NoError(err)

		verified, err := verifier.Parse(presentation,
			verifier.WithVerificationKey(f.issuerPub),
			verifier.WithKeyBindingRequired(true),
			verifier.WithExpectedNonce(testNonce),
			verifier.WithExpectedAudience(testAudience))
		r.NoError(err)
		r.NotNil(verified.KeyBinding)
		r.Len(verified.Disclosures, 1)
	})

	t.Run("success - attached key binding JWT", func(t *testing.T) {
		presentation, err := CreatePresentation(f.combined, nil, WithKeyBinding("a.b.c"))
		require.NoError(t, err)
		require.Equal(t, common.ParseCombinedFormat(f.combined).SDJWT+"~a.b.c", presentation)
	})

	t.Run("error - both key binding options", func(t *testing.T) {
		_, err := CreatePresentation(f.combined, query, WithKeyBinding("a.b.c"), WithKeyBindingInfo(&BindingInfo{}))
		require.Error(t, err)
		require.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("error - key binding signer", func(t *testing.T) {
		_, err := CreatePresentation(f.combined, query, WithKeyBindingInfo(&BindingInfo{}))
		require.Error(t, err)
		require.Contains(t, err.Error(), "key binding signer is missing")

		_, err = CreatePresentation(f.combined, query, WithKeyBindingInfo(&BindingInfo{Signer: &failingSigner{}}))
		require.Error(t, err)
		require.Contains(t, err.Error(), "signer error")
	})

	t.Run("error - invalid SD-JWT", func(t *testing.T) {
		_, err := CreatePresentation("not-a-jwt~", query)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse SD-JWT")
	})
}

type failingSigner struct{}

func (s *failingSigner) Sign([]byte) (string, error) {
	return "", errors.New("signer error")
}

func claimsString(t *testing.T, v claims.Value) string {
	t.Helper()

	b, err := claims.Marshal(v)
	require.NoError(t, err)

	return string(b)
}
