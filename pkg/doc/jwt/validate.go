/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/slices"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
)

// VerifySigningAlg ensures that a signing algorithm was used that was deemed secure for the application.
// The none algorithm MUST NOT be accepted.
func VerifySigningAlg(headers Headers, secureAlgs []string) error {
	alg, ok := headers.Algorithm()
	if !ok {
		return fmt.Errorf("missing alg")
	}

	if alg == AlgorithmNone {
		return fmt.Errorf("alg value cannot be 'none'")
	}

	if !slices.Contains(secureAlgs, alg) {
		return fmt.Errorf("alg '%s' is not in the allowed list", alg)
	}

	return nil
}

// VerifyTyp checks "typ" header.
func VerifyTyp(headers Headers, expectedTyp string) error {
	typ, ok := headers.Type()
	if !ok {
		return fmt.Errorf("missing typ")
	}

	if typ != expectedTyp {
		return fmt.Errorf("unexpected typ \"%s\"", typ)
	}

	return nil
}

// RegisteredClaims decodes registered claims (iss, sub, aud, exp, nbf, iat, jti) of payload.
func RegisteredClaims(payload *claims.Object) (*jwt.Claims, error) {
	var registered jwt.Claims

	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &registered,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		DecodeHook:       JSONNumberToNumericDate(),
	})
	if err != nil {
		return nil, fmt.Errorf("mapstruct registered claims. error: %w", err)
	}

	if err = d.Decode(claims.ToInterface(payload)); err != nil {
		return nil, fmt.Errorf("mapstruct registered claims decode. error: %w", err)
	}

	return &registered, nil
}

// VerifyTimeClaims checks that the JWT is valid using nbf, iat, and exp claims (if provided in the JWT).
func VerifyTimeClaims(payload *claims.Object, leeway time.Duration) error {
	registered, err := RegisteredClaims(payload)
	if err != nil {
		return err
	}

	// It is validated using the expected.Time, or time.Now if not provided
	expected := jwt.Expected{}

	err = registered.ValidateWithLeeway(expected, leeway)
	if err != nil {
		return fmt.Errorf("invalid JWT time values: %w", err)
	}

	return nil
}

// JSONNumberToNumericDate hook for mapstructure library to decode json.Number to jwt.NumericDate.
func JSONNumberToNumericDate() mapstructure.DecodeHookFuncType {
	numericDateType := reflect.TypeOf(jwt.NumericDate(0))
	numberType := reflect.TypeOf(json.Number(""))

	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f != numberType || (t != numericDateType && t != reflect.PtrTo(numericDateType)) {
			return data, nil
		}

		parsedFloat, err := strconv.ParseFloat(fmt.Sprint(data), 64)
		if err != nil {
			return nil, err
		}

		date := jwt.NewNumericDate(time.Unix(int64(parsedFloat), 0))

		if t == numericDateType {
			return *date, nil
		}

		return date, nil
	}
}
