/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwtcmd

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-jose/go-jose/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
)

const stdinArg = "-"

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

// readInput returns stdin for "-", content of the file named arg when it exists, arg itself otherwise.
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg == stdinArg {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}

		return strings.TrimSpace(string(b)), nil
	}

	if _, err := os.Stat(arg); err == nil {
		b, err := os.ReadFile(arg) //nolint:gosec
		if err != nil {
			return "", errors.Wrapf(err, "read %s", arg)
		}

		return strings.TrimSpace(string(b)), nil
	}

	return arg, nil
}

func loadJWK(path string) (*jose.JSONWebKey, error) {
	b, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "read key file %s", path)
	}

	var jwk jose.JSONWebKey

	if err = json.Unmarshal(b, &jwk); err != nil {
		return nil, errors.Wrapf(err, "parse JWK %s", path)
	}

	return &jwk, nil
}

// newSigner creates signer for private JWK. The "alg" member of the JWK wins over the key type default.
func newSigner(jwk *jose.JSONWebKey, typ string) (afgjwt.Signer, error) {
	if jwk.IsPublic() {
		return nil, errors.New("signing key must be a private key")
	}

	alg := jose.SignatureAlgorithm(jwk.Algorithm)

	if alg == "" {
		var err error

		alg, err = defaultAlgorithm(jwk.Key)
		if err != nil {
			return nil, err
		}
	}

	return afgjwt.NewSigner(alg, jwk.Key, typ, afgjwt.WithKeyID(jwk.KeyID))
}

func defaultAlgorithm(key interface{}) (jose.SignatureAlgorithm, error) {
	switch k := key.(type) {
	case ed25519.PrivateKey:
		return jose.EdDSA, nil
	case *ecdsa.PrivateKey:
		switch k.Curve {
		case elliptic.P256():
			return jose.ES256, nil
		case elliptic.P384():
			return jose.ES384, nil
		case elliptic.P521():
			return jose.ES512, nil
		}
	case *rsa.PrivateKey:
		return jose.PS256, nil
	}

	return "", fmt.Errorf("unsupported key type %T", key)
}
