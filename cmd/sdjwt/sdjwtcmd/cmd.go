/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdjwtcmd contains the cobra commands of the sdjwt tool.
package sdjwtcmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command"
	cmdsdjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command/sdjwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

var logger = log.New("sdjwt/cli")

const (
	// issuer flag.
	issuerFlagName  = "issuer"
	issuerEnvKey    = "SDJWT_ISSUER"
	issuerFlagUsage = "Value of the iss claim." +
		" Alternatively, this can be set with the following environment variable: " + issuerEnvKey

	// issuer signing key flag.
	keyFlagName      = "key"
	keyEnvKey        = "SDJWT_KEY"
	keyFlagShorthand = "k"
	keyFlagUsage     = "Path to the issuer private JWK." +
		" Alternatively, this can be set with the following environment variable: " + keyEnvKey

	// issuer verification key flag.
	verificationKeyFlagName  = "verification-key"
	verificationKeyEnvKey    = "SDJWT_VERIFICATION_KEY"
	verificationKeyFlagUsage = "Path to the issuer public JWK. Signature is not checked when not set." +
		" Alternatively, this can be set with the following environment variable: " + verificationKeyEnvKey

	// holder key flag.
	holderKeyFlagName  = "holder-key"
	holderKeyEnvKey    = "SDJWT_HOLDER_KEY"
	holderKeyFlagUsage = "Path to the holder JWK. Issue places its public part into cnf," +
		" present signs the key binding JWT with it." +
		" Alternatively, this can be set with the following environment variable: " + holderKeyEnvKey

	// typ header flag.
	typFlagName  = "typ"
	typEnvKey    = "SDJWT_TYP"
	typFlagUsage = "typ header of the SD-JWT." +
		" Alternatively, this can be set with the following environment variable: " + typEnvKey

	flatFlagName        = "flat"
	flatFlagUsage       = "JSON pointer of a claim disclosed as a whole. This flag can be repeated."
	structuredFlagName  = "structured"
	structuredFlagUsage = "JSON pointer of an object or array whose members are disclosed individually." +
		" This flag can be repeated."
	recursiveFlagName  = "recursive"
	recursiveFlagUsage = "JSON pointer of an object or array disclosed individually and as a whole." +
		" This flag can be repeated."
	pointerFlagName  = "pointer"
	pointerFlagUsage = "JSON pointer of a claim to disclose. This flag can be repeated."

	hashAlgFlagName   = "hash-alg"
	hashAlgFlagUsage  = "Digest algorithm (sha-256, sha-384, sha-512, sha3-256, sha3-384, sha3-512)."
	decoysFlagName    = "decoys"
	decoysFlagUsage   = "Add decoy digests."
	expiresInFlagName = "expires-in"
	expiresInUsage    = "Lifetime in seconds, the SD-JWT never expires when zero."

	jsonPathFlagName  = "jsonpath"
	jsonPathFlagUsage = "JSONPath query evaluated against recreated claims, for example $.address.country."

	nonceFlagName     = "nonce"
	nonceFlagUsage    = "Nonce of the key binding JWT."
	audFlagName       = "aud"
	audFlagUsage      = "Audience of the key binding JWT."
	kbRequiredFlag    = "kb-required"
	kbRequiredUsage   = "Fail when the presentation has no key binding JWT."
	jsonOutFlagName   = "json"
	jsonOutFlagUsage  = "Print raw JSON response."
	noColorFlagName   = "no-color"
	noColorFlagUsage  = "Disable colored output."
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "SDJWT_LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey
)

// AddCommands adds issue, decode, present and serve commands to root.
func AddCommands(root *cobra.Command, server server) {
	root.PersistentFlags().Bool(noColorFlagName, false, noColorFlagUsage)
	root.PersistentFlags().String(logLevelFlagName, "", logLevelFlagUsage)

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if noColor, _ := cmd.Flags().GetBool(noColorFlagName); noColor { //nolint:errcheck
			color.NoColor = true
		}

		logLevel, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
		if err != nil {
			return err
		}

		return setLogLevel(logLevel)
	}

	root.AddCommand(IssueCmd(), DecodeCmd(), PresentCmd(), ServeCmd(server))
}

// IssueCmd returns the command issuing SD-JWT from a JSON claims file.
func IssueCmd() *cobra.Command {
	issueCmd := &cobra.Command{
		Use:   "issue <claims.json|->",
		Short: "Issue an SD-JWT",
		Long:  `Issue an SD-JWT from plain JSON claims, claims named by pointers are selectively disclosable`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, opts, err := issueParams(cmd, args[0])
			if err != nil {
				return err
			}

			var response cmdsdjwt.IssueResponse

			if err = execute(cmdsdjwt.New(opts...).Issue, request, &response); err != nil {
				return errors.Wrap(err, "issue SD-JWT")
			}

			fmt.Fprintln(cmd.OutOrStdout(), response.SDJWT)

			return nil
		},
	}

	issueCmd.Flags().String(issuerFlagName, "", issuerFlagUsage)
	issueCmd.Flags().StringP(keyFlagName, keyFlagShorthand, "", keyFlagUsage)
	issueCmd.Flags().String(holderKeyFlagName, "", holderKeyFlagUsage)
	issueCmd.Flags().String(typFlagName, "", typFlagUsage)
	issueCmd.Flags().StringSlice(flatFlagName, nil, flatFlagUsage)
	issueCmd.Flags().StringSlice(structuredFlagName, nil, structuredFlagUsage)
	issueCmd.Flags().StringSlice(recursiveFlagName, nil, recursiveFlagUsage)
	issueCmd.Flags().String(hashAlgFlagName, "", hashAlgFlagUsage)
	issueCmd.Flags().Bool(decoysFlagName, false, decoysFlagUsage)
	issueCmd.Flags().Int64(expiresInFlagName, 0, expiresInUsage)

	return issueCmd
}

func issueParams(cmd *cobra.Command, arg string) (*cmdsdjwt.IssueRequest, []cmdsdjwt.Option, error) {
	claimsJSON, err := readInput(cmd, arg)
	if err != nil {
		return nil, nil, err
	}

	issuer, err := getUserSetVar(cmd, issuerFlagName, issuerEnvKey, true)
	if err != nil {
		return nil, nil, err
	}

	keyPath, err := getUserSetVar(cmd, keyFlagName, keyEnvKey, false)
	if err != nil {
		return nil, nil, err
	}

	typ, err := getUserSetVar(cmd, typFlagName, typEnvKey, true)
	if err != nil {
		return nil, nil, err
	}

	jwk, err := loadJWK(keyPath)
	if err != nil {
		return nil, nil, err
	}

	signer, err := newSigner(jwk, typ)
	if err != nil {
		return nil, nil, errors.Wrap(err, "issuer key")
	}

	request := &cmdsdjwt.IssueRequest{Claims: json.RawMessage(claimsJSON)}

	request.Flat, _ = cmd.Flags().GetStringSlice(flatFlagName)             //nolint:errcheck
	request.Structured, _ = cmd.Flags().GetStringSlice(structuredFlagName) //nolint:errcheck
	request.Recursive, _ = cmd.Flags().GetStringSlice(recursiveFlagName)   //nolint:errcheck
	request.HashAlgorithm, _ = cmd.Flags().GetString(hashAlgFlagName)      //nolint:errcheck
	request.Decoys, _ = cmd.Flags().GetBool(decoysFlagName)                //nolint:errcheck
	request.ExpiresIn, _ = cmd.Flags().GetInt64(expiresInFlagName)         //nolint:errcheck

	holderKeyPath, err := getUserSetVar(cmd, holderKeyFlagName, holderKeyEnvKey, true)
	if err != nil {
		return nil, nil, err
	}

	if holderKeyPath != "" {
		holderJWK, err := loadJWK(holderKeyPath)
		if err != nil {
			return nil, nil, err
		}

		public := holderJWK.Public()
		request.HolderKey = &public
	}

	return request, []cmdsdjwt.Option{cmdsdjwt.WithIssuer(issuer, signer)}, nil
}

// DecodeCmd returns the command verifying and printing SD-JWT.
func DecodeCmd() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode <sd-jwt|file|->",
		Short: "Decode an SD-JWT",
		Long:  `Verify disclosures of an SD-JWT and print recreated claims along with the disclosures per claim path`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, opts, err := decodeParams(cmd, args[0])
			if err != nil {
				return err
			}

			var response cmdsdjwt.VerifyResponse

			if err = execute(cmdsdjwt.New(opts...).Verify, request, &response); err != nil {
				return errors.Wrap(err, "decode SD-JWT")
			}

			if raw, _ := cmd.Flags().GetBool(jsonOutFlagName); raw { //nolint:errcheck
				return printJSON(cmd.OutOrStdout(), &response)
			}

			return printVerified(cmd.OutOrStdout(), request.SDJWT, &response)
		},
	}

	decodeCmd.Flags().String(verificationKeyFlagName, "", verificationKeyFlagUsage)
	decodeCmd.Flags().String(typFlagName, "", typFlagUsage)
	decodeCmd.Flags().String(jsonPathFlagName, "", jsonPathFlagUsage)
	decodeCmd.Flags().String(nonceFlagName, "", nonceFlagUsage)
	decodeCmd.Flags().String(audFlagName, "", audFlagUsage)
	decodeCmd.Flags().Bool(kbRequiredFlag, false, kbRequiredUsage)
	decodeCmd.Flags().Bool(jsonOutFlagName, false, jsonOutFlagUsage)

	return decodeCmd
}

func decodeParams(cmd *cobra.Command, arg string) (*cmdsdjwt.VerifyRequest, []cmdsdjwt.Option, error) {
	combined, err := readInput(cmd, arg)
	if err != nil {
		return nil, nil, err
	}

	keyPath, err := getUserSetVar(cmd, verificationKeyFlagName, verificationKeyEnvKey, true)
	if err != nil {
		return nil, nil, err
	}

	typ, err := getUserSetVar(cmd, typFlagName, typEnvKey, true)
	if err != nil {
		return nil, nil, err
	}

	request := &cmdsdjwt.VerifyRequest{SDJWT: combined, Typ: typ}

	request.JSONPath, _ = cmd.Flags().GetString(jsonPathFlagName)       //nolint:errcheck
	request.Nonce, _ = cmd.Flags().GetString(nonceFlagName)             //nolint:errcheck
	request.Audience, _ = cmd.Flags().GetString(audFlagName)            //nolint:errcheck
	request.KeyBindingRequired, _ = cmd.Flags().GetBool(kbRequiredFlag) //nolint:errcheck

	var opts []cmdsdjwt.Option

	if keyPath == "" {
		logger.Warnf("issuer signature is not verified, %s is not set", verificationKeyFlagName)

		request.SkipSignatureVerification = true
	} else {
		jwk, err := loadJWK(keyPath)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, cmdsdjwt.WithVerificationKey(jwk.Public().Key))
	}

	return request, opts, nil
}

// PresentCmd returns the command creating presentation of selected claims.
func PresentCmd() *cobra.Command {
	presentCmd := &cobra.Command{
		Use:   "present <sd-jwt|file|->",
		Short: "Create an SD-JWT presentation",
		Long:  `Select disclosures of claims named by JSON pointers and optionally add key binding JWT`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, opts, err := presentParams(cmd, args[0])
			if err != nil {
				return err
			}

			var response cmdsdjwt.PresentResponse

			if err = execute(cmdsdjwt.New(opts...).Present, request, &response); err != nil {
				return errors.Wrap(err, "present SD-JWT")
			}

			fmt.Fprintln(cmd.OutOrStdout(), response.Presentation)

			return nil
		},
	}

	presentCmd.Flags().StringSlice(pointerFlagName, nil, pointerFlagUsage)
	presentCmd.Flags().String(holderKeyFlagName, "", holderKeyFlagUsage)
	presentCmd.Flags().String(nonceFlagName, "", nonceFlagUsage)
	presentCmd.Flags().String(audFlagName, "", audFlagUsage)

	return presentCmd
}

func presentParams(cmd *cobra.Command, arg string) (*cmdsdjwt.PresentRequest, []cmdsdjwt.Option, error) {
	combined, err := readInput(cmd, arg)
	if err != nil {
		return nil, nil, err
	}

	request := &cmdsdjwt.PresentRequest{SDJWT: combined}

	request.Pointers, _ = cmd.Flags().GetStringSlice(pointerFlagName) //nolint:errcheck
	request.Nonce, _ = cmd.Flags().GetString(nonceFlagName)           //nolint:errcheck
	request.Audience, _ = cmd.Flags().GetString(audFlagName)          //nolint:errcheck

	holderKeyPath, err := getUserSetVar(cmd, holderKeyFlagName, holderKeyEnvKey, request.Nonce == "")
	if err != nil {
		return nil, nil, err
	}

	var opts []cmdsdjwt.Option

	if holderKeyPath != "" {
		jwk, err := loadJWK(holderKeyPath)
		if err != nil {
			return nil, nil, err
		}

		signer, err := newSigner(jwk, common.KeyBindingJWTType)
		if err != nil {
			return nil, nil, errors.Wrap(err, "holder key")
		}

		opts = append(opts, cmdsdjwt.WithHolderSigner(signer))
	}

	return request, opts, nil
}

// execute runs controller command with JSON request and decodes its JSON response.
func execute(exec command.Exec, request, response interface{}) error {
	reqBytes, err := json.Marshal(request)
	if err != nil {
		return err
	}

	var b bytes.Buffer

	if cmdErr := exec(&b, bytes.NewReader(reqBytes)); cmdErr != nil {
		return cmdErr
	}

	return json.Unmarshal(b.Bytes(), response)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
