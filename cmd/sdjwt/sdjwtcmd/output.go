/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwtcmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	cmdsdjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command/sdjwt"
	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
	successColor = color.New(color.FgGreen)
)

func printVerified(w io.Writer, combined string, response *cmdsdjwt.VerifyResponse) error {
	cf := common.ParseCombinedFormat(combined)

	token, err := afgjwt.Parse(cf.SDJWT, afgjwt.WithoutSignatureVerification())
	if err != nil {
		return err
	}

	headerColor.Fprintln(w, "Header")

	names := make([]string, 0, len(token.Headers))
	for name := range token.Headers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		labelColor.Fprintf(w, "  %s: ", name)
		fmt.Fprintf(w, "%v\n", token.Headers[name])
	}

	headerColor.Fprintln(w, "\nClaims")

	if err = printIndented(w, response.Claims); err != nil {
		return err
	}

	headerColor.Fprintf(w, "\nDisclosures (%d)\n", len(cf.Disclosures))

	for _, pd := range response.Disclosures {
		labelColor.Fprintf(w, "  %s\n", pd.Path.String())

		for _, d := range pd.Disclosures {
			fmt.Fprintf(w, "    %s\n", describeDisclosure(common.Disclosure(d)))
		}
	}

	if cf.KeyBinding != "" {
		successColor.Fprintln(w, "\nKey binding JWT verified")
	}

	if len(response.Result) > 0 {
		headerColor.Fprintln(w, "\nResult")

		return printIndented(w, response.Result)
	}

	return nil
}

func describeDisclosure(d common.Disclosure) string {
	claim, err := d.Decode()
	if err != nil {
		return dimColor.Sprint(d.String())
	}

	value, err := claims.Marshal(claim.Value)
	if err != nil {
		return dimColor.Sprint(d.String())
	}

	if claim.IsArrayElement() {
		return fmt.Sprintf("[...] = %s %s", value, dimColor.Sprintf("(salt %s)", claim.Salt))
	}

	return fmt.Sprintf("%s = %s %s", claim.Name, value, dimColor.Sprintf("(salt %s)", claim.Salt))
}

func printIndented(w io.Writer, raw json.RawMessage) error {
	var b bytes.Buffer

	if err := json.Indent(&b, raw, "  ", "  "); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s\n", b.String())

	return nil
}
