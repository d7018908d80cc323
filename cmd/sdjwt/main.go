/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdjwt (SD-JWT command line tool and REST server).
//
//
// Terms Of Service:
//
//
//     Schemes: https
//     Version: 0.1.0
//     License: SPDX-License-Identifier: Apache-2.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package main

import (
	"github.com/spf13/cobra"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/cmd/sdjwt/sdjwtcmd"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
)

// This is an application which issues, decodes and presents SD-JWTs, or serves the same operations over REST.
func main() {
	rootCmd := &cobra.Command{
		Use: "sdjwt",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
		SilenceUsage: true,
	}

	logger := log.New("sdjwt/cli")

	sdjwtcmd.AddCommands(rootCmd, &sdjwtcmd.HTTPServer{})

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Failed to run sdjwt: %s", err)
	}
}
