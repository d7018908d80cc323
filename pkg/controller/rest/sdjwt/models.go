/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command/sdjwt"
)

// issueReq model
//
// This is used for issue request.
//
// swagger:parameters issueReq
type issueReq struct { // nolint: unused,deadcode
	// Params for issuing SD-JWT
	//
	// in: body
	sdjwt.IssueRequest
}

// issueRes model
//
// This is used for returning issued SD-JWT.
//
// swagger:response issueRes
type issueRes struct { // nolint: unused,deadcode

	// in: body
	sdjwt.IssueResponse
}

// verifyReq model
//
// This is used for verify request.
//
// swagger:parameters verifyReq
type verifyReq struct {
	// Params for verifying SD-JWT presentation
	//
	// in: body
	sdjwt.VerifyRequest
}

// verifyRes model
//
// This is used for returning recreated claims.
//
// swagger:response verifyRes
type verifyRes struct { // nolint: unused,deadcode

	// in: body
	sdjwt.VerifyResponse
}

// presentReq model
//
// This is used for present request.
//
// swagger:parameters presentReq
type presentReq struct {
	// Params for creating presentation
	//
	// in: body
	sdjwt.PresentRequest
}

// presentRes model
//
// This is used for returning presentation.
//
// swagger:response presentRes
type presentRes struct { // nolint: unused,deadcode

	// in: body
	sdjwt.PresentResponse
}
