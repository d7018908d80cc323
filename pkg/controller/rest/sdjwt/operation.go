/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"io"
	"net/http"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command"
	cmdsdjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command/sdjwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/internal/cmdutil"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/rest"
)

// constants for SD-JWT operations.
const (
	SDJWTOperationID = "/sdjwt"
	IssuePath        = SDJWTOperationID + "/issue"
	VerifyPath       = SDJWTOperationID + "/verify"
	PresentPath      = SDJWTOperationID + "/present"
)

type sdjwtCommand interface {
	Issue(rw io.Writer, req io.Reader) command.Error
	Verify(rw io.Writer, req io.Reader) command.Error
	Present(rw io.Writer, req io.Reader) command.Error
}

// Operation contains basic common operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  sdjwtCommand
}

// New returns new SD-JWT operations rest client instance.
func New(opts ...cmdsdjwt.Option) *Operation {
	o := &Operation{command: cmdsdjwt.New(opts...)}
	o.registerHandler()

	return o
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(IssuePath, http.MethodPost, o.Issue),
		cmdutil.NewHTTPHandler(VerifyPath, http.MethodPost, o.Verify),
		cmdutil.NewHTTPHandler(PresentPath, http.MethodPost, o.Present),
	}
}

// Issue swagger:route POST /sdjwt/issue sdjwt issueReq
//
// Issues SD-JWT from plain JSON claims.
//
// Responses:
//    default: genericError
//        200: issueRes
func (o *Operation) Issue(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Issue, rw, req.Body)
}

// Verify swagger:route POST /sdjwt/verify sdjwt verifyReq
//
// Verifies SD-JWT presentation and returns recreated claims.
//
// Responses:
//    default: genericError
//        200: verifyRes
func (o *Operation) Verify(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Verify, rw, req.Body)
}

// Present swagger:route POST /sdjwt/present sdjwt presentReq
//
// Creates presentation of selected claims.
//
// Responses:
//    default: genericError
//        200: presentRes
func (o *Operation) Present(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Present, rw, req.Body)
}
