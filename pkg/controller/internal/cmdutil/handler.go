/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cmdutil binds controller operations to REST routes and command names.
package cmdutil

import (
	"net/http"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command"
)

// HTTPHandler is a rest.Handler serving one route, e.g. POST /sdjwt/verify or GET /ws.
type HTTPHandler struct {
	path   string
	method string
	handle http.HandlerFunc
}

// NewHTTPHandler binds handle to the route given by method and path.
func NewHTTPHandler(path, method string, handle http.HandlerFunc) *HTTPHandler {
	return &HTTPHandler{path: path, method: method, handle: handle}
}

// Path is the route path registered on the router.
func (h *HTTPHandler) Path() string {
	return h.path
}

// Method is the HTTP method the route accepts.
func (h *HTTPHandler) Method() string {
	return h.method
}

// Handle returns the route handler.
func (h *HTTPHandler) Handle() http.HandlerFunc {
	return h.handle
}

// CommandHandler is a command.Handler exposing one method of a controller command,
// e.g. Verify of the sdjwt command.
type CommandHandler struct {
	name   string
	method string
	handle command.Exec
}

// NewCommandHandler binds exec to the method of the named command.
func NewCommandHandler(name, method string, exec command.Exec) *CommandHandler {
	return &CommandHandler{name: name, method: method, handle: exec}
}

// Name of the command.
func (c *CommandHandler) Name() string {
	return c.name
}

// Method of the command.
func (c *CommandHandler) Method() string {
	return c.method
}

// Handle returns the function executing the command method.
func (c *CommandHandler) Handle() command.Exec {
	return c.handle
}
