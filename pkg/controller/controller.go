/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package controller assembles SD-JWT command and REST handlers.
package controller

import (
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command"
	sdjwtcmd "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command/sdjwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/rest"
	sdjwtrest "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/rest/sdjwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/webnotifier"
)

type allOpts struct {
	webhookURLs  []string
	notifier     command.Notifier
	sdjwtOptions []sdjwtcmd.Option
}

const wsPath = "/ws"

// Opt represents a controller option.
type Opt func(opts *allOpts)

// WithWebhookURLs is an option for setting up a webhook dispatcher which will notify clients of events
func WithWebhookURLs(webhookURLs ...string) Opt {
	return func(opts *allOpts) {
		opts.webhookURLs = webhookURLs
	}
}

// WithNotifier is an option for setting up a notifier which will notify clients of events
func WithNotifier(notifier command.Notifier) Opt {
	return func(opts *allOpts) {
		opts.notifier = notifier
	}
}

// WithSDJWTOptions passes options (issuer signer, verification key, holder signer) to the SD-JWT command.
func WithSDJWTOptions(options ...sdjwtcmd.Option) Opt {
	return func(opts *allOpts) {
		opts.sdjwtOptions = append(opts.sdjwtOptions, options...)
	}
}

func newOpts(opts []Opt) (*allOpts, command.Notifier) {
	o := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(o)
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = webnotifier.New(wsPath, o.webhookURLs)
	}

	return o, notifier
}

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(opts ...Opt) []rest.Handler {
	restAPIOpts, notifier := newOpts(opts)

	sdjwtOp := sdjwtrest.New(append(restAPIOpts.sdjwtOptions, sdjwtcmd.WithNotifier(notifier))...)

	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, sdjwtOp.GetRESTHandlers()...)

	nhp, ok := notifier.(handlerProvider)
	if ok {
		allHandlers = append(allHandlers, nhp.GetRESTHandlers()...)
	}

	return allHandlers
}

type handlerProvider interface {
	GetRESTHandlers() []rest.Handler
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(opts ...Opt) []command.Handler {
	cmdOpts, notifier := newOpts(opts)

	sdjwtCmd := sdjwtcmd.New(append(cmdOpts.sdjwtOptions, sdjwtcmd.WithNotifier(notifier))...)

	return sdjwtCmd.GetHandlers()
}
