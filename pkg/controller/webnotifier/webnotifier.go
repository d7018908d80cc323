/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package webnotifier dispatches controller events to webhook subscribers and websocket clients.
package webnotifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/rest"
)

var logger = log.New("sdjwt/webnotifier")

const (
	notificationSendTimeout = 10 * time.Second
	emptyTopicErrMsg        = "cannot notify with an empty topic"
	emptyMessageErrMsg      = "cannot notify with an empty message"
	failedToCreateErrMsg    = "failed to create topic message : %w"
)

type notifier interface {
	Notify(topic string, message []byte) error
}

// WebNotifier is a combination of HTTP and WebSocket (WS) notifiers.
// It publishes messages to subscribers over HTTP and WS.
type WebNotifier struct {
	notifiers []notifier
	handlers  []rest.Handler
}

// New returns a new instance of a WebNotifier.
// WS clients connect on wsPath, webhook subscribers are notified at webhookURLs.
func New(wsPath string, webhookURLs []string) *WebNotifier {
	httpNotifier := NewHTTPNotifier(webhookURLs)
	wsNotifier := NewWSNotifier(wsPath)

	return &WebNotifier{
		notifiers: []notifier{httpNotifier, wsNotifier},
		handlers:  wsNotifier.GetRESTHandlers(),
	}
}

// Notify sends the given message to all of the HTTP and WS subscribers.
// Every notifier is attempted, errors are joined.
func (n *WebNotifier) Notify(topic string, message []byte) error {
	var allErrs error

	for _, notifier := range n.notifiers {
		err := notifier.Notify(topic, message)
		allErrs = appendError(allErrs, err)
	}

	return allErrs
}

// GetRESTHandlers returns all REST handlers provided by notifier.
func (n *WebNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}

// TopicMessage is the envelope of every notification.
type TopicMessage struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Message json.RawMessage `json:"message"`
}

// PrepareTopicMessage wraps message into topic envelope with random id.
func PrepareTopicMessage(topic string, message []byte) ([]byte, error) {
	topicMsg := TopicMessage{
		ID:      uuid.New().String(),
		Topic:   topic,
		Message: message,
	}

	return json.Marshal(topicMsg)
}

func appendError(errToAppendTo, err error) error {
	if errToAppendTo == nil {
		return err
	}

	if err == nil {
		return errToAppendTo
	}

	return fmt.Errorf("%v;%w", errToAppendTo, err)
}
