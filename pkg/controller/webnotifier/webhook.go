/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultRetries       = 3
	defaultRetryInterval = 500 * time.Millisecond
)

// HTTPOpt configures HTTPNotifier.
type HTTPOpt func(n *HTTPNotifier)

// WithRetries sets number of retries of failed deliveries and the interval between them.
func WithRetries(retries uint64, interval time.Duration) HTTPOpt {
	return func(n *HTTPNotifier) {
		n.retries = retries
		n.interval = interval
	}
}

// WithHTTPClient sets client used for deliveries.
func WithHTTPClient(client *http.Client) HTTPOpt {
	return func(n *HTTPNotifier) {
		n.client = client
	}
}

// HTTPNotifier is a webhook dispatcher capable of notifying multiple subscribers via HTTP.
type HTTPNotifier struct {
	urls     []string
	client   *http.Client
	retries  uint64
	interval time.Duration
}

// NewHTTPNotifier returns a new instance of an HTTPNotifier.
func NewHTTPNotifier(webhookURLs []string, opts ...HTTPOpt) *HTTPNotifier {
	n := &HTTPNotifier{
		urls:     webhookURLs,
		client:   http.DefaultClient,
		retries:  defaultRetries,
		interval: defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Notify sends the given message to all of the urls.
// Topic is carried in the message envelope, see PrepareTopicMessage.
// Server errors and connection failures are retried, client errors are not.
// If multiple errors are encountered, then all of them are returned.
func (n *HTTPNotifier) Notify(topic string, message []byte) error {
	if topic == "" {
		return errors.New(emptyTopicErrMsg)
	}

	if len(message) == 0 {
		return errors.New(emptyMessageErrMsg)
	}

	topicMsg, err := PrepareTopicMessage(topic, message)
	if err != nil {
		return fmt.Errorf(failedToCreateErrMsg, err)
	}

	var allErrs error

	for _, webhookURL := range n.urls {
		err := n.notifyWithRetry(webhookURL, topicMsg)
		allErrs = appendError(allErrs, err)
	}

	return allErrs
}

func (n *HTTPNotifier) notifyWithRetry(destination string, message []byte) error {
	return backoff.RetryNotify(
		func() error {
			return n.notifyWH(destination, message)
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(n.interval), n.retries),
		func(retryErr error, t time.Duration) {
			logger.Warnf("failed to notify %s, will sleep for %s before trying again : %s", destination, t, retryErr)
		},
	)
}

func (n *HTTPNotifier) notifyWH(destination string, message []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination,
		bytes.NewBuffer(message))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create new http post request for %s: %w", destination, err))
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification to %s: %w", destination, err)
	}

	defer closeResponse(resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		logger.Debugf("Notification sent to %s successfully.", destination)
		return nil
	}

	err = fmt.Errorf("notification was sent to %s, but %s was received", destination, resp.Status)

	if resp.StatusCode < http.StatusInternalServerError {
		return backoff.Permanent(err)
	}

	return err
}

func closeResponse(c io.Closer) {
	err := c.Close()
	if err != nil {
		logger.Errorf("Failed to close response body")
	}
}
