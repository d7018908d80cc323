/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"nhooyr.io/websocket"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/internal/cmdutil"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/rest"
)

// WSNotifier is a dispatcher capable of notifying multiple subscribers via WebSocket.
type WSNotifier struct {
	conns          []*websocket.Conn
	connsLock      sync.RWMutex
	handlers       []rest.Handler
	originPatterns []string
}

// WSOpt configures WSNotifier.
type WSOpt func(n *WSNotifier)

// WithOriginPatterns restricts origins of WS clients (host patterns, see path.Match).
// Any origin is accepted by default.
func WithOriginPatterns(patterns ...string) WSOpt {
	return func(n *WSNotifier) {
		n.originPatterns = patterns
	}
}

// NewWSNotifier returns a new instance of an WSNotifier.
func NewWSNotifier(path string, opts ...WSOpt) *WSNotifier {
	n := WSNotifier{
		conns: []*websocket.Conn{},
	}

	for _, opt := range opts {
		opt(&n)
	}

	n.registerHandler(path)

	return &n
}

// Notify sends the given message to all of the WS clients.
// Every client is attempted, delivery errors are joined.
func (n *WSNotifier) Notify(topic string, message []byte) error {
	if topic == "" {
		return errors.New(emptyTopicErrMsg)
	}

	if len(message) == 0 {
		return errors.New(emptyMessageErrMsg)
	}

	n.connsLock.RLock()
	conns := make([]*websocket.Conn, len(n.conns))
	copy(conns, n.conns)
	n.connsLock.RUnlock()

	topicMsg, err := PrepareTopicMessage(topic, message)
	if err != nil {
		return fmt.Errorf(failedToCreateErrMsg, err)
	}

	var allErrs error

	for _, conn := range conns {
		if conn == nil {
			continue
		}

		err := notifyWS(context.Background(), conn, topicMsg)
		allErrs = appendError(allErrs, err)
	}

	return allErrs
}

func notifyWS(parent context.Context, conn *websocket.Conn, message []byte) error {
	ctx, cancel := context.WithTimeout(parent, notificationSendTimeout)
	defer cancel()

	return conn.Write(ctx, websocket.MessageText, message)
}

func (n *WSNotifier) handleWS(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("websocket notification client connected")

	conn, err := websocket.Accept(w, r, n.acceptOptions())
	if err != nil {
		logger.Infof("failed to upgrade the websocket notification connection : %v", err)

		return
	}

	n.connsLock.Lock()
	n.conns = append(n.conns, conn)
	n.connsLock.Unlock()

	n.monitorWSConn(context.Background(), conn)
}

func (n *WSNotifier) acceptOptions() *websocket.AcceptOptions {
	if len(n.originPatterns) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}

	return &websocket.AcceptOptions{OriginPatterns: n.originPatterns}
}

func (n *WSNotifier) monitorWSConn(ctx context.Context, conn *websocket.Conn) {
	logger.Debugf("websocket notification client established")

	_, _, err := conn.Reader(ctx)
	if err != nil {
		if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
			logger.Infof("reading from websocket notification client failed: %v", err)
		}
	}

	err = conn.Close(websocket.StatusPolicyViolation, "unexpected message")
	if err != nil {
		logger.Infof("closing websocket notification client failed: %v", err)
	}

	n.removeConn(conn)
}

func (n *WSNotifier) removeConn(conn *websocket.Conn) {
	logger.Debugf("websocket notification client dropped")

	n.connsLock.Lock()
	defer n.connsLock.Unlock()

	var conns []*websocket.Conn
	for _, c := range n.conns {
		if c != conn {
			conns = append(conns, c)
		}
	}

	n.conns = conns
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (n *WSNotifier) registerHandler(path string) {
	n.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(path, http.MethodGet, n.handleWS),
	}
}

// GetRESTHandlers returns all REST handlers provided by notifier.
func (n *WSNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}
