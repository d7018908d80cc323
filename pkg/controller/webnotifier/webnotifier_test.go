/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("New WebNotifier (populated)", func(t *testing.T) {
		n := New("/", []string{"http://localhost:8080"})
		require.NotNil(t, n)
		require.Equal(t, 2, len(n.notifiers))
		require.Equal(t, 1, len(n.handlers))
	})

	t.Run("New WebNotifier (nil)", func(t *testing.T) {
		n := New("", nil)
		require.NotNil(t, n)
		require.Equal(t, 2, len(n.notifiers))
		require.Equal(t, 1, len(n.handlers))
	})
}

func TestNotify(t *testing.T) {
	t.Run("webhook subscriber receives topic message", func(t *testing.T) {
		r := require.New(t)

		sub := newSubscriber(http.StatusOK)
		defer sub.Close()

		n := New("/ws", []string{sub.URL})

		r.NoError(n.Notify("sdjwt_verified", []byte(`{"disclosures":2}`)))

		msgs := sub.received()
		r.Len(msgs, 1)
		r.Equal("sdjwt_verified", msgs[0].Topic)
		r.NotEmpty(msgs[0].ID)
		r.JSONEq(`{"disclosures":2}`, string(msgs[0].Message))
	})

	t.Run("unreachable subscriber", func(t *testing.T) {
		n := &WebNotifier{notifiers: []notifier{
			NewHTTPNotifier([]string{"http://localhost:0"}, WithRetries(1, time.Millisecond)),
		}}

		err := n.Notify("example", []byte(`"payload"`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to post notification")
	})

	t.Run("every notifier is attempted", func(t *testing.T) {
		first := &mockNotifier{err: errors.New("first")}
		second := &mockNotifier{err: errors.New("second")}

		n := &WebNotifier{notifiers: []notifier{first, second}}

		err := n.Notify("example", []byte("payload"))
		require.EqualError(t, err, "first;second")
		require.Equal(t, 1, first.calls)
		require.Equal(t, 1, second.calls)
	})
}

func TestHTTPNotifier(t *testing.T) {
	t.Run("empty topic and message", func(t *testing.T) {
		n := NewHTTPNotifier(nil)

		require.EqualError(t, n.Notify("", []byte("payload")), emptyTopicErrMsg)
		require.EqualError(t, n.Notify("example", nil), emptyMessageErrMsg)
	})

	t.Run("server error is retried", func(t *testing.T) {
		sub := newSubscriber(http.StatusInternalServerError)
		defer sub.Close()

		n := NewHTTPNotifier([]string{sub.URL}, WithRetries(2, time.Millisecond), WithHTTPClient(sub.Client()))

		err := n.Notify("example", []byte(`"payload"`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "500 Internal Server Error")
		require.Len(t, sub.received(), 3)
	})

	t.Run("client error is not retried", func(t *testing.T) {
		sub := newSubscriber(http.StatusBadRequest)
		defer sub.Close()

		n := NewHTTPNotifier([]string{sub.URL}, WithRetries(2, time.Millisecond))

		err := n.Notify("example", []byte(`"payload"`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "400 Bad Request")
		require.Len(t, sub.received(), 1)
	})

	t.Run("invalid url", func(t *testing.T) {
		n := NewHTTPNotifier([]string{"http://[::1"}, WithRetries(2, time.Millisecond))

		err := n.Notify("example", []byte(`"payload"`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create new http post request")
	})

	t.Run("message is not JSON", func(t *testing.T) {
		n := NewHTTPNotifier(nil)

		err := n.Notify("example", []byte("payload"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create topic message")
	})
}

func TestGetHandlers(t *testing.T) {
	n := New("/", []string{"http://localhost:8080"})
	require.NotNil(t, n)

	handlers := n.GetRESTHandlers()
	require.Equal(t, 1, len(handlers))
}

type subscriber struct {
	*httptest.Server

	mu       sync.Mutex
	messages []TopicMessage
}

func newSubscriber(status int) *subscriber {
	s := &subscriber{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err == nil {
			var msg TopicMessage
			if json.Unmarshal(body, &msg) == nil {
				s.mu.Lock()
				s.messages = append(s.messages, msg)
				s.mu.Unlock()
			}
		}

		w.WriteHeader(status)
	}))

	return s
}

func (s *subscriber) received() []TopicMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]TopicMessage(nil), s.messages...)
}

type mockNotifier struct {
	calls int
	err   error
}

func (m *mockNotifier) Notify(string, []byte) error {
	m.calls++

	return m.err
}
