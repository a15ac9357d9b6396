package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL})
}

func TestConnect(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/CoCon/Connect", r.URL.Path)
			fmt.Fprint(w, `{"Connect": true, "id": "abc123"}`)
		}))

		id, err := c.Connect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abc123", id)
	})

	t.Run("Non200", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		_, err := c.Connect(context.Background())
		assert.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("ConnectFlagFalse", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Connect": false, "id": "abc123"}`)
		}))

		_, err := c.Connect(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("MissingID", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Connect": true}`)
		}))

		_, err := c.Connect(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("TransportFailure", func(t *testing.T) {
		c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})

		_, err := c.Connect(context.Background())
		assert.ErrorIs(t, err, ErrConnectionFailed)
	})
}

func TestNotify(t *testing.T) {
	t.Run("Payload", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/CoCon/Notification", r.URL.Path)
			require.Equal(t, "sess-1", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"Room": {"Name": "Main"}}`)
		}))

		res, err := c.Notify(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, StatusOK, res.Status)
		assert.Equal(t, 200, res.HTTPStatus)
		assert.Contains(t, res.Payload, "Room")
	})

	t.Run("InvalidSession", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))

		res, err := c.Notify(context.Background(), "stale")
		require.NoError(t, err)
		assert.Equal(t, StatusInvalidSession, res.Status)
	})

	t.Run("Timeout408", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestTimeout)
		}))

		res, err := c.Notify(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, StatusTimeout, res.Status)
	})

	t.Run("Unexpected", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		res, err := c.Notify(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, StatusUnexpected, res.Status)
		assert.Equal(t, http.StatusBadGateway, res.HTTPStatus)
	})

	t.Run("PollBoundedByNotifyTimeout", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(block) })

		c := NewClient(Config{BaseURL: srv.URL, NotifyTimeout: 50 * time.Millisecond})

		_, err := c.Notify(context.Background(), "sess-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSend(t *testing.T) {
	t.Run("JSONResponse", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/CoCon/Subscribe", r.URL.Path)
			require.Equal(t, "Room", r.URL.Query().Get("Model"))
			require.Equal(t, "true", r.URL.Query().Get("details"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ok": true}`)
		}))

		body, err := c.Send(context.Background(), EndpointSubscribe, map[string]string{
			"Model":   "Room",
			"id":      "sess-1",
			"details": "true",
		})
		require.NoError(t, err)

		decoded, ok := body.(map[string]any)
		require.True(t, ok, "expected decoded JSON object, got %T", body)
		assert.Equal(t, true, decoded["ok"])
	})

	t.Run("TextResponse", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "OK")
		}))

		body, err := c.Send(context.Background(), "Mute", map[string]string{"id": "sess-1"})
		require.NoError(t, err)
		assert.Equal(t, "OK", body)
	})

	t.Run("CommandError", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "server broke")
		}))

		_, err := c.Send(context.Background(), EndpointSubscribe, nil)
		require.Error(t, err)

		var cmdErr *CommandError
		require.True(t, errors.As(err, &cmdErr), "error = %v, want *CommandError", err)
		assert.Equal(t, EndpointSubscribe, cmdErr.Endpoint)
		assert.Equal(t, http.StatusInternalServerError, cmdErr.Status)
		assert.Equal(t, "server broke", cmdErr.Body)
		assert.Equal(t, "'/Subscribe' failed with HTTP 500", cmdErr.Error())
	})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{Host: "10.0.0.5"})

	if got, want := c.BaseURL(), "http://10.0.0.5:8890/CoCon"; got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}
