package netx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			_, _ = w.Write([]byte("png bytes"))
		}))
		defer ts.Close()

		got, err := Fetch(context.Background(), ts.Client(), ts.URL+"/out.png", 1024)
		require.NoError(t, err)
		require.Equal(t, http.MethodGet, gotMethod)
		require.Equal(t, "png bytes", string(got))
	})

	t.Run("non-200 -> StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(strings.Repeat("x", 2*MaxErrorBody)))
		}))
		defer ts.Close()

		_, err := Fetch(context.Background(), nil, ts.URL, 1024)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		require.Equal(t, http.StatusForbidden, se.Code)
		require.Len(t, se.Body, MaxErrorBody)
		require.Contains(t, err.Error(), "request failed: 403")
	})

	t.Run("too large", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("0123456789"))
		}))
		defer ts.Close()

		_, err := Fetch(context.Background(), nil, ts.URL, 9)
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := Fetch(context.Background(), nil, ts.URL, 10)
		require.Error(t, err)
		var se *StatusError
		require.False(t, errors.As(err, &se))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Fetch(ctx, nil, ts.URL, 10)
		require.ErrorIs(t, err, context.Canceled)
	})
}
