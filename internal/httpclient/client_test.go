package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoDecodesJSONAndSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/f-1", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Auth"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":{"form_name":"SF-424"}}`))
	}))
	defer srv.Close()

	var observed []string
	client := New(srv.URL+"/", time.Second,
		WithHeader("X-Auth", "secret"),
		WithObserver(func(op string, status int, _ time.Duration) {
			observed = append(observed, op)
			assert.Equal(t, http.StatusOK, status)
		}),
	)

	var out struct {
		Data struct {
			FormName string `json:"form_name"`
		} `json:"data"`
	}
	err := client.Do(context.Background(), Request{Operation: "get_form", Method: http.MethodGet, Path: "/forms/f-1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "SF-424", out.Data.FormName)
	assert.Equal(t, []string{"get_form"}, observed)
}

func TestDoReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Do(context.Background(), Request{Operation: "x", Method: http.MethodGet, Path: "/"}, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "upstream exploded")
	assert.NotContains(t, statusErr.Error(), "upstream exploded")
}
