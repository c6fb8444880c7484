package attachments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/internal/httpclient"
)

func TestHTTPClientUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/applications/app-1/attachments", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		file, header, err := r.FormFile(FileField)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		raw, _ := io.ReadAll(file)
		assert.Equal(t, "budget.pdf", header.Filename)
		assert.Equal(t, "%PDF", string(raw))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"application_attachment_id": "att-1"},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(httpclient.New(srv.URL+"/", time.Second, httpclient.WithHeader("Authorization", "Bearer token")))
	id, err := client.Upload(context.Background(), "app-1", "budget.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "att-1", id)
}

func TestHTTPClientListAndDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"data":[{"application_attachment_id":"att-1","file_name":"a.pdf","file_size_bytes":12,"created_at":"2024-01-02T00:00:00Z","updated_at":"2024-01-03T00:00:00Z"}]}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/applications/app-1/attachments/att-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(httpclient.New(srv.URL, time.Second))
	list, err := client.List(context.Background(), "app-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a.pdf", list[0].FileName)
	assert.EqualValues(t, 12, list[0].FileSizeBytes)

	require.NoError(t, client.Delete(context.Background(), "app-1", "att-1"))

	err = client.Delete(context.Background(), "app-1", "missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
