package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/config"
)

func newTestClient(t *testing.T, baseURL string, maxRetries int) *APIClient {
	t.Helper()
	client, err := NewAPIClient(&config.APIConfig{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestAPIClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		w.Write([]byte(`[{"id":"C001"}]`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)

	var out []map[string]interface{}
	require.NoError(t, client.Get(context.Background(), "/orders", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "C001", out[0]["id"])
}

func TestAPIClientRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)

	var out map[string]interface{}
	require.NoError(t, client.Get(context.Background(), "/status", &out))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAPIClientExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)

	err := client.Get(context.Background(), "/down", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestAPIClientDoesNotRetry4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)

	err := client.Get(context.Background(), "/missing", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPIClientPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":42}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)

	var out map[string]interface{}
	require.NoError(t, client.Post(context.Background(), "/orders", map[string]string{"product": "Laptop"}, &out))
	assert.EqualValues(t, 42, out["id"])
}

func TestAPISourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"product":"Laptop","price":75000}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	src, err := NewAPISource("api_sales", client, "/sales")
	require.NoError(t, err)

	tbl, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "api_sales", tbl.Name)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Laptop", tbl.Rows[0]["product"])
	assert.Equal(t, int64(75000), tbl.Rows[0]["price"])
}

func TestNewAPIClientRequiresBaseURL(t *testing.T) {
	_, err := NewAPIClient(&config.APIConfig{})
	assert.Error(t, err)
}
