package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetcher_SetsBrowserHeaders verifies the realistic client identifier is
// sent; listing sites trivially block default Go user agents.
func TestFetcher_SetsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", 0)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "<html></html>", string(body))
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

// TestFetcher_RetriesOnce verifies the single transport-level retry: one
// failure is absorbed, two are surfaced.
func TestFetcher_RetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", 0)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 2, calls)
}

// TestFetcher_FailsAfterRetry verifies exhaustion is an error for the
// caller, who treats a listing fetch failure as fatal for the run.
func TestFetcher_FailsAfterRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", 0)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "503")
}

// TestFetcher_Probe verifies the best-effort image existence check,
// including the GET fallback for servers rejecting HEAD.
func TestFetcher_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			w.WriteHeader(http.StatusOK)
		case "/no-head.jpg":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", 0)
	ctx := context.Background()

	assert.True(t, f.Probe(ctx, srv.URL+"/ok.jpg"))
	assert.True(t, f.Probe(ctx, srv.URL+"/no-head.jpg"))
	assert.False(t, f.Probe(ctx, srv.URL+"/gone.jpg"))
}
