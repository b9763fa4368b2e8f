package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_OpenLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCALENDAR"), 0o600))

	f := NewFetcher(filepath.Join(dir, "cache"), 0)

	body, err := f.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(body))

	_, err = f.Open(context.Background(), filepath.Join(dir, "missing.ics"))
	assert.ErrorIs(t, err, ErrSourceUnreadable)

	_, err = f.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestFetcher_OpenURLRevalidates(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if n > 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("BEGIN:VCALENDAR"))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 0)

	body, err := f.Open(context.Background(), srv.URL+"/private/token.ics")
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(body))

	body, err = f.Open(context.Background(), srv.URL+"/private/token.ics")
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(body))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_OpenURLWithoutCacheFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 0)
	_, err := f.Open(context.Background(), srv.URL+"/cal.ics")
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/path/private.ics?token=abcd"))
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com"))
	assert.Equal(t, "/tmp/cal.ics", redactURL("/tmp/cal.ics"))
}
