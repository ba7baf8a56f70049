package mapstorage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPClient_UploadWAM(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-token", testLogger())

	err := c.UploadWAM(context.Background(), "campus/lobby/main.wam", []byte(`{"version":"1.0"}`))
	if err != nil {
		t.Fatalf("UploadWAM failed: %v", err)
	}

	if gotPath != "/maps/campus/lobby/main.wam" {
		t.Errorf("path = %q, want /maps/campus/lobby/main.wam", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("auth = %q, want bearer token", gotAuth)
	}
	if gotBody != `{"version":"1.0"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestHTTPClient_CopyWAM_SourceMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok", testLogger())

	err := c.CopyWAM(context.Background(), "missing.wam", "dst.wam")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHTTPClient_DeleteWAM_MissingIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok", testLogger())

	if err := c.DeleteWAM(context.Background(), "gone.wam"); err != nil {
		t.Errorf("deleting a missing descriptor should succeed, got %v", err)
	}
}

func TestHTTPClient_RejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "wrong", testLogger())

	if err := c.Ping(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestHTTPClient_InvalidPaths(t *testing.T) {
	// No server: invalid paths must be rejected before any request.
	c := NewHTTPClient("http://127.0.0.1:0", "tok", testLogger())

	for _, path := range []string{"", "/absolute.wam", "a/../b.wam"} {
		if err := c.UploadWAM(context.Background(), path, nil); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("UploadWAM(%q) err = %v, want ErrInvalidPath", path, err)
		}
		if err := c.DeleteWAM(context.Background(), path); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("DeleteWAM(%q) err = %v, want ErrInvalidPath", path, err)
		}
	}
}
