package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestDoSetsHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Do(context.Background(), http.MethodPost, "/inbox/drafts", nil, map[string]string{"body": "hi"}, &out)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !out.OK {
		t.Error("response not decoded")
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want Bearer secret-token", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID not set")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestDoQueryEncoding(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	q := url.Values{}
	q.Set("limit", "100")
	q.Set("account_id", "7")
	if err := c.Do(context.Background(), http.MethodGet, "/inbox/drafts", q, nil, nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if gotQuery.Get("limit") != "100" || gotQuery.Get("account_id") != "7" {
		t.Errorf("query = %v, want limit=100 account_id=7", gotQuery)
	}
}

func TestDoRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"missing recipient"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.Do(context.Background(), http.MethodPost, "/inbox/drafts", nil, nil, nil)
	if err == nil {
		t.Fatal("Do() error = nil, want *RequestError")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d, want 422", reqErr.StatusCode)
	}
	if reqErr.Message != "missing recipient" {
		t.Errorf("Message = %q, want backend message", reqErr.Message)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("non-404 error must not match ErrNotFound")
	}
}

func TestDoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"thread not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.Do(context.Background(), http.MethodGet, "/inbox/threads/x", nil, nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("404 error = %v, want errors.Is(err, ErrNotFound)", err)
	}
}

func TestDoRawReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"thr_1"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	raw, err := c.DoRaw(context.Background(), http.MethodGet, "/inbox/threads", nil, nil)
	if err != nil {
		t.Fatalf("DoRaw() error = %v", err)
	}
	if string(raw) != `[{"id":"thr_1"}]` {
		t.Errorf("raw body = %s", raw)
	}
}

func TestRequestErrorMessage(t *testing.T) {
	e := &RequestError{StatusCode: 500, Message: "boom"}
	if e.Error() != "request failed with status 500: boom" {
		t.Errorf("Error() = %q", e.Error())
	}
	e = &RequestError{StatusCode: 502}
	if e.Error() != "request failed with status 502" {
		t.Errorf("Error() = %q", e.Error())
	}
}
