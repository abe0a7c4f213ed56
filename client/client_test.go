package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON_DecodesSuccessResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/master/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1","username":"ayse"}]`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	var out []map[string]any
	if err := c.JSON(context.Background(), http.MethodGet, "/api/master/users", nil, &out); err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}
	if len(out) != 1 || out[0]["username"] != "ayse" {
		t.Errorf("unexpected payload: %v", out)
	}
}

func TestDo_SerializesBodyAsJSON(t *testing.T) {
	var seen struct {
		contentType string
		body        string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.contentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		seen.body = string(buf)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"5"}`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	resp, err := c.Do(context.Background(), http.MethodPost, "/api/x", map[string]string{"name": "Pamuklu"})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	resp.Body.Close()

	if seen.contentType != "application/json" {
		t.Errorf("Content-Type = %q", seen.contentType)
	}
	if seen.body != `{"name":"Pamuklu"}` {
		t.Errorf("body = %q", seen.body)
	}
}

func TestDo_NonSuccessStatusBecomesHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "json message field",
			status:      http.StatusConflict,
			body:        `{"message":"code already exists"}`,
			wantMessage: "code already exists",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadRequest,
			body:        "malformed request",
			wantMessage: "malformed request",
		},
		{
			name:        "empty body falls back to status text",
			status:      http.StatusInternalServerError,
			body:        "",
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := New(server.URL)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			_, err = c.Do(context.Background(), http.MethodPost, "/api/x", nil)
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected *HTTPError, got %v", err)
			}
			if httpErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", httpErr.Status, tt.status)
			}
			if httpErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", httpErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestDo_TransportFailureBecomesNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = c.Do(context.Background(), http.MethodGet, "/api/x", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if netErr.Unwrap() == nil {
		t.Errorf("NetworkError should wrap the transport error")
	}
}

func TestHTTPError_Retryable(t *testing.T) {
	if (&HTTPError{Status: 409}).Retryable() {
		t.Errorf("4xx should not be retryable")
	}
	if !(&HTTPError{Status: 503}).Retryable() {
		t.Errorf("5xx should be retryable")
	}
}

func TestJSONAs_TypedDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"7","name":"Viskon"}`))
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got, err := JSONAs[map[string]any](context.Background(), c, http.MethodGet, "/api/x/7", nil)
	if err != nil {
		t.Fatalf("JSONAs() failed: %v", err)
	}
	if got["name"] != "Viskon" {
		t.Errorf("unexpected decode: %v", got)
	}
}
