package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		want      error
		retryable bool
	}{
		{200, nil, false},
		{204, nil, false},
		{404, ErrNotFound, false},
		{401, ErrUnauthorized, false},
		{403, ErrUnauthorized, false},
		{400, ErrNetwork, false},
		{503, ErrNetwork, true},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if tt.want == nil {
			if err != nil {
				t.Errorf("CheckStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("CheckStatus(%d) = %v, want %v", tt.code, err, tt.want)
		}
		if isRetryable(err) != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, isRetryable(err), tt.retryable)
		}
	}
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), map[string]string{"X-Token": "secret"})
	var got map[string]string
	if err := c.GetJSON(context.Background(), srv.URL+"/assets/a1", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got["path"] != "/assets/a1" {
		t.Errorf("path = %q", got["path"])
	}

	bare := NewClient(srv.Client(), nil)
	if err := bare.GetJSON(context.Background(), srv.URL, &got); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unauthorized request error = %v, want ErrUnauthorized", err)
	}
}

func TestClientSendJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var in map[string]int
		json.NewDecoder(r.Body).Decode(&in)
		in["n"]++
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), nil)
	var out map[string]int
	if err := c.SendJSON(context.Background(), http.MethodPut, srv.URL, map[string]int{"n": 1}, &out); err != nil {
		t.Fatalf("SendJSON: %v", err)
	}
	if out["n"] != 2 {
		t.Errorf("n = %d, want 2", out["n"])
	}
	if err := c.SendJSON(context.Background(), http.MethodPut, srv.URL, map[string]int{}, nil); err != nil {
		t.Errorf("SendJSON with nil out: %v", err)
	}
}

func TestClientTransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(nil, nil).GetJSON(context.Background(), url, new(any))
	if !errors.Is(err, ErrNetwork) || !isRetryable(err) {
		t.Errorf("closed server error = %v, want retryable ErrNetwork", err)
	}
}
