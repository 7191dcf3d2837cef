package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry() RetryOptions {
	return RetryOptions{
		RetryMax:     2,
		RetryWaitMin: 1 * time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}
}

func TestNewClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	client, err := NewClient(ProxyConfig{}, fastRetry(), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if err := GetJSON(context.Background(), client, server.URL, time.Second, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if !out.OK {
		t.Error("expected decoded body")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestGetBytesStatusError(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(ProxyConfig{}, fastRetry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = GetBytes(context.Background(), client, server.URL, time.Second)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != nethttp.StatusNotFound {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
}

func TestGetBytesTimeout(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewClient(ProxyConfig{}, RetryOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if _, err := GetBytes(context.Background(), client, server.URL, 50*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("request was not bounded by the timeout")
	}
}

func TestGetJSONDecodeError(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	client, _ := NewClient(ProxyConfig{}, fastRetry(), nil)
	var v map[string]interface{}
	if err := GetJSON(context.Background(), client, server.URL, time.Second, &v); err == nil {
		t.Error("expected decode error")
	}
}
