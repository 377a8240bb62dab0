// Copyright (c) 2025 BVK Chaitanya

package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	s := httptest.NewServer(handler)
	t.Cleanup(s.Close)

	c, err := New(s.URL, &Options{HttpClientTimeout: time.Second, RetryCount: 3, RateLimit: 1000})
	if err != nil {
		t.Fatal(err)
	}
	return c, s
}

func TestNextNonce(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nonce" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("account"); got != "17" {
			t.Errorf("account query is %q, want 17", got)
		}
		if got := r.URL.Query().Get("key"); got != "2" {
			t.Errorf("key query is %q, want 2", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"code": CodeOK, "nonce": 42})
	}))

	v, err := c.NextNonce(context.Background(), 17, 2)
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Fatalf("got nonce %d, want 42", v)
	}
}

func TestNextNonceRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"code": CodeOK, "nonce": 7})
	}))

	v, err := c.NextNonce(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 7 {
		t.Fatalf("got nonce %d, want 7", v)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("server saw %d calls, want 3", n)
	}
}

func TestGetDoesNotRetryFatal(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.NextNonce(context.Background(), 1, 0)
	if !IsFatal(err) {
		t.Fatalf("got %v, want a fatal error", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("server saw %d calls, want 1", n)
	}
}

func TestSendTx(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tx" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req SendTxRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.TxType != 14 {
			t.Errorf("tx_type is %d, want 14", req.TxType)
		}
		json.NewEncoder(w).Encode(&TxResponse{Code: CodeOK, TxHash: "0xabc"})
	}))

	resp, err := c.SendTx(context.Background(), &SendTxRequest{TxType: 14, TxInfo: "{}"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TxHash != "0xabc" {
		t.Fatalf("got tx hash %q, want 0xabc", resp.TxHash)
	}
}

func TestSendTxNeverRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.SendTx(context.Background(), &SendTxRequest{TxType: 14, TxInfo: "{}"})
	if !IsAmbiguous(err) {
		t.Fatalf("got %v, want an ambiguous error", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("server saw %d submissions, want exactly 1", n)
	}
}

func TestSendTxTimeoutIsAmbiguous(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.SendTx(ctx, &SendTxRequest{TxType: 14, TxInfo: "{}"})
	if !IsAmbiguous(err) {
		t.Fatalf("got %v, want an ambiguous error", err)
	}
}

func TestSendTxNonceConflict(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&TxResponse{Code: CodeNonceConflict, Message: "stale nonce"})
	}))

	_, err := c.SendTx(context.Background(), &SendTxRequest{TxType: 14, TxInfo: "{}"})
	if !IsFatal(err) {
		t.Fatalf("got %v, want a fatal error", err)
	}
	if !IsNonceConflict(err) {
		t.Fatalf("got %v, want a nonce conflict", err)
	}
}

func TestTxStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tx/0xdeadbeef" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(&TxStatus{Code: CodeOK, Digest: "0xdeadbeef", Status: TxConfirmed})
	}))

	st, err := c.TxStatus(context.Background(), "0xdeadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != TxConfirmed {
		t.Fatalf("got status %q, want %q", st.Status, TxConfirmed)
	}
}
