// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/visvasity/cli"

	"github.com/bvk/l2trade/txclient"
)

// testVenue hands out nonces and statuses but fails every submission at
// the transport level, so the outcome of POST /tx is unknown to the
// client.
func testVenue(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /nonce", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "nonce": int64(42)})
	})
	mux.HandleFunc("POST /tx", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /tx/{digest}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "digest": r.PathValue("digest"), "status": "confirmed"})
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func testSecretsFile(t *testing.T, apiURL string) string {
	t.Helper()
	creds := map[string]any{
		"api_url":       apiURL,
		"chain_id":      300,
		"account_index": 9,
		"api_key_index": 3,
		"private_key":   strings.Repeat("11", 32),
	}
	data, err := json.Marshal(creds)
	if err != nil {
		t.Fatal(err)
	}
	fpath := filepath.Join(t.TempDir(), "secrets.json")
	if err := os.WriteFile(fpath, data, 0600); err != nil {
		t.Fatal(err)
	}
	return fpath
}

func runCommand(ctx context.Context, t *testing.T, c cli.Command, args []string) (string, error) {
	t.Helper()
	_, fset, run := c.Command()
	if err := fset.Parse(args); err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	err := run(cli.WithStdout(ctx, &sb), fset.Args())
	return sb.String(), err
}

func TestOrderAmbiguousSubmitLeavesResolvableRecord(t *testing.T) {
	ctx := context.Background()
	venue := testVenue(t)
	secrets := testSecretsFile(t, venue.URL)
	dataDir := t.TempDir()

	out, err := runCommand(ctx, t, new(Order), []string{
		"-secrets-file", secrets,
		"-data-dir", dataDir,
		"-market", "0",
		"-size", "1000000",
		"-price", "100000000",
		"-client-order-index", "7001",
	})
	if err == nil {
		t.Fatalf("submission must fail against the broken venue")
	}

	// The digest is the caller's only handle on the unknown outcome.
	var digest string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "digest: "); ok {
			digest = v
		}
	}
	if digest == "" {
		t.Fatalf("no digest in output:\n%s", out)
	}

	out, err = runCommand(ctx, t, new(Resolve), []string{
		"-secrets-file", secrets,
		"-data-dir", dataDir,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("%s: %s -> %s", digest, txclient.StatusAmbiguous, txclient.StatusConfirmed)
	if !strings.Contains(out, want) {
		t.Fatalf("resolve output %q does not contain %q", out, want)
	}
}
