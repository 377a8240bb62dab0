// Copyright (c) 2025 BVK Chaitanya

// Package rest implements the venue's HTTP surface: transaction
// submission, nonce fetch and status queries.
//
// Read-only calls are retried with exponential backoff on transient
// failures. Submission is never blind-retried: a timeout or an ambiguous
// transport failure after the request was sent surfaces as an Ambiguous
// error that the caller resolves with a status query by digest.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bvk/l2trade/ctxutil"
	"golang.org/x/time/rate"
)

type Options struct {
	// HttpClientTimeout applies per network call.
	HttpClientTimeout time.Duration

	// RetryCount bounds retries of read-only calls.
	RetryCount int

	// RateLimit bounds outgoing requests per second.
	RateLimit rate.Limit
}

func (v *Options) setDefaults() {
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
	if v.RetryCount == 0 {
		v.RetryCount = 3
	}
	if v.RateLimit == 0 {
		v.RateLimit = 25
	}
}

type Client struct {
	opts Options

	base *url.URL

	client *http.Client

	limiter *rate.Limiter
}

// New creates a client for the venue REST API.
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse base url: %w", err)
	}

	c := &Client{
		opts: *opts,
		base: base,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter: rate.NewLimiter(opts.RateLimit, 1),
	}
	return c, nil
}

// NextNonce fetches the next unused nonce for an account and signing-key
// index. Transient failures are retried.
func (c *Client) NextNonce(ctx context.Context, account int64, keyIndex uint8) (int64, error) {
	values := make(url.Values)
	values.Set("account", strconv.FormatInt(account, 10))
	values.Set("key", strconv.Itoa(int(keyIndex)))
	u := c.base.JoinPath("/nonce")
	u.RawQuery = values.Encode()

	var resp nonceResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return 0, err
	}
	if resp.Code != CodeOK {
		return 0, &Error{Kind: Fatal, Op: "nonce", Err: &StatusError{Code: resp.Code, Message: resp.Message}}
	}
	return resp.Nonce, nil
}

// TxStatus queries the status of a submitted transaction by digest.
// Transient failures are retried.
func (c *Client) TxStatus(ctx context.Context, digest string) (*TxStatus, error) {
	u := c.base.JoinPath("/tx", digest)

	resp := new(TxStatus)
	if err := c.getJSON(ctx, u, resp); err != nil {
		return nil, err
	}
	if resp.Code != CodeOK {
		return nil, &Error{Kind: Fatal, Op: "status", Err: &StatusError{Code: resp.Code, Message: resp.Reason}}
	}
	return resp, nil
}

// SendTx submits a signed transaction. It is attempted exactly once: the
// transport cannot prove that a failed submission did not change venue
// state, so retrying is left to the caller after an explicit status query.
func (c *Client) SendTx(ctx context.Context, req *SendTxRequest) (*TxResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: Fatal, Op: "submit", Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: Fatal, Op: "submit", Err: err}
	}

	u := c.base.JoinPath("/tx")
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: Fatal, Op: "submit", Err: err}
	}
	hreq.Header.Add("Content-Type", "application/json")

	hresp, err := c.client.Do(hreq)
	if err != nil {
		// The request may have reached the venue; outcome is unknown.
		slog.WarnContext(ctx, "transaction submission failed in transit (outcome unknown)", "err", err)
		return nil, &Error{Kind: Ambiguous, Op: "submit", Err: err}
	}
	defer hresp.Body.Close()

	switch {
	case hresp.StatusCode >= 500:
		// The venue saw the request but reported an internal failure; it
		// may still have applied the transaction.
		return nil, &Error{Kind: Ambiguous, Op: "submit", Err: fmt.Errorf("http POST returned %d", hresp.StatusCode)}
	case hresp.StatusCode != http.StatusOK:
		return nil, &Error{Kind: Fatal, Op: "submit", Err: fmt.Errorf("http POST returned %d", hresp.StatusCode)}
	}

	resp := new(TxResponse)
	if err := json.NewDecoder(hresp.Body).Decode(resp); err != nil {
		slog.ErrorContext(ctx, "could not decode submission response", "err", err)
		return nil, &Error{Kind: Ambiguous, Op: "submit", Err: err}
	}
	if resp.Code != CodeOK {
		return nil, &Error{Kind: Fatal, Op: "submit", Err: &StatusError{Code: resp.Code, Message: resp.Message}}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, u *url.URL, result any) error {
	do := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: Fatal, Op: "get", Err: err}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return &Error{Kind: Fatal, Op: "get", Err: err}
		}
		req.Header.Add("Content-Type", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			return &Error{Kind: Transient, Op: "get", Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return &Error{Kind: Transient, Op: "get", Err: fmt.Errorf("http GET returned %d", resp.StatusCode)}
		case resp.StatusCode != http.StatusOK:
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &Error{Kind: Fatal, Op: "get", Err: fmt.Errorf("http GET returned %d: %s", resp.StatusCode, data)}
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			slog.ErrorContext(ctx, "could not decode response to json", "err", err)
			return &Error{Kind: Transient, Op: "get", Err: err}
		}
		return nil
	}

	var err error
	b := ctxutil.Backoff{Initial: 200 * time.Millisecond}
	for i := 0; i < c.opts.RetryCount; i++ {
		if err = do(); err == nil || !IsTransient(err) {
			return err
		}
		if i+1 < c.opts.RetryCount {
			b.Sleep(ctx)
		}
		if cause := context.Cause(ctx); cause != nil {
			return cause
		}
	}
	return err
}
