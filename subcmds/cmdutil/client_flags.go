// Copyright (c) 2025 BVK Chaitanya

// Package cmdutil implements flag helpers shared by the subcommands.
package cmdutil

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/l2trade/rest"
	"github.com/bvk/l2trade/signer"
	"github.com/bvk/l2trade/stream"
	"github.com/bvk/l2trade/txclient"
)

type ClientFlags struct {
	secretsPath string

	apiURL string
	wsURL  string

	httpTimeout time.Duration

	maxBaseAmount int64
	maxPriceBps   int64
}

func (cf *ClientFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&cf.secretsPath, "secrets-file", "", "path to credentials file (default: L2TRADE_* env variables)")
	fset.StringVar(&cf.apiURL, "api-url", "", "overrides the venue api endpoint")
	fset.StringVar(&cf.wsURL, "ws-url", "", "overrides the venue websocket endpoint")
	fset.DurationVar(&cf.httpTimeout, "http-timeout", 30*time.Second, "http client timeout")
	fset.Int64Var(&cf.maxBaseAmount, "max-base-amount", 0, "rejects orders above this size locally (0=off)")
	fset.Int64Var(&cf.maxPriceBps, "max-price-deviation-bps", 0, "rejects orders too far from the reference price (0=off)")
}

func (cf *ClientFlags) Credentials() (*Credentials, error) {
	var creds *Credentials
	var err error
	if cf.secretsPath != "" {
		creds, err = SecretsFromFile(cf.secretsPath)
	} else {
		creds, err = SecretsFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if cf.apiURL != "" {
		creds.APIURL = cf.apiURL
	}
	if cf.wsURL != "" {
		creds.WsURL = cf.wsURL
	}
	if err := creds.Check(); err != nil {
		return nil, err
	}
	return creds, nil
}

// RestClient creates an unauthenticated api client. Read-only commands
// like nonce and status queries need no signing key.
func (cf *ClientFlags) RestClient() (*rest.Client, *Credentials, error) {
	creds, err := cf.Credentials()
	if err != nil {
		return nil, nil, err
	}
	rc, err := rest.New(creds.APIURL, &rest.Options{HttpClientTimeout: cf.httpTimeout})
	if err != nil {
		return nil, nil, err
	}
	return rc, creds, nil
}

// TxClient creates a signing transaction client. The returned closer
// releases the key material.
func (cf *ClientFlags) TxClient(opts *txclient.Options) (*txclient.Client, *Credentials, func(), error) {
	rc, creds, err := cf.RestClient()
	if err != nil {
		return nil, nil, nil, err
	}

	key, err := signer.NewFromHex(signer.Secp256k1{}, creds.PrivateKey, creds.APIKeyIndex)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not load signing key: %w", err)
	}

	if opts == nil {
		opts = new(txclient.Options)
	}
	opts.ChainID = creds.ChainID
	opts.AccountIndex = creds.AccountIndex
	if cf.maxBaseAmount != 0 {
		opts.Risk.MaxBaseAmount = cf.maxBaseAmount
	}
	if cf.maxPriceBps != 0 {
		opts.Risk.MaxPriceDeviationBps = cf.maxPriceBps
	}

	c, err := txclient.New(rc, key, opts)
	if err != nil {
		key.Close()
		return nil, nil, nil, err
	}
	closer := func() {
		c.Close()
		key.Close()
	}
	return c, creds, closer, nil
}

// StreamClient creates a websocket session with the venue.
func (cf *ClientFlags) StreamClient(ctx context.Context) (*stream.Client, *Credentials, error) {
	creds, err := cf.Credentials()
	if err != nil {
		return nil, nil, err
	}
	if creds.WsURL == "" {
		return nil, nil, fmt.Errorf("websocket url is required")
	}
	c, err := stream.New(ctx, creds.WsURL, nil)
	if err != nil {
		return nil, nil, err
	}
	return c, creds, nil
}
