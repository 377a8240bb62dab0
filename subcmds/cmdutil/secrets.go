// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Credentials holds the venue endpoints and signing identity. Users keep
// these in a secrets file in JSON format:
//
//	{
//	    "api_url": "https://mainnet.zklighter.elliot.ai",
//	    "ws_url": "wss://mainnet.zklighter.elliot.ai/stream",
//	    "chain_id": 300,
//	    "account_index": 9,
//	    "api_key_index": 3,
//	    "private_key": "0x..."
//	}
type Credentials struct {
	APIURL string `json:"api_url"`
	WsURL  string `json:"ws_url"`

	ChainID      uint32 `json:"chain_id"`
	AccountIndex int64  `json:"account_index"`
	APIKeyIndex  uint8  `json:"api_key_index"`

	PrivateKey string `json:"private_key"`
}

func (c *Credentials) Check() error {
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	return nil
}

// SecretsFromFile reads credentials from a JSON file.
func SecretsFromFile(fpath string) (*Credentials, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	c := new(Credentials)
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("could not unmarshal secrets file: %w", err)
	}
	return c, nil
}

// SecretsFromEnv reads credentials from L2TRADE_* environment variables,
// typically populated from an env file.
func SecretsFromEnv() (*Credentials, error) {
	c := &Credentials{
		APIURL:     os.Getenv("L2TRADE_API_URL"),
		WsURL:      os.Getenv("L2TRADE_WS_URL"),
		PrivateKey: os.Getenv("L2TRADE_PRIVATE_KEY"),
	}
	if v := os.Getenv("L2TRADE_CHAIN_ID"); v != "" {
		x, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid L2TRADE_CHAIN_ID: %w", err)
		}
		c.ChainID = uint32(x)
	}
	if v := os.Getenv("L2TRADE_ACCOUNT_INDEX"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid L2TRADE_ACCOUNT_INDEX: %w", err)
		}
		c.AccountIndex = x
	}
	if v := os.Getenv("L2TRADE_API_KEY_INDEX"); v != "" {
		x, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid L2TRADE_API_KEY_INDEX: %w", err)
		}
		c.APIKeyIndex = uint8(x)
	}
	return c, nil
}
