// Copyright (c) 2025 BVK Chaitanya

package txclient

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/bvk/l2trade/rest"
	"github.com/bvk/l2trade/tx"
)

// SignedTx is an immutable signed transaction ready for submission. The
// digest and signature are bound to the canonical payload bytes, which
// include the nonce; resubmitting under a different nonce requires signing
// again.
type SignedTx struct {
	Type     tx.Type
	Envelope tx.Envelope

	Payload   []byte
	Digest    []byte
	Signature []byte
}

// DigestHex returns the digest in the form used by status queries.
func (s *SignedTx) DigestHex() string {
	return hex.EncodeToString(s.Digest)
}

type txInfo struct {
	ChainID      uint32 `json:"chain_id"`
	AccountIndex int64  `json:"account_index"`
	APIKeyIndex  uint8  `json:"api_key_index"`
	Nonce        int64  `json:"nonce"`
	ExpiredAt    int64  `json:"expired_at"`
	Payload      string `json:"payload"`
	Signature    string `json:"signature"`
}

// Request builds the submission request from the signed transaction.
func (s *SignedTx) Request() (*rest.SendTxRequest, error) {
	info := &txInfo{
		ChainID:      s.Envelope.ChainID,
		AccountIndex: s.Envelope.AccountIndex,
		APIKeyIndex:  s.Envelope.APIKeyIndex,
		Nonce:        s.Envelope.Nonce,
		ExpiredAt:    s.Envelope.ExpiredAt,
		Payload:      hex.EncodeToString(s.Payload),
		Signature:    hex.EncodeToString(s.Signature),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("could not marshal tx info: %w", err)
	}
	return &rest.SendTxRequest{
		TxType: uint8(s.Type),
		TxInfo: string(data),
	}, nil
}

func (s *SignedTx) String() string {
	return fmt.Sprintf("%s:%s:nonce-%d", s.Type, s.DigestHex(), s.Envelope.Nonce)
}
