// Copyright (c) 2025 BVK Chaitanya

package rest

// SendTxRequest is the POST /tx body. TxInfo carries the JSON-serialized
// logical transaction fields together with the envelope, digest and
// signature, so a third party can recompute the digest from the printed
// fields.
type SendTxRequest struct {
	TxType uint8  `json:"tx_type"`
	TxInfo string `json:"tx_info"`
}

// TxResponse is the POST /tx response.
type TxResponse struct {
	Code    int    `json:"code"`
	TxHash  string `json:"tx_hash"`
	Message string `json:"message,omitempty"`
}

type nonceResponse struct {
	Code    int    `json:"code"`
	Nonce   int64  `json:"nonce"`
	Message string `json:"message,omitempty"`
}

// Transaction status values reported by GET /tx/{digest}.
const (
	TxPending   = "pending"
	TxConfirmed = "confirmed"
	TxRejected  = "rejected"
)

// TxStatus is the GET /tx/{digest} response.
type TxStatus struct {
	Code   int    `json:"code"`
	Digest string `json:"digest"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
