// Copyright (c) 2025 BVK Chaitanya

// Package gobs holds the gob-serialized types persisted in the datastore.
// Only add fields at the end; removing or retyping a field breaks decoding
// of existing databases.
package gobs

import "time"

type KeyValue struct {
	Key   string
	Value []byte
}

// TxRecord is the persisted submission outcome for one signed transaction,
// keyed by the transaction digest.
type TxRecord struct {
	Digest string
	TxType uint8

	AccountIndex int64
	APIKeyIndex  uint8
	Nonce        int64
	ExpiredAt    int64

	Payload   []byte
	Signature []byte

	TxHash string
	Status string
	Reason string

	SubmittedAt time.Time
}
