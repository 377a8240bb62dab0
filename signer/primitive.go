// Copyright (c) 2025 BVK Chaitanya

// Package signer holds the signing key material and the cryptographic
// primitive used to hash and sign canonical transaction bytes.
//
// The hash/sign/derive/verify internals are isolated behind the Primitive
// interface so a different scheme can be substituted without touching the
// transaction pipeline.
package signer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// DigestLength is the fixed digest size produced by Primitive.Hash.
const DigestLength = 32

// Primitive is the narrow contract for the underlying field arithmetic.
// Implementations must be deterministic: Sign must not depend on external
// randomness, and Derive must be a pure function of the scalar.
type Primitive interface {
	// Hash returns the DigestLength-byte digest of data.
	Hash(data []byte) []byte

	// Sign signs a digest with the private scalar. The per-message nonce
	// must be derived deterministically from the scalar and the digest.
	Sign(scalar, digest []byte) ([]byte, error)

	// Derive returns the public key for a private scalar.
	Derive(scalar []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of digest under the
	// public key.
	Verify(pub, digest, sig []byte) bool
}

// Secp256k1 implements Primitive with keccak256 hashing and secp256k1
// signatures. The underlying signer derives per-message nonces via RFC 6979,
// so signing the same digest with the same scalar always produces the same
// signature.
type Secp256k1 struct{}

// ScalarLength is the private scalar size accepted by Secp256k1.
const ScalarLength = 32

func (Secp256k1) Hash(data []byte) []byte {
	return crypto.Keccak256(data)
}

func (Secp256k1) Sign(scalar, digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("digest must be %d bytes, got %d", DigestLength, len(digest))
	}
	key, err := crypto.ToECDSA(scalar)
	if err != nil {
		return nil, fmt.Errorf("could not load private scalar: %w", err)
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("could not sign digest: %w", err)
	}
	return sig, nil
}

func (Secp256k1) Derive(scalar []byte) ([]byte, error) {
	key, err := crypto.ToECDSA(scalar)
	if err != nil {
		return nil, fmt.Errorf("could not load private scalar: %w", err)
	}
	return crypto.CompressPubkey(&key.PublicKey), nil
}

func (Secp256k1) Verify(pub, digest, sig []byte) bool {
	if len(digest) != DigestLength {
		return false
	}
	// crypto.Sign appends a recovery byte that VerifySignature does not
	// take.
	if len(sig) == 65 {
		sig = sig[:64]
	}
	return crypto.VerifySignature(pub, digest, sig)
}
