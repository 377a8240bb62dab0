// Copyright (c) 2025 BVK Chaitanya

package signer

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrKeyUnavailable is returned by Sign after the key material has been
// released.
var ErrKeyUnavailable = errors.New("signing key is unavailable")

// KeyManager owns a private scalar and the signing-key index it was
// registered under. The scalar is supplied once at construction, is never
// exposed through any method, and is zeroed on Close. KeyManager is safe
// for concurrent use; the key material is read-only between New and Close.
type KeyManager struct {
	prim Primitive

	keyIndex uint8

	mu     sync.RWMutex
	scalar []byte

	pub []byte
}

// New creates a key manager from a raw private scalar. The scalar is copied;
// the caller should clear its own copy.
func New(prim Primitive, scalar []byte, keyIndex uint8) (*KeyManager, error) {
	pub, err := prim.Derive(scalar)
	if err != nil {
		return nil, fmt.Errorf("could not derive public key: %w", err)
	}
	k := &KeyManager{
		prim:     prim,
		keyIndex: keyIndex,
		scalar:   append([]byte(nil), scalar...),
		pub:      pub,
	}
	return k, nil
}

// NewFromHex creates a key manager from a hex private key with an optional
// 0x prefix.
func NewFromHex(prim Primitive, hexKey string, keyIndex uint8) (*KeyManager, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	scalar, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("could not decode private key hex: %w", err)
	}
	defer zero(scalar)
	return New(prim, scalar, keyIndex)
}

// Close releases the key material. Further Sign calls fail with
// ErrKeyUnavailable.
func (k *KeyManager) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	zero(k.scalar)
	k.scalar = nil
}

// KeyIndex returns the signing-key index.
func (k *KeyManager) KeyIndex() uint8 {
	return k.keyIndex
}

// PublicKey returns a copy of the derived public key. Derivation happens
// once at construction, so the value is stable across calls.
func (k *KeyManager) PublicKey() []byte {
	return append([]byte(nil), k.pub...)
}

// Digest hashes canonical transaction bytes with the configured primitive.
func (k *KeyManager) Digest(data []byte) []byte {
	return k.prim.Hash(data)
}

// Sign signs a digest with the held scalar.
func (k *KeyManager) Sign(digest []byte) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.scalar == nil {
		return nil, ErrKeyUnavailable
	}
	return k.prim.Sign(k.scalar, digest)
}

// Verify reports whether sig is a valid signature of digest under this
// key's public key.
func (k *KeyManager) Verify(digest, sig []byte) bool {
	return k.prim.Verify(k.pub, digest, sig)
}

// String never includes the private scalar.
func (k *KeyManager) String() string {
	return fmt.Sprintf("key-%d:%x", k.keyIndex, k.pub)
}

// LogValue keeps the private scalar out of structured logs.
func (k *KeyManager) LogValue() slog.Value {
	return slog.StringValue(k.String())
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
