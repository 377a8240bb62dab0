// Copyright (c) 2025 BVK Chaitanya

package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// Fake is a deterministic stand-in Primitive for tests. It has no security
// properties: the "signature" is an HMAC keyed by the public key, so anyone
// holding the public key can forge it. It exists so pipeline tests can
// exercise hash/sign/verify plumbing without real field arithmetic.
type Fake struct{}

func (Fake) Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func (Fake) Derive(scalar []byte) ([]byte, error) {
	if len(scalar) == 0 {
		return nil, fmt.Errorf("empty private scalar")
	}
	mac := hmac.New(sha256.New, []byte("fake-derive"))
	mac.Write(scalar)
	return mac.Sum(nil), nil
}

func (f Fake) Sign(scalar, digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("digest must be %d bytes, got %d", DigestLength, len(digest))
	}
	pub, err := f.Derive(scalar)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, pub)
	mac.Write(digest)
	return mac.Sum(nil), nil
}

func (Fake) Verify(pub, digest, sig []byte) bool {
	if len(digest) != DigestLength {
		return false
	}
	mac := hmac.New(sha256.New, pub)
	mac.Write(digest)
	return hmac.Equal(mac.Sum(nil), sig)
}
