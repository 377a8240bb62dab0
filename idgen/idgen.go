// Copyright (c) 2025 BVK Chaitanya

// Package idgen creates deterministic client-order-index sequences. The
// same seed and offset always reproduce the same indexes, so a restarted
// job resumes its sequence instead of inventing new ids for orders the
// venue may already hold.
package idgen

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/google/uuid"
)

// clientOrderIndexBits is the venue's usable width for client-chosen
// order identifiers.
const clientOrderIndexBits = 48

// Generator creates a sequence of client order indexes derived from a
// base uuid.
type Generator struct {
	base uuid.UUID

	next  uint64
	cache []int64
}

func New(seed string, offset uint64) *Generator {
	base := uuid.UUID(md5.Sum([]byte(seed)))
	return &Generator{base: base, next: offset}
}

func (v *Generator) Offset() uint64 {
	return v.next
}

// NextID returns the next client order index in the sequence.
func (v *Generator) NextID() int64 {
	if len(v.cache) == 0 || v.next%10 == 0 {
		v.cache = v.prepare(v.next/10, 10)
	}
	id := v.cache[v.next%10]
	v.next++
	return id
}

// RevertID steps the sequence back by one, so the last NextID value is
// returned again. Used when an order was never placed.
func (v *Generator) RevertID() {
	if v.next > 0 {
		v.next--
		v.cache = nil
	}
}

func (v *Generator) prepare(from, n uint64) []int64 {
	var buf [16 + 8]byte
	copy(buf[:16], []byte(v.base[:]))

	ids := make([]int64, 0, n)
	for i := uint64(0); i < n; i++ {
		binary.BigEndian.PutUint64(buf[16:], from+i)
		checksum := md5.Sum(buf[:])
		x := binary.BigEndian.Uint64(checksum[:8])
		// Clamp to the venue's client order index range; zero is reserved.
		x = x % ((uint64(1) << clientOrderIndexBits) - 1)
		ids = append(ids, int64(x)+1)
	}
	return ids
}
