// Copyright 2024 The XChaCha20 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xchacha20 implements the XChaCha20 stream cipher primitive.
//
// XChaCha20 extends ChaCha20 with a 192-bit nonce, large enough that
// randomly generated nonces are safe with the same key. The cipher core is
// supplied by golang.org/x/crypto/chacha20; this package implements the
// extended-nonce construction with a full 64-bit block counter on top of
// it, along with strict fixed-size buffer contracts for keys and nonces.
//
// The keystream for a (key, nonce) pair is deterministic: XORing a message
// with it twice recovers the message. A nonce must never be reused with the
// same key for different messages.
//
// This package does not authenticate what it encrypts. Unless a
// higher-level protocol provides authentication, prefer an AEAD such as
// golang.org/x/crypto/chacha20poly1305.
package xchacha20

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"strconv"

	"golang.org/x/crypto/chacha20"

	"github.com/dpwiz/xchacha20/internal/alias"
)

const (
	// KeySize is the size, in bytes, of an XChaCha20 key.
	KeySize = chacha20.KeySize

	// NonceSize is the size, in bytes, of an XChaCha20 nonce.
	NonceSize = chacha20.NonceSizeX
)

const blockSize = 64

// An InvalidLengthError is returned when a key or nonce slice does not have
// the single valid length for its role.
type InvalidLengthError struct {
	Name string // "key" or "nonce"
	Len  int
}

func (e InvalidLengthError) Error() string {
	return "xchacha20: invalid " + e.Name + " length " + strconv.Itoa(e.Len)
}

// NewKey copies b into a fresh fixed-size key. It returns an
// InvalidLengthError if b is not exactly KeySize bytes long.
//
// Callers that already hold a [KeySize]byte array can pass its address to
// the cipher functions directly; the length check then happens at compile
// time.
func NewKey(b []byte) (*[KeySize]byte, error) {
	if len(b) != KeySize {
		return nil, InvalidLengthError{"key", len(b)}
	}
	key := new([KeySize]byte)
	copy(key[:], b)
	return key, nil
}

// NewNonce copies b into a fresh fixed-size nonce. It returns an
// InvalidLengthError if b is not exactly NonceSize bytes long.
func NewNonce(b []byte) (*[NonceSize]byte, error) {
	if len(b) != NonceSize {
		return nil, InvalidLengthError{"nonce", len(b)}
	}
	nonce := new([NonceSize]byte)
	copy(nonce[:], b)
	return nonce, nil
}

// GenerateKey generates a new secret key suitable for the cipher functions
// in this package, using the provided source of entropy. If random is nil,
// crypto/rand.Reader is used.
func GenerateKey(random io.Reader) (*[KeySize]byte, error) {
	if random == nil {
		random = rand.Reader
	}
	key := new([KeySize]byte)
	if _, err := io.ReadFull(random, key[:]); err != nil {
		return nil, err
	}
	return key, nil
}

// Keystream fills out with the raw keystream for the given nonce and key,
// starting at block 0. The same (key, nonce) pair always produces the same
// keystream, so len(out) selects how much of it is generated.
func Keystream(out []byte, nonce *[NonceSize]byte, key *[KeySize]byte) {
	for i := range out {
		out[i] = 0
	}
	streamXOR(out, out, nonce, 0, key)
}

// XORKeyStream crypts bytes from in to out using the given nonce and key,
// starting the keystream at block 0. In and out must overlap entirely or
// not at all. If out is shorter than in, XORKeyStream panics. It is
// acceptable to pass an out bigger than in, and in that case XORKeyStream
// will only update out[:len(in)] and will not touch the rest of out.
//
// Applying XORKeyStream twice with the same nonce and key recovers the
// original input.
func XORKeyStream(out, in []byte, nonce *[NonceSize]byte, key *[KeySize]byte) {
	XORKeyStreamAt(out, in, nonce, 0, key)
}

// XORKeyStreamAt is like XORKeyStream, but the keystream starts at the
// given 64-bit block counter instead of block 0. Each block covers
// 64 bytes of keystream, so a message encrypted as a whole can also be
// produced block by block with counters 0, 1, 2, and so on. The mapping
// between counters and message offsets is the caller's responsibility; the
// counter wraps modulo 2^64.
func XORKeyStreamAt(out, in []byte, nonce *[NonceSize]byte, counter uint64, key *[KeySize]byte) {
	if len(out) < len(in) {
		panic("xchacha20: output smaller than input")
	}
	out = out[:len(in)]
	if alias.InexactOverlap(out, in) {
		panic("xchacha20: invalid buffer overlap")
	}
	streamXOR(out, in, nonce, counter, key)
}

// streamXOR implements the extended-nonce construction: an HChaCha20
// subkey derived from the first 16 nonce bytes, then ChaCha20 under that
// subkey with the remaining 8 nonce bytes and a 64-bit block counter.
//
// chacha20.Cipher exposes only the low 32 counter bits; the high half
// occupies the leading 4 bytes of its 12-byte nonce. Equality of the two
// state layouts holds as long as the low half does not wrap, so the input
// is processed in spans of at most 2^32−lo blocks, rebuilding the cipher
// with an incremented high half at each span boundary.
func streamXOR(out, in []byte, nonce *[NonceSize]byte, counter uint64, key *[KeySize]byte) {
	if len(in) == 0 {
		return
	}

	// Both calls are infallible here: the sized array arguments guarantee
	// the only lengths chacha20 rejects can never reach it.
	subKey, err := chacha20.HChaCha20(key[:], nonce[:16])
	if err != nil {
		panic("xchacha20: internal error: " + err.Error())
	}

	var cNonce [chacha20.NonceSize]byte
	copy(cNonce[4:], nonce[16:])

	for len(in) > 0 {
		lo := uint32(counter)
		binary.LittleEndian.PutUint32(cNonce[:4], uint32(counter>>32))
		c, err := chacha20.NewUnauthenticatedCipher(subKey, cNonce[:])
		if err != nil {
			panic("xchacha20: internal error: " + err.Error())
		}
		if lo != 0 {
			c.SetCounter(lo)
		}

		n := len(in)
		if span := (1<<32 - uint64(lo)) * blockSize; uint64(n) > span {
			n = int(span)
		}
		c.XORKeyStream(out[:n], in[:n])
		counter += uint64(n) / blockSize
		out, in = out[n:], in[n:]
	}
}
