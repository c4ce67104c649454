// Package rfc6979 generates deterministic ECDSA nonces with HMAC-SHA256 as
// described in RFC 6979 section 3.2, without additional data.
package rfc6979

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

const size = sha256.Size

func mac(key []byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// GenerateK returns a nonce in (0, n) derived from the 32-byte message hash and
// the 32-byte private key. extraIterations skips that many valid candidates,
// so a caller that rejects a nonce can ask for the next one in the stream
// while remaining deterministic.
func GenerateK(hash, privateKey []byte, n *big.Int, extraIterations uint32) *big.Int {
	// Step B
	v := make([]byte, size)
	for i := range v {
		v[i] = 0x01
	}

	// Step C
	k := make([]byte, size)

	// Step D
	k = mac(k, v, []byte{0x00}, privateKey, hash)

	// Step E
	v = mac(k, v)

	// Step F
	k = mac(k, v, []byte{0x01}, privateKey, hash)

	// Step G
	v = mac(k, v)

	// Step H
	for generated := uint32(0); ; {
		v = mac(k, v)
		t := new(big.Int).SetBytes(v)

		if t.Sign() > 0 && t.Cmp(n) < 0 {
			if generated == extraIterations {
				return t
			}
			generated++
		}

		k = mac(k, v, []byte{0x00})
		v = mac(k, v)
	}
}
