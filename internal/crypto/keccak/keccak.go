// Package keccak provides the pre-standard Keccak-256 hash used by Ethereum
// and EIP-55 checksummed addresses derived from it.
package keccak

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Size is the length in bytes of a Keccak-256 digest.
const Size = 32

// Sum256 returns the Keccak-256 digest of the concatenation of parts. This is
// not SHA3-256: the padding differs.
func Sum256(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address, with or
// without 0x prefix. Each letter is uppercased when the matching nibble of
// Keccak-256 over the lowercase hex is 8 or more.
func ChecksumAddress(address string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X"))
	hash := hex.EncodeToString(Sum256([]byte(lower)))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// AddressFromBytes returns the checksummed address of a 20-byte value.
func AddressFromBytes(b []byte) string {
	return ChecksumAddress(hex.EncodeToString(b))
}
