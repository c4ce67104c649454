// Package keys derives public keys and addresses from secp256k1 private keys
// and implements the single-step tweak-add used by BIP32-style derivation.
package keys

import (
	"fmt"
	"math/big"

	"github.com/smallyu/go-ethsig/internal/crypto/curves"
	"github.com/smallyu/go-ethsig/internal/crypto/keccak"
	"github.com/smallyu/go-ethsig/internal/crypto/modular"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

// PrivateKeySize is the length of a serialized private key.
const PrivateKeySize = 32

// AddressSize is the number of trailing Keccak-256 bytes that form an address.
const AddressSize = 20

// ParsePrivateKey returns the scalar of a 32-byte big-endian private key. The
// key must be in the range (0, n); it is never reduced.
func ParsePrivateKey(curve *curves.Curve, privateKey []byte) (*big.Int, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, ethsig.NewError(ethsig.ErrInvalidPrivateKey,
			"private key must be 32 bytes")
	}
	d := new(big.Int).SetBytes(privateKey)
	if d.Sign() == 0 || d.Cmp(curve.N) >= 0 {
		return nil, ethsig.NewError(ethsig.ErrInvalidPrivateKey,
			"private key is not in the range (0, n)")
	}
	return d, nil
}

// ParsePublicKey decodes a compressed or uncompressed public key. Any failure
// matches both ErrInvalidPublicKey and the decoding cause.
func ParsePublicKey(curve *curves.Curve, publicKey []byte) (curves.Point, error) {
	p, err := curve.Unmarshal(publicKey)
	if err != nil {
		return curves.Point{}, fmt.Errorf("%w: %w", ethsig.ErrInvalidPublicKey, err)
	}
	return p, nil
}

// PublicKey returns the compressed public key d·G for a private key.
func PublicKey(curve *curves.Curve, privateKey []byte) ([]byte, error) {
	d, err := ParsePrivateKey(curve, privateKey)
	if err != nil {
		return nil, err
	}
	return curve.Marshal(curve.ScalarBaseMult(d), true)
}

// AddressOf returns the checksummed Ethereum address of a point.
func AddressOf(curve *curves.Curve, p curves.Point) (string, error) {
	uncompressed, err := curve.Marshal(p, false)
	if err != nil {
		return "", err
	}
	hash := keccak.Sum256(uncompressed[1:])
	return keccak.AddressFromBytes(hash[len(hash)-AddressSize:]), nil
}

// Address returns the checksummed Ethereum address of a compressed or
// uncompressed public key.
func Address(curve *curves.Curve, publicKey []byte) (string, error) {
	p, err := ParsePublicKey(curve, publicKey)
	if err != nil {
		return "", err
	}
	return AddressOf(curve, p)
}

func parseTweak(curve *curves.Curve, tweak []byte) (*big.Int, error) {
	t := new(big.Int).SetBytes(tweak)
	if t.Cmp(curve.N) >= 0 {
		return nil, ethsig.NewError(ethsig.ErrTweakOutOfRange,
			"tweak is not less than n")
	}
	return t, nil
}

// PrivateAdd returns (d + tweak) mod n as a 32-byte private key.
func PrivateAdd(curve *curves.Curve, privateKey, tweak []byte) ([]byte, error) {
	d, err := ParsePrivateKey(curve, privateKey)
	if err != nil {
		return nil, err
	}
	t, err := parseTweak(curve, tweak)
	if err != nil {
		return nil, err
	}

	sum := modular.Add(curve.N, d, t)
	if sum.Sign() == 0 {
		return nil, ethsig.NewError(ethsig.ErrResultingKeyZero,
			"tweaked private key is zero")
	}
	return sum.FillBytes(make([]byte, PrivateKeySize)), nil
}

// PublicAdd returns the compressed public key Q + tweak·G. A sum at infinity
// fails with ErrResultingKeyZero, mirroring PrivateAdd.
func PublicAdd(curve *curves.Curve, publicKey, tweak []byte) ([]byte, error) {
	q, err := ParsePublicKey(curve, publicKey)
	if err != nil {
		return nil, err
	}
	t, err := parseTweak(curve, tweak)
	if err != nil {
		return nil, err
	}

	sum := curve.Add(q, curve.ScalarBaseMult(t))
	if sum.Infinity {
		return nil, ethsig.NewError(ethsig.ErrResultingKeyZero,
			"tweaked public key is the point at infinity")
	}
	return curve.Marshal(sum, true)
}

// Compress returns the 33-byte form of a public key.
func Compress(curve *curves.Curve, publicKey []byte) ([]byte, error) {
	p, err := ParsePublicKey(curve, publicKey)
	if err != nil {
		return nil, err
	}
	return curve.Marshal(p, true)
}

// Decompress returns the 65-byte form of a public key.
func Decompress(curve *curves.Curve, publicKey []byte) ([]byte, error) {
	p, err := ParsePublicKey(curve, publicKey)
	if err != nil {
		return nil, err
	}
	return curve.Marshal(p, false)
}
