// Package ecdsa signs, verifies and recovers Ethereum-style ECDSA signatures
// over a curves.Curve.
package ecdsa

import (
	"io"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/smallyu/go-ethsig/internal/crypto/curves"
	"github.com/smallyu/go-ethsig/internal/crypto/keccak"
	"github.com/smallyu/go-ethsig/internal/crypto/modular"
	"github.com/smallyu/go-ethsig/internal/crypto/rfc6979"
	"github.com/smallyu/go-ethsig/internal/protocol/keys"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

// MaxSignAttempts bounds the number of nonces tried before Sign gives up.
const MaxSignAttempts = 1000

const (
	// legacyOffset is added to the recovery code when no chain id is given.
	legacyOffset = 27
	// eip155Offset is added to chainId*2 when a chain id is given.
	eip155Offset = 35

	recoveryParityBit   = 1
	recoveryOverflowBit = 2
)

// messagePrefix is prepended to the Keccak-256 of a message by eth_sign.
var messagePrefix = []byte("\x19Ethereum Signed Message:\n32")

// Options configures Sign.
type Options struct {
	// Deterministic selects RFC6979 nonces. Otherwise nonces are drawn from
	// Rand.
	Deterministic bool
	// Prefix hashes the message the way eth_sign does.
	Prefix bool
	// ChainID, when set, folds an EIP-155 chain id into v.
	ChainID *uint64
	// Rand is the randomness source for randomized signing. Nil uses
	// crypto/rand.
	Rand io.Reader
	// Logger receives nonce rejections. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns deterministic, prefixed signing without a chain id.
func DefaultOptions() Options {
	return Options{Deterministic: true, Prefix: true}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// HashMessage returns Keccak-256 of message, or, with prefix,
// Keccak-256("\x19Ethereum Signed Message:\n32" ‖ Keccak-256(message)).
func HashMessage(message []byte, prefix bool) []byte {
	hash := keccak.Sum256(message)
	if !prefix {
		return hash
	}
	return keccak.Sum256(messagePrefix, hash)
}

// vOffset returns the value added to the recovery code.
func vOffset(chainID *uint64) (uint64, error) {
	if chainID == nil {
		return legacyOffset, nil
	}
	// The largest v is chainId*2 + 35 + 3.
	if *chainID > (math.MaxUint64-eip155Offset-3)/2 {
		return 0, ethsig.NewError(ethsig.ErrInvalidChainID, "chain id is too large")
	}
	return *chainID*2 + eip155Offset, nil
}

// Sign hashes message according to opts.Prefix and signs the hash.
func Sign(curve *curves.Curve, message, privateKey []byte, opts Options) (*ethsig.Signature, error) {
	return SignHash(curve, HashMessage(message, opts.Prefix), privateKey, opts)
}

// SignHash signs a 32-byte hash. opts.Prefix is ignored. The returned s is
// always in the lower half of the order.
func SignHash(curve *curves.Curve, hash, privateKey []byte, opts Options) (*ethsig.Signature, error) {
	log := opts.logger()

	d, err := keys.ParsePrivateKey(curve, privateKey)
	if err != nil {
		return nil, err
	}
	offset, err := vOffset(opts.ChainID)
	if err != nil {
		return nil, err
	}

	e := new(big.Int).SetBytes(hash)
	halfOrder := new(big.Int).Rsh(curve.N, 1)

	for attempt := 0; attempt < MaxSignAttempts; attempt++ {
		var k *big.Int
		if opts.Deterministic {
			k = rfc6979.GenerateK(hash, privateKey, curve.N, uint32(attempt))
		} else {
			k, err = curve.NewScalar(opts.Rand)
			if err != nil {
				return nil, err
			}
			if k.Sign() == 0 {
				log.Debug("rejected nonce", zap.Int("attempt", attempt), zap.String("reason", "k is zero"))
				continue
			}
		}

		R := curve.ScalarBaseMult(k)
		r := modular.Reduce(curve.N, R.X)
		if r.Sign() == 0 {
			log.Debug("rejected nonce", zap.Int("attempt", attempt), zap.String("reason", "r is zero"))
			continue
		}

		// s = k^-1 (e + d·r) mod n
		kInv, err := modular.Inverse(k, curve.N)
		if err != nil {
			return nil, err
		}
		s := modular.Mul(curve.N, kInv, new(big.Int).Add(e, new(big.Int).Mul(d, r)))
		if s.Sign() == 0 {
			log.Debug("rejected nonce", zap.Int("attempt", attempt), zap.String("reason", "s is zero"))
			continue
		}

		var v uint64
		if R.Y.Bit(0) == 1 {
			v |= recoveryParityBit
		}
		if R.X.Cmp(r) != 0 {
			v |= recoveryOverflowBit
		}
		if s.Cmp(halfOrder) > 0 {
			s.Sub(curve.N, s)
			v ^= recoveryParityBit
		}

		return &ethsig.Signature{V: v + offset, R: r, S: s}, nil
	}

	log.Error("signing failed", zap.Int("attempts", MaxSignAttempts))
	return nil, ethsig.NewError(ethsig.ErrRetryLimitExceeded,
		"no valid nonce found")
}

func checkRange(curve *curves.Curve, sig *ethsig.Signature) error {
	if sig == nil || sig.R == nil || sig.S == nil ||
		sig.R.Sign() <= 0 || sig.R.Cmp(curve.N) >= 0 ||
		sig.S.Sign() <= 0 || sig.S.Cmp(curve.N) >= 0 {
		return ethsig.NewError(ethsig.ErrSignatureOutOfRange,
			"invalid signature: r or s is out of range")
	}
	return nil
}

// Verify reports whether sig is a valid signature of message by publicKey.
// It fails when r or s is outside (0, n) or the public key cannot be decoded.
func Verify(curve *curves.Curve, message []byte, sig *ethsig.Signature, publicKey []byte, prefix bool) (bool, error) {
	return VerifyHash(curve, HashMessage(message, prefix), sig, publicKey)
}

// VerifyHash is Verify for a precomputed hash.
func VerifyHash(curve *curves.Curve, hash []byte, sig *ethsig.Signature, publicKey []byte) (bool, error) {
	if err := checkRange(curve, sig); err != nil {
		return false, err
	}
	q, err := keys.ParsePublicKey(curve, publicKey)
	if err != nil {
		return false, err
	}

	e := new(big.Int).SetBytes(hash)
	sInv, err := modular.Inverse(sig.S, curve.N)
	if err != nil {
		return false, err
	}
	u1 := modular.Mul(curve.N, e, sInv)
	u2 := modular.Mul(curve.N, sig.R, sInv)

	sum := curve.Add(curve.ScalarBaseMult(u1), curve.ScalarMult(q, u2))
	if sum.Infinity {
		return false, nil
	}
	return modular.Reduce(curve.N, sum.X).Cmp(sig.R) == 0, nil
}

// recoveryCode extracts the y parity and overflow flag from v. Legacy values
// 27..30 carry both; EIP-155 values chainId*2+35 carry only the parity.
func recoveryCode(v uint64) (odd, overflow bool, err error) {
	switch {
	case v >= legacyOffset && v <= legacyOffset+3:
		code := v - legacyOffset
		return code&recoveryParityBit != 0, code&recoveryOverflowBit != 0, nil
	case v >= eip155Offset:
		return (v-eip155Offset)&recoveryParityBit != 0, false, nil
	}
	return false, false, ethsig.NewError(ethsig.ErrInvalidRecoveryCode,
		"v is not a valid recovery code")
}

// RecoverPublicKey returns the uncompressed public key that produced sig over
// message.
func RecoverPublicKey(curve *curves.Curve, message []byte, sig *ethsig.Signature, prefix bool) ([]byte, error) {
	q, err := recoverPoint(curve, HashMessage(message, prefix), sig)
	if err != nil {
		return nil, err
	}
	return curve.Marshal(q, false)
}

// Recover returns the checksummed address that produced sig over message.
func Recover(curve *curves.Curve, message []byte, sig *ethsig.Signature, prefix bool) (string, error) {
	q, err := recoverPoint(curve, HashMessage(message, prefix), sig)
	if err != nil {
		return "", err
	}
	return keys.AddressOf(curve, q)
}

// RecoverHash is Recover for a precomputed hash.
func RecoverHash(curve *curves.Curve, hash []byte, sig *ethsig.Signature) (string, error) {
	q, err := recoverPoint(curve, hash, sig)
	if err != nil {
		return "", err
	}
	return keys.AddressOf(curve, q)
}

func recoverPoint(curve *curves.Curve, hash []byte, sig *ethsig.Signature) (curves.Point, error) {
	if err := checkRange(curve, sig); err != nil {
		return curves.Point{}, err
	}
	odd, overflow, err := recoveryCode(sig.V)
	if err != nil {
		return curves.Point{}, err
	}

	x := new(big.Int).Set(sig.R)
	if overflow {
		// r + n must still be a field element.
		if sig.R.Cmp(modular.Reduce(curve.N, curve.P)) >= 0 {
			return curves.Point{}, ethsig.NewError(ethsig.ErrUnrecoverableKey,
				"unable to find second key")
		}
		x = modular.Add(curve.P, sig.R, curve.N)
	}

	R, err := curve.PointFromX(x, odd)
	if err != nil {
		return curves.Point{}, err
	}

	// Q = r^-1 (s·R - e·G)
	e := new(big.Int).SetBytes(hash)
	rInv, err := modular.Inverse(sig.R, curve.N)
	if err != nil {
		return curves.Point{}, err
	}
	u1 := modular.Mul(curve.N, modular.Neg(curve.N, e), rInv)
	u2 := modular.Mul(curve.N, sig.S, rInv)

	q := curve.Add(curve.ScalarBaseMult(u1), curve.ScalarMult(R, u2))
	if q.Infinity {
		return curves.Point{}, ethsig.NewError(ethsig.ErrPointAtInfinity,
			"recovered public key is the point at infinity")
	}
	return q, nil
}
