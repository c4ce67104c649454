// Package signer is the public entry point for signing, verifying and
// recovering Ethereum messages and transactions on secp256k1.
//
// Signing is deterministic and uses the eth_sign prefix unless told
// otherwise:
//
//	s := signer.New(signer.WithLogger(logger))
//	sig, err := s.Sign([]byte("hello"), key, signer.WithChainID(1))
//	addr, err := s.Recover([]byte("hello"), sig)
package signer

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smallyu/go-ethsig/internal/crypto/curves"
	"github.com/smallyu/go-ethsig/internal/protocol/ecdsa"
	"github.com/smallyu/go-ethsig/internal/protocol/keys"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

// Signer binds the secp256k1 curve to a logger and randomness source. It is
// safe for concurrent use.
type Signer struct {
	curve  *curves.Curve
	logger *zap.Logger
	random io.Reader
}

// Default is a Signer with no logging and crypto/rand randomness.
var Default = New()

// New returns a Signer configured by opts.
func New(opts ...Option) *Signer {
	s := &Signer{
		curve:  curves.Secp256k1(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Signer) options(opts []CallOption) ecdsa.Options {
	o := ecdsa.DefaultOptions()
	o.Rand = s.random
	o.Logger = s.logger
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Sign signs message with a 32-byte private key.
func (s *Signer) Sign(message, privateKey []byte, opts ...CallOption) (*ethsig.Signature, error) {
	sig, err := ecdsa.Sign(s.curve, message, privateKey, s.options(opts))
	if err != nil {
		return nil, errors.Wrap(err, "sign message")
	}
	return sig, nil
}

// SignTransaction signs a legacy transaction, applying EIP-155 when
// tx.ChainID is non-zero.
func (s *Signer) SignTransaction(tx *ethsig.Transaction, privateKey []byte) (*ethsig.SignedTransaction, error) {
	if tx == nil {
		return nil, errors.New("sign transaction: nil transaction")
	}
	signed, err := ecdsa.SignTransaction(s.curve, tx, privateKey, s.logger)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}
	s.logger.Debug("signed transaction",
		zap.Uint64("nonce", tx.Nonce),
		zap.Uint64("chainID", tx.ChainID),
		zap.Binary("hash", signed.Hash))
	return signed, nil
}

// Verify reports whether sig signs message under publicKey.
func (s *Signer) Verify(message []byte, sig *ethsig.Signature, publicKey []byte, opts ...CallOption) (bool, error) {
	o := s.options(opts)
	ok, err := ecdsa.Verify(s.curve, message, sig, publicKey, o.Prefix)
	if err != nil {
		return false, errors.Wrap(err, "verify signature")
	}
	return ok, nil
}

// Recover returns the checksummed address that signed message.
func (s *Signer) Recover(message []byte, sig *ethsig.Signature, opts ...CallOption) (string, error) {
	o := s.options(opts)
	addr, err := ecdsa.Recover(s.curve, message, sig, o.Prefix)
	if err != nil {
		return "", errors.Wrap(err, "recover address")
	}
	return addr, nil
}

// RecoverPublicKey returns the uncompressed public key that signed message.
func (s *Signer) RecoverPublicKey(message []byte, sig *ethsig.Signature, opts ...CallOption) ([]byte, error) {
	o := s.options(opts)
	pub, err := ecdsa.RecoverPublicKey(s.curve, message, sig, o.Prefix)
	if err != nil {
		return nil, errors.Wrap(err, "recover public key")
	}
	return pub, nil
}

// PublicKey returns the compressed public key of a private key.
func (s *Signer) PublicKey(privateKey []byte) ([]byte, error) {
	pub, err := keys.PublicKey(s.curve, privateKey)
	return pub, errors.Wrap(err, "derive public key")
}

// Address returns the checksummed address of a public key.
func (s *Signer) Address(publicKey []byte) (string, error) {
	addr, err := keys.Address(s.curve, publicKey)
	return addr, errors.Wrap(err, "derive address")
}

// PrivateAdd adds tweak to a private key modulo n.
func (s *Signer) PrivateAdd(privateKey, tweak []byte) ([]byte, error) {
	key, err := keys.PrivateAdd(s.curve, privateKey, tweak)
	return key, errors.Wrap(err, "tweak private key")
}

// PublicAdd adds tweak·G to a public key.
func (s *Signer) PublicAdd(publicKey, tweak []byte) ([]byte, error) {
	key, err := keys.PublicAdd(s.curve, publicKey, tweak)
	return key, errors.Wrap(err, "tweak public key")
}

// Compress returns the 33-byte form of a public key.
func (s *Signer) Compress(publicKey []byte) ([]byte, error) {
	key, err := keys.Compress(s.curve, publicKey)
	return key, errors.Wrap(err, "compress public key")
}

// Decompress returns the 65-byte form of a public key.
func (s *Signer) Decompress(publicKey []byte) ([]byte, error) {
	key, err := keys.Decompress(s.curve, publicKey)
	return key, errors.Wrap(err, "decompress public key")
}

// HashMessage returns the hash Sign would sign for message.
func (s *Signer) HashMessage(message []byte, opts ...CallOption) []byte {
	return ecdsa.HashMessage(message, s.options(opts).Prefix)
}
