package ecdsa

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/smallyu/go-ethsig/internal/crypto/curves"
	"github.com/smallyu/go-ethsig/internal/crypto/keccak"
	"github.com/smallyu/go-ethsig/internal/encoding/rlp"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// txFields returns the six payload fields shared by the unsigned and signed
// encodings.
func txFields(tx *ethsig.Transaction) []interface{} {
	to := tx.To
	if to == "" {
		to = "0x"
	}
	return []interface{}{
		tx.Nonce,
		bigOrZero(tx.GasPrice),
		tx.GasLimit,
		to,
		bigOrZero(tx.Value),
		tx.Data,
	}
}

// SignTransaction signs a legacy transaction deterministically. With a
// non-zero ChainID the signing payload carries [chainId, 0, 0] and v follows
// EIP-155; otherwise v is 27 or 28.
func SignTransaction(curve *curves.Curve, tx *ethsig.Transaction, privateKey []byte, logger *zap.Logger) (*ethsig.SignedTransaction, error) {
	fields := txFields(tx)

	opts := Options{Deterministic: true, Logger: logger}
	if tx.ChainID != 0 {
		chainID := tx.ChainID
		opts.ChainID = &chainID
	}

	raw, err := rlp.Encode(append(fields, tx.ChainID, uint64(0), uint64(0)))
	if err != nil {
		return nil, err
	}

	sig, err := Sign(curve, raw, privateKey, opts)
	if err != nil {
		return nil, err
	}

	signed, err := rlp.Encode(append(fields, sig.V, sig.R, sig.S))
	if err != nil {
		return nil, err
	}

	return &ethsig.SignedTransaction{
		Raw:       raw,
		Signed:    signed,
		Hash:      keccak.Sum256(signed),
		Signature: sig,
	}, nil
}
