package signer

import (
	"io"

	"go.uber.org/zap"

	"github.com/smallyu/go-ethsig/internal/protocol/ecdsa"
)

// Option configures a Signer.
type Option func(*Signer)

// WithLogger sets the logger used for signing diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Signer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandom sets the randomness source for randomized signing.
func WithRandom(random io.Reader) Option {
	return func(s *Signer) {
		s.random = random
	}
}

// CallOption adjusts a single Sign, Verify or Recover call.
type CallOption func(*ecdsa.Options)

// Randomized draws the nonce from the Signer's randomness source instead of
// RFC6979.
func Randomized() CallOption {
	return func(o *ecdsa.Options) {
		o.Deterministic = false
	}
}

// WithoutPrefix hashes the raw message instead of the eth_sign form.
func WithoutPrefix() CallOption {
	return func(o *ecdsa.Options) {
		o.Prefix = false
	}
}

// WithChainID encodes v following EIP-155. It only affects signing.
func WithChainID(id uint64) CallOption {
	return func(o *ecdsa.Options) {
		o.ChainID = &id
	}
}
