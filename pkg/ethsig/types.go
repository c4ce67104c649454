package ethsig

import (
	"fmt"
	"math/big"
)

// Signature is an extended ECDSA signature {r, s, v}. V carries the recovery
// code plus either the legacy offset 27 or the EIP-155 offset chainId*2+35.
type Signature struct {
	V uint64
	R *big.Int
	S *big.Int
}

// Bytes returns r and s as 32-byte big-endian values followed by v truncated
// to one byte, the layout used by eth_sign.
func (sig *Signature) Bytes() []byte {
	b := make([]byte, 65)
	sig.R.FillBytes(b[:32])
	sig.S.FillBytes(b[32:64])
	b[64] = byte(sig.V)
	return b
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature{v: %d, r: %#x, s: %#x}", sig.V, sig.R, sig.S)
}

// Transaction is a legacy Ethereum transaction. To is a 0x-prefixed hex
// address, or empty for contract creation. A zero ChainID signs without
// EIP-155 replay protection.
type Transaction struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       string
	Value    *big.Int
	Data     []byte
	ChainID  uint64
}

// SignedTransaction is the result of signing a Transaction.
type SignedTransaction struct {
	Raw       []byte     // RLP of the unsigned payload that was signed
	Signed    []byte     // RLP of the signed transaction, ready for broadcast
	Hash      []byte     // Keccak-256 of Signed
	Signature *Signature // The signature over Keccak-256(Raw)
}
