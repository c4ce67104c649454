// Package bridge exposes the signer through JSON-in, JSON-out calls for
// hosts that cannot share Go types, such as the WebAssembly build.
//
// Big integers and byte strings cross the boundary as 0x-prefixed hex so
// JavaScript never has to round them through float64.
package bridge

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/smallyu/go-ethsig/pkg/ethsig"
	"github.com/smallyu/go-ethsig/pkg/signer"
)

// SignatureDTO is the JSON form of ethsig.Signature.
type SignatureDTO struct {
	V uint64 `json:"v"`
	R string `json:"r"`
	S string `json:"s"`
}

// SignRequest is the input of Sign.
type SignRequest struct {
	PrivateKey string  `json:"privateKey"`
	Message    string  `json:"message"`
	Hex        bool    `json:"hex"`
	NoPrefix   bool    `json:"noPrefix"`
	Random     bool    `json:"random"`
	ChainID    *uint64 `json:"chainId"`
}

// VerifyRequest is the input of Verify and Recover. PublicKey is ignored by
// Recover.
type VerifyRequest struct {
	PublicKey string       `json:"publicKey"`
	Message   string       `json:"message"`
	Hex       bool         `json:"hex"`
	NoPrefix  bool         `json:"noPrefix"`
	Signature SignatureDTO `json:"signature"`
}

// TransactionRequest is the input of SignTransaction.
type TransactionRequest struct {
	PrivateKey string `json:"privateKey"`
	Nonce      uint64 `json:"nonce"`
	GasPrice   string `json:"gasPrice"`
	GasLimit   uint64 `json:"gasLimit"`
	To         string `json:"to"`
	Value      string `json:"value"`
	Data       string `json:"data"`
	ChainID    uint64 `json:"chainId"`
}

// Bridge decodes JSON requests and runs them against a Signer.
type Bridge struct {
	signer *signer.Signer
}

// New returns a Bridge over s, or signer.Default when s is nil.
func New(s *signer.Signer) *Bridge {
	if s == nil {
		s = signer.Default
	}
	return &Bridge{signer: s}
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	return b, errors.Wrapf(err, "invalid hex %q", s)
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func decodeBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

func message(msg string, isHex bool) ([]byte, error) {
	if isHex {
		return decodeHex(msg)
	}
	return []byte(msg), nil
}

func (d SignatureDTO) signature() (*ethsig.Signature, error) {
	r, err := decodeHex(d.R)
	if err != nil {
		return nil, err
	}
	s, err := decodeHex(d.S)
	if err != nil {
		return nil, err
	}
	return &ethsig.Signature{V: d.V, R: new(big.Int).SetBytes(r), S: new(big.Int).SetBytes(s)}, nil
}

func newSignatureDTO(sig *ethsig.Signature) SignatureDTO {
	b := sig.Bytes()
	return SignatureDTO{V: sig.V, R: encodeHex(b[:32]), S: encodeHex(b[32:64])}
}

func marshal(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// PublicKey returns {"publicKey", "address"} for a hex private key.
func (b *Bridge) PublicKey(privateKey string) (string, error) {
	key, err := decodeHex(privateKey)
	if err != nil {
		return "", err
	}
	pub, err := b.signer.PublicKey(key)
	if err != nil {
		return "", err
	}
	addr, err := b.signer.Address(pub)
	if err != nil {
		return "", err
	}
	return marshal(map[string]string{"publicKey": encodeHex(pub), "address": addr})
}

// Address returns {"address"} for a hex public key.
func (b *Bridge) Address(publicKey string) (string, error) {
	pub, err := decodeHex(publicKey)
	if err != nil {
		return "", err
	}
	addr, err := b.signer.Address(pub)
	if err != nil {
		return "", err
	}
	return marshal(map[string]string{"address": addr})
}

// Sign takes a SignRequest and returns a SignatureDTO.
func (b *Bridge) Sign(request string) (string, error) {
	var req SignRequest
	if err := json.Unmarshal([]byte(request), &req); err != nil {
		return "", errors.Wrap(err, "invalid sign request")
	}
	key, err := decodeHex(req.PrivateKey)
	if err != nil {
		return "", err
	}
	msg, err := message(req.Message, req.Hex)
	if err != nil {
		return "", err
	}

	var opts []signer.CallOption
	if req.NoPrefix {
		opts = append(opts, signer.WithoutPrefix())
	}
	if req.Random {
		opts = append(opts, signer.Randomized())
	}
	if req.ChainID != nil {
		opts = append(opts, signer.WithChainID(*req.ChainID))
	}

	sig, err := b.signer.Sign(msg, key, opts...)
	if err != nil {
		return "", err
	}
	return marshal(newSignatureDTO(sig))
}

func (req *VerifyRequest) decode(request string) ([]byte, *ethsig.Signature, []signer.CallOption, error) {
	if err := json.Unmarshal([]byte(request), req); err != nil {
		return nil, nil, nil, errors.Wrap(err, "invalid request")
	}
	msg, err := message(req.Message, req.Hex)
	if err != nil {
		return nil, nil, nil, err
	}
	sig, err := req.Signature.signature()
	if err != nil {
		return nil, nil, nil, err
	}
	var opts []signer.CallOption
	if req.NoPrefix {
		opts = append(opts, signer.WithoutPrefix())
	}
	return msg, sig, opts, nil
}

// Verify takes a VerifyRequest and returns {"valid"}.
func (b *Bridge) Verify(request string) (string, error) {
	var req VerifyRequest
	msg, sig, opts, err := req.decode(request)
	if err != nil {
		return "", err
	}
	pub, err := decodeHex(req.PublicKey)
	if err != nil {
		return "", err
	}
	ok, err := b.signer.Verify(msg, sig, pub, opts...)
	if err != nil {
		return "", err
	}
	return marshal(map[string]bool{"valid": ok})
}

// Recover takes a VerifyRequest and returns {"publicKey", "address"}.
func (b *Bridge) Recover(request string) (string, error) {
	var req VerifyRequest
	msg, sig, opts, err := req.decode(request)
	if err != nil {
		return "", err
	}
	pub, err := b.signer.RecoverPublicKey(msg, sig, opts...)
	if err != nil {
		return "", err
	}
	addr, err := b.signer.Address(pub)
	if err != nil {
		return "", err
	}
	return marshal(map[string]string{"publicKey": encodeHex(pub), "address": addr})
}

// SignTransaction takes a TransactionRequest and returns the raw and signed
// encodings, the transaction hash and the signature.
func (b *Bridge) SignTransaction(request string) (string, error) {
	var req TransactionRequest
	if err := json.Unmarshal([]byte(request), &req); err != nil {
		return "", errors.Wrap(err, "invalid transaction request")
	}
	key, err := decodeHex(req.PrivateKey)
	if err != nil {
		return "", err
	}
	gasPrice, err := decodeBig(req.GasPrice)
	if err != nil {
		return "", err
	}
	value, err := decodeBig(req.Value)
	if err != nil {
		return "", err
	}
	data, err := decodeHex(req.Data)
	if err != nil {
		return "", err
	}

	signed, err := b.signer.SignTransaction(&ethsig.Transaction{
		Nonce:    req.Nonce,
		GasPrice: gasPrice,
		GasLimit: req.GasLimit,
		To:       req.To,
		Value:    value,
		Data:     data,
		ChainID:  req.ChainID,
	}, key)
	if err != nil {
		return "", err
	}
	return marshal(map[string]interface{}{
		"raw":       encodeHex(signed.Raw),
		"signed":    encodeHex(signed.Signed),
		"hash":      encodeHex(signed.Hash),
		"signature": newSignatureDTO(signed.Signature),
	})
}
