// Package rlp implements the encoding half of Ethereum's Recursive Length
// Prefix serialization.
//
// Supported items are []byte, string (0x-prefixed hex, otherwise UTF-8),
// non-negative integers of any built-in width, *big.Int, and []interface{}
// lists whose elements are themselves items.
package rlp

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

const (
	offsetString = 0x80
	offsetList   = 0xc0

	// shortLimit is the largest payload length encoded in the header byte
	// itself.
	shortLimit = 55
	// maxLengthBytes is the largest number of bytes a long-form length may
	// occupy.
	maxLengthBytes = 8
)

// Encode returns the RLP encoding of item.
func Encode(item interface{}) ([]byte, error) {
	if list, ok := item.([]interface{}); ok {
		var payload []byte
		for i, elem := range list {
			b, err := Encode(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			payload = append(payload, b...)
		}
		return withHeader(payload, offsetList)
	}

	b, err := toBytes(item)
	if err != nil {
		return nil, err
	}
	if len(b) == 1 && b[0] < offsetString {
		return b, nil
	}
	return withHeader(b, offsetString)
}

// MustEncode is like Encode but panics on error. It is intended for items
// built from fixed, known-good values.
func MustEncode(item interface{}) []byte {
	b, err := Encode(item)
	if err != nil {
		panic(err)
	}
	return b
}

func withHeader(payload []byte, offset byte) ([]byte, error) {
	header, err := encodeLength(uint64(len(payload)), offset)
	if err != nil {
		return nil, err
	}
	return append(header, payload...), nil
}

// encodeLength returns the header for a payload of the given length.
func encodeLength(length uint64, offset byte) ([]byte, error) {
	if length <= shortLimit {
		return []byte{offset + byte(length)}, nil
	}

	lengthBytes := uintBytes(length)
	if len(lengthBytes) > maxLengthBytes {
		return nil, ethsig.NewError(ethsig.ErrInputTooLong, "rlp: input is too long")
	}
	return append([]byte{offset + shortLimit + byte(len(lengthBytes))}, lengthBytes...), nil
}

// uintBytes returns the minimal big-endian encoding of v; zero is empty.
func uintBytes(v uint64) []byte {
	var b []byte
	for ; v > 0; v >>= 8 {
		b = append([]byte{byte(v)}, b...)
	}
	return b
}

func toBytes(item interface{}) ([]byte, error) {
	switch v := item.(type) {
	case []byte:
		return v, nil
	case string:
		return stringBytes(v)
	case *big.Int:
		if v == nil {
			return nil, nil
		}
		if v.Sign() < 0 {
			return nil, invalidItem("negative integer %s", v)
		}
		return v.Bytes(), nil
	case uint:
		return uintBytes(uint64(v)), nil
	case uint8:
		return uintBytes(uint64(v)), nil
	case uint16:
		return uintBytes(uint64(v)), nil
	case uint32:
		return uintBytes(uint64(v)), nil
	case uint64:
		return uintBytes(v), nil
	case int:
		return intBytes(int64(v))
	case int8:
		return intBytes(int64(v))
	case int16:
		return intBytes(int64(v))
	case int32:
		return intBytes(int64(v))
	case int64:
		return intBytes(v)
	case nil:
		return nil, nil
	}
	return nil, invalidItem("unsupported type %T", item)
}

func intBytes(v int64) ([]byte, error) {
	if v < 0 {
		return nil, invalidItem("negative integer %d", v)
	}
	return uintBytes(uint64(v)), nil
}

func stringBytes(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return []byte(s), nil
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, invalidItem("invalid hex string %q", s)
	}
	return b, nil
}

func invalidItem(format string, args ...interface{}) error {
	return ethsig.NewError(ethsig.ErrInvalidRLPItem, "rlp: "+fmt.Sprintf(format, args...))
}
