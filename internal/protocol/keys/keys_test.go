package keys

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-ethsig/internal/crypto/curves"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

const (
	testKeyHex       = "044ce8e536ea4e4c61b42862bc98f8c574942fb77121e27f316cb15a96d9c99a"
	testCompressed   = "03e6159bb12479339ce9be03fa724f53692893e7c91de9be2c00ca8d554fca8f51"
	testUncompressed = "04e6159bb12479339ce9be03fa724f53692893e7c91de9be2c00ca8d554fca8f51" +
		"8cceae20d3126e2b0895a9073a918ee4bd1f5ff82f61c5cc2f99215412865c4d"
	testAddress = "0x0068D351c60f6326fd8a9508A6Fb17cF64461728"
	testTweak   = "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestPublicKey(t *testing.T) {
	c := curves.Secp256k1()

	pub, err := PublicKey(c, mustHex(t, testKeyHex))
	require.NoError(t, err)
	assert.Equal(t, testCompressed, hex.EncodeToString(pub))

	for i := 1; i < 16; i++ {
		key := bytes.Repeat([]byte{byte(i * 13)}, 32)
		_, want := btcec.PrivKeyFromBytes(key)

		got, err := PublicKey(c, key)
		require.NoError(t, err)
		assert.Equal(t, want.SerializeCompressed(), got)
	}
}

func TestPublicKeyErrors(t *testing.T) {
	c := curves.Secp256k1()

	for _, key := range [][]byte{
		nil,
		make([]byte, 31),
		make([]byte, 32),
		c.N.FillBytes(make([]byte, 32)),
		bytes.Repeat([]byte{0xff}, 32),
		append(make([]byte, 1), mustHex(t, testKeyHex)...),
	} {
		_, err := PublicKey(c, key)
		assert.True(t, errors.Is(err, ethsig.ErrInvalidPrivateKey), "key %x", key)
	}

	// n - 1 is the largest valid key.
	nMinus1 := new(big.Int).Sub(c.N, big.NewInt(1))
	_, err := PublicKey(c, nMinus1.FillBytes(make([]byte, 32)))
	assert.NoError(t, err)
}

func TestAddress(t *testing.T) {
	c := curves.Secp256k1()

	for _, pub := range []string{testCompressed, testUncompressed} {
		addr, err := Address(c, mustHex(t, pub))
		require.NoError(t, err)
		assert.Equal(t, testAddress, addr)
	}

	for i := 1; i < 8; i++ {
		key := bytes.Repeat([]byte{byte(i * 29)}, 32)
		priv, err := crypto.ToECDSA(key)
		require.NoError(t, err)

		pub, err := PublicKey(c, key)
		require.NoError(t, err)
		addr, err := Address(c, pub)
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(priv.PublicKey).Hex(), addr)
	}

	_, err := Address(c, mustHex(t, testCompressed)[:32])
	assert.True(t, errors.Is(err, ethsig.ErrInvalidPublicKey))
}

func TestPrivateAdd(t *testing.T) {
	c := curves.Secp256k1()
	key := mustHex(t, testKeyHex)

	got, err := PrivateAdd(c, key, mustHex(t, testTweak))
	require.NoError(t, err)
	assert.Equal(t, "054eebe93bf055546abe336ec9a707d585a642cb8637f9974a86cc76b3f7e8ba", hex.EncodeToString(got))

	// A zero tweak is the identity.
	got, err = PrivateAdd(c, key, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	// The sum wraps modulo n and stays 32 bytes.
	nMinus1 := new(big.Int).Sub(c.N, big.NewInt(1)).FillBytes(make([]byte, 32))
	got, err = PrivateAdd(c, nMinus1, []byte{2})
	require.NoError(t, err)
	assert.Len(t, got, 32)
	assert.Equal(t, big.NewInt(1), new(big.Int).SetBytes(got))
}

func TestPublicAdd(t *testing.T) {
	c := curves.Secp256k1()
	key := mustHex(t, testKeyHex)
	tweak := mustHex(t, testTweak)

	got, err := PublicAdd(c, mustHex(t, testCompressed), tweak)
	require.NoError(t, err)
	assert.Equal(t, "03863d51946b9bde80d87981559dd33ec86b1931da6e7f53113b12f89927158554", hex.EncodeToString(got))

	// Tweaking the public key matches tweaking the private key.
	priv, err := PrivateAdd(c, key, tweak)
	require.NoError(t, err)
	want, err := PublicKey(c, priv)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = PublicAdd(c, mustHex(t, testUncompressed), tweak)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTweakErrors(t *testing.T) {
	c := curves.Secp256k1()
	key := mustHex(t, testKeyHex)
	pub := mustHex(t, testCompressed)

	// n - d brings both keys to zero.
	negKey := new(big.Int).Sub(c.N, new(big.Int).SetBytes(key)).FillBytes(make([]byte, 32))
	nBytes := c.N.FillBytes(make([]byte, 32))

	_, err := PrivateAdd(c, key, nBytes)
	assert.True(t, errors.Is(err, ethsig.ErrTweakOutOfRange))
	_, err = PublicAdd(c, pub, nBytes)
	assert.True(t, errors.Is(err, ethsig.ErrTweakOutOfRange))

	_, err = PrivateAdd(c, key, negKey)
	assert.True(t, errors.Is(err, ethsig.ErrResultingKeyZero))

	// Known divergence: a sum at infinity is rejected rather than returned.
	_, err = PublicAdd(c, pub, negKey)
	assert.True(t, errors.Is(err, ethsig.ErrResultingKeyZero))

	_, err = PrivateAdd(c, make([]byte, 32), negKey)
	assert.True(t, errors.Is(err, ethsig.ErrInvalidPrivateKey))
	_, err = PublicAdd(c, pub[:10], negKey)
	assert.True(t, errors.Is(err, ethsig.ErrInvalidPublicKey))
}

func TestCompressDecompress(t *testing.T) {
	c := curves.Secp256k1()
	compressed := mustHex(t, testCompressed)
	uncompressed := mustHex(t, testUncompressed)

	got, err := Compress(c, uncompressed)
	require.NoError(t, err)
	assert.Equal(t, compressed, got)

	got, err = Compress(c, compressed)
	require.NoError(t, err)
	assert.Equal(t, compressed, got)

	got, err = Decompress(c, compressed)
	require.NoError(t, err)
	assert.Equal(t, uncompressed, got)

	btcPub, err := btcec.ParsePubKey(compressed)
	require.NoError(t, err)
	assert.Equal(t, btcPub.SerializeUncompressed(), got)

	bad := append([]byte(nil), uncompressed...)
	bad[64]++
	_, err = Compress(c, bad)
	assert.True(t, errors.Is(err, ethsig.ErrInvalidPublicKey))
	assert.True(t, errors.Is(err, ethsig.ErrPointNotOnCurve))

	_, err = Decompress(c, []byte{0x02})
	assert.True(t, errors.Is(err, ethsig.ErrInvalidPublicKey))
	assert.True(t, errors.Is(err, ethsig.ErrInvalidEncoding))
}
