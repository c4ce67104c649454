package benchmark

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decredecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/smallyu/go-ethsig/internal/crypto/curves"
	"github.com/smallyu/go-ethsig/internal/crypto/rfc6979"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
	"github.com/smallyu/go-ethsig/pkg/signer"
)

var (
	benchKey = bytes.Repeat([]byte{0x46}, 32)
	benchMsg = []byte("benchmark message")
)

func BenchmarkScalarBaseMult(b *testing.B) {
	c := curves.Secp256k1()
	k := new(big.Int).SetBytes(benchKey)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ScalarBaseMult(k)
	}
}

func BenchmarkScalarBaseMultDecred(b *testing.B) {
	var k secp256k1.ModNScalar
	k.SetByteSlice(benchKey)
	var r secp256k1.JacobianPoint

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		secp256k1.ScalarBaseMultNonConst(&k, &r)
	}
}

func BenchmarkGenerateK(b *testing.B) {
	c := curves.Secp256k1()
	hash := bytes.Repeat([]byte{0xab}, 32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rfc6979.GenerateK(hash, benchKey, c.N, 0)
	}
}

func BenchmarkSign(b *testing.B) {
	s := signer.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Sign(benchMsg, benchKey); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSignRandomized(b *testing.B) {
	s := signer.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Sign(benchMsg, benchKey, signer.Randomized()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSignDecred(b *testing.B) {
	priv := secp256k1.PrivKeyFromBytes(benchKey)
	hash := signer.Default.HashMessage(benchMsg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		decredecdsa.SignCompact(priv, hash, false)
	}
}

func BenchmarkVerify(b *testing.B) {
	s := signer.New()
	sig, pub := signed(b, s)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ok, err := s.Verify(benchMsg, sig, pub); err != nil || !ok {
			b.Fatal("verification failed", err)
		}
	}
}

func BenchmarkRecover(b *testing.B) {
	s := signer.New()
	sig, _ := signed(b, s)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Recover(benchMsg, sig); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSignTransaction(b *testing.B) {
	s := signer.New()
	tx := &ethsig.Transaction{
		Nonce:    9,
		GasPrice: big.NewInt(20000000000),
		GasLimit: 21000,
		To:       "0x3535353535353535353535353535353535353535",
		Value:    big.NewInt(1000000000000000000),
		ChainID:  1,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SignTransaction(tx, benchKey); err != nil {
			b.Fatal(err)
		}
	}
}

func signed(b *testing.B, s *signer.Signer) (*ethsig.Signature, []byte) {
	b.Helper()
	sig, err := s.Sign(benchMsg, benchKey)
	if err != nil {
		b.Fatal(err)
	}
	pub, err := s.PublicKey(benchKey)
	if err != nil {
		b.Fatal(err)
	}
	return sig, pub
}
