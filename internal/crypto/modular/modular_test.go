package modular

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

var (
	secp256k1P = hexInt("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	secp256k1N = hexInt("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

	testA = decInt("40920663801924305269653119115551778679508146584746982050198744783328810683478")
	testB = decInt("57644217303653297295043885393981736616586573165163091864015052012599672961081")
)

func hexInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in test: " + s)
	}
	return v
}

func decInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid decimal in test: " + s)
	}
	return v
}

func TestReduce(t *testing.T) {
	assert.Equal(t, testA, Reduce(secp256k1P, testA))
	assert.Equal(t, testB, Reduce(secp256k1P, testB))

	// Negative inputs wrap to the top of the range.
	want := new(big.Int).Sub(secp256k1P, big.NewInt(5))
	assert.Equal(t, want, Reduce(secp256k1P, big.NewInt(-5)))

	// Values above the modulus are folded back.
	over := new(big.Int).Add(secp256k1P, big.NewInt(9))
	assert.Equal(t, big.NewInt(9), Reduce(secp256k1P, over))
	assert.Equal(t, 0, Reduce(secp256k1P, secp256k1P).Sign())
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  *big.Int
		want string
	}{
		{"A+A", Add(secp256k1P, testA, testA), "81841327603848610539306238231103557359016293169493964100397489566657621366956"},
		{"B+B", Add(secp256k1P, testB, testB), "115288434607306594590087770787963473233173146330326183728030104025199345922162"},
		{"A-B", Sub(secp256k1P, testA, testB), "99068535735587203398180218730257949916191558085224454225641276778637972394060"},
		{"B-A", Sub(secp256k1P, testB, testA), "16723553501728992025390766278429957937078426580416109813816307229270862277603"},
		{"A*A", Mul(secp256k1P, testA, testA), "60348372934273279971993986630834708629578564491747142757764073437455044124652"},
		{"B*B", Mul(secp256k1P, testB, testB), "93635177522471094108898156822137863960278456457190592348354738112580645053712"},
		{"A^B", Pow(secp256k1P, testA, testB), "45154261507711685768830239628328808171904190663195061380145420756885665970304"},
		{"B^A", Pow(secp256k1P, testB, testA), "12259513326771245646783968873923369955705799639898792721622882367719141774688"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, decInt(tt.want), tt.got)
		})
	}
}

func TestDivide(t *testing.T) {
	q, err := Divide(secp256k1P, testA, testB)
	require.NoError(t, err)
	assert.Equal(t, decInt("71865970237313792670820027288162572879926887829139724320463362393064574103635"), q)

	q, err = Divide(secp256k1P, testB, testA)
	require.NoError(t, err)
	assert.Equal(t, decInt("6678908264677100300883728556498058927887627544987573873849581526879372898940"), q)

	// (a / b) * b == a
	assert.Equal(t, testA, Mul(secp256k1P, mustInt(Divide(secp256k1P, testA, testB)), testB))

	_, err = Divide(secp256k1P, testA, secp256k1P)
	assert.True(t, errors.Is(err, ethsig.ErrNoInverse))
}

func TestPow(t *testing.T) {
	assert.Equal(t, 0, Pow(secp256k1P, big.NewInt(0), testA).Sign())
	assert.Equal(t, 0, Pow(secp256k1P, big.NewInt(0), testB).Sign())
	assert.Equal(t, big.NewInt(1), Pow(secp256k1P, testA, big.NewInt(0)))
	assert.Equal(t, big.NewInt(1024), Pow(secp256k1P, big.NewInt(2), big.NewInt(10)))

	// Cross-check against math/big on the order as modulus.
	want := new(big.Int).Exp(testA, testB, secp256k1N)
	assert.Equal(t, want, Pow(secp256k1N, testA, testB))

	assert.Panics(t, func() { Pow(secp256k1P, testA, big.NewInt(-1)) })
}

func TestInverse(t *testing.T) {
	inv, err := Inverse(big.NewInt(564), big.NewInt(41621))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7601), inv)

	inv, err = Inverse(testA, secp256k1N)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).ModInverse(testA, secp256k1N), inv)

	// Negative input is reduced first.
	inv, err = Inverse(big.NewInt(-564), big.NewInt(41621))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(41621-7601), inv)

	tests := []struct {
		name string
		a, m *big.Int
	}{
		{"zero", big.NewInt(0), big.NewInt(41621)},
		{"multiple of modulus", secp256k1N, secp256k1N},
		{"common factor", big.NewInt(6), big.NewInt(9)},
		{"zero modulus", big.NewInt(3), big.NewInt(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inverse(tt.a, tt.m)
			assert.True(t, errors.Is(err, ethsig.ErrNoInverse), "got %v", err)
		})
	}
}

func TestSquareRoots(t *testing.T) {
	r1, r2, err := SquareRoots(secp256k1P, testA)
	require.NoError(t, err)
	assert.Equal(t, decInt("36080975185544999343184031379027371578077336573858544356477955434911939012222"), r1)
	assert.Equal(t, decInt("79711114051771196080386953629660536275192648091782019682979628572996895659441"), r2)
	assert.Equal(t, testA, Mul(secp256k1P, r1, r1))
	assert.Equal(t, testA, Mul(secp256k1P, r2, r2))

	_, _, err = SquareRoots(secp256k1P, testB)
	assert.True(t, errors.Is(err, ethsig.ErrNotAQuadraticResidue))

	// 13 ≡ 1 (mod 4) is not supported.
	_, _, err = SquareRoots(big.NewInt(13), big.NewInt(4))
	assert.True(t, errors.Is(err, ethsig.ErrNotAQuadraticResidue))
}

func TestRandomScalar(t *testing.T) {
	for i := 0; i < 32; i++ {
		k, err := RandomScalar(nil, secp256k1N)
		require.NoError(t, err)
		assert.True(t, k.Sign() >= 0 && k.Cmp(secp256k1N) < 0)
	}

	// A fixed reader gives the reduced 64-byte value.
	src := bytes.Repeat([]byte{0xff}, randomWidth)
	k, err := RandomScalar(bytes.NewReader(src), big.NewInt(1000))
	require.NoError(t, err)
	want := new(big.Int).Mod(new(big.Int).SetBytes(src), big.NewInt(1000))
	assert.Equal(t, want, k)

	// Short reads surface as errors.
	_, err = RandomScalar(bytes.NewReader(src[:10]), secp256k1N)
	assert.Error(t, err)
}

func mustInt(v *big.Int, err error) *big.Int {
	if err != nil {
		panic(err)
	}
	return v
}
