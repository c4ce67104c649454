// Package modular implements arithmetic over the integers modulo m, where m is
// either the field prime p or the group order n of a curve. Every result is
// canonically reduced into [0, m).
package modular

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

// randomWidth is the number of random bytes reduced by RandomScalar. 64 bytes
// for a 256-bit modulus keeps the reduction bias below 2^-256.
const randomWidth = 64

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// Reduce returns ((x mod m) + m) mod m, which is always in [0, m).
func Reduce(m, x *big.Int) *big.Int {
	// big.Int.Mod already implements Euclidean modulus, so the result is
	// non-negative for a positive m even when x is negative.
	return new(big.Int).Mod(x, m)
}

// Add returns a + b mod m.
func Add(m, a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, m)
}

// Sub returns a - b mod m.
func Sub(m, a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, m)
}

// Mul returns a * b mod m.
func Mul(m, a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, m)
}

// Neg returns -a mod m.
func Neg(m, a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, m)
}

// Pow returns base^exp mod m using square-and-multiply over the bits of exp.
// exp must not be negative.
func Pow(m, base, exp *big.Int) *big.Int {
	if exp.Sign() < 0 {
		panic("modular: negative exponent")
	}

	result := new(big.Int).Mod(one, m)
	b := Reduce(m, base)
	for i := 0; i < exp.BitLen(); i++ {
		if b.Sign() == 0 {
			return new(big.Int)
		}
		if exp.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, m)
		}
		b.Mul(b, b)
		b.Mod(b, m)
	}
	return result
}

// Inverse returns the inverse of a modulo m, computed with the extended
// Euclidean algorithm. It fails with ErrNoInverse when gcd(a, m) != 1, which
// includes a ≡ 0.
func Inverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ethsig.NewError(ethsig.ErrNoInverse, "modulus must be positive")
	}

	// Invariants: oldR = oldS*a (mod m), r = s*a (mod m).
	oldR, r := Reduce(m, a), new(big.Int).Set(m)
	oldS, s := big.NewInt(1), big.NewInt(0)
	q, tmp := new(big.Int), new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, tmp.Sub(oldR, tmp)
		tmp = new(big.Int)

		tmp.Mul(q, s)
		oldS, s = s, tmp.Sub(oldS, tmp)
		tmp = new(big.Int)
	}

	if oldR.Cmp(one) != 0 {
		return nil, ethsig.NewError(ethsig.ErrNoInverse, "modular inverse does not exist")
	}
	return Reduce(m, oldS), nil
}

// Divide returns a / b mod m as a * b^(m-2) mod m. It is only valid for a
// prime m. Division by zero fails with ErrNoInverse.
func Divide(m, a, b *big.Int) (*big.Int, error) {
	if Reduce(m, b).Sign() == 0 {
		return nil, ethsig.NewError(ethsig.ErrNoInverse, "division by zero")
	}

	bInv := Pow(m, b, new(big.Int).Sub(m, two))
	return Mul(m, a, bInv), nil
}

// SquareRoots returns both square roots of v modulo p as (r, p-r), where
// r = v^((p+1)/4). It requires p ≡ 3 (mod 4) and fails with
// ErrNotAQuadraticResidue when v has no square root.
func SquareRoots(p, v *big.Int) (*big.Int, *big.Int, error) {
	if new(big.Int).Mod(p, four).Cmp(three) != 0 {
		return nil, nil, ethsig.NewError(ethsig.ErrNotAQuadraticResidue,
			"square roots require p ≡ 3 mod 4")
	}

	// Euler's criterion: v^((p-1)/2) = 1 exactly when v is a non-zero square.
	legendre := new(big.Int).Sub(p, one)
	legendre.Rsh(legendre, 1)
	if Pow(p, v, legendre).Cmp(one) != 0 {
		return nil, nil, ethsig.NewError(ethsig.ErrNotAQuadraticResidue,
			"value is not a quadratic residue")
	}

	exp := new(big.Int).Add(p, one)
	exp.Rsh(exp, 2)
	root := Pow(p, v, exp)
	return root, new(big.Int).Sub(p, root), nil
}

// RandomScalar returns a uniformly distributed integer in [0, n) by reducing
// 64 bytes read from random. A nil random uses crypto/rand.Reader.
func RandomScalar(random io.Reader, n *big.Int) (*big.Int, error) {
	if random == nil {
		random = rand.Reader
	}

	var buf [randomWidth]byte
	if _, err := io.ReadFull(random, buf[:]); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf[:])
	return v.Mod(v, n), nil
}

// IsZero reports whether x ≡ 0 (mod m).
func IsZero(m, x *big.Int) bool {
	return Reduce(m, x).Cmp(zero) == 0
}
