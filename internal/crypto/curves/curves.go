package curves

import (
	"io"
	"math/big"

	"github.com/smallyu/go-ethsig/internal/crypto/modular"
	"github.com/smallyu/go-ethsig/pkg/ethsig"
)

// Serialization prefixes for public keys.
const (
	PubKeyCompressedEven byte = 0x02
	PubKeyCompressedOdd  byte = 0x03
	PubKeyUncompressed   byte = 0x04

	fieldBytes = 32
)

// Curve holds the parameters of a short Weierstrass curve y^2 = x^3 + ax + b
// over the prime field P, with base point G of prime order N. A Curve is
// never mutated after construction.
type Curve struct {
	Name string
	P    *big.Int
	A    *big.Int
	B    *big.Int
	N    *big.Int
	G    Point
}

// Point is an affine point. The group identity is represented with Infinity
// set, in which case X and Y are ignored.
type Point struct {
	X, Y     *big.Int
	Infinity bool
}

func fromHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curves: invalid constant " + s)
	}
	return v
}

// Secp256k1 returns the parameters of the secp256k1 curve.
func Secp256k1() *Curve {
	return &Curve{
		Name: "secp256k1",
		P:    fromHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
		A:    big.NewInt(0),
		B:    big.NewInt(7),
		N:    fromHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"),
		G: Point{
			X: fromHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
			Y: fromHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"),
		},
	}
}

// Infinity returns the group identity.
func Infinity() Point {
	return Point{Infinity: true}
}

// NewPoint returns the affine point (x, y) without checking it is on a curve.
func NewPoint(x, y *big.Int) Point {
	return Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Polynomial evaluates x^3 + ax + b mod p.
func (c *Curve) Polynomial(x *big.Int) *big.Int {
	x3 := modular.Pow(c.P, x, big.NewInt(3))
	ax := modular.Mul(c.P, c.A, x)
	return modular.Add(c.P, modular.Add(c.P, x3, ax), c.B)
}

// IsOnCurve reports whether p satisfies the curve equation. The identity is
// considered on the curve.
func (c *Curve) IsOnCurve(p Point) bool {
	if p.Infinity {
		return true
	}
	if p.X.Sign() < 0 || p.X.Cmp(c.P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(c.P) >= 0 {
		return false
	}
	y2 := modular.Mul(c.P, p.Y, p.Y)
	return y2.Cmp(c.Polynomial(p.X)) == 0
}

// Negate returns -p.
func (c *Curve) Negate(p Point) Point {
	if p.Infinity {
		return p
	}
	return Point{X: new(big.Int).Set(p.X), Y: modular.Neg(c.P, p.Y)}
}

// Double returns p + p.
func (c *Curve) Double(p Point) Point {
	return c.Add(p, p)
}

// Add returns p + q using the affine chord-and-tangent rules.
func (c *Curve) Add(p, q Point) Point {
	if p.Infinity {
		return q
	}
	if q.Infinity {
		return p
	}

	var lambda *big.Int
	if p.X.Cmp(q.X) == 0 {
		// Either q = -p, or q = p with y = 0; both sum to the identity.
		if modular.Add(c.P, p.Y, q.Y).Sign() == 0 {
			return Infinity()
		}
		// Tangent: (3x^2 + a) / 2y
		num := modular.Mul(c.P, big.NewInt(3), modular.Mul(c.P, p.X, p.X))
		num = modular.Add(c.P, num, c.A)
		den := modular.Mul(c.P, big.NewInt(2), p.Y)
		lambda = mustDivide(c.P, num, den)
	} else {
		// Chord: (y2 - y1) / (x2 - x1)
		num := modular.Sub(c.P, q.Y, p.Y)
		den := modular.Sub(c.P, q.X, p.X)
		lambda = mustDivide(c.P, num, den)
	}

	x3 := modular.Sub(c.P, modular.Sub(c.P, modular.Mul(c.P, lambda, lambda), p.X), q.X)
	y3 := modular.Sub(c.P, modular.Mul(c.P, lambda, modular.Sub(c.P, p.X, x3)), p.Y)
	return Point{X: x3, Y: y3}
}

// mustDivide is only called with a non-zero divisor: the cases that would
// divide by zero are handled by Add before reaching it.
func mustDivide(m, a, b *big.Int) *big.Int {
	q, err := modular.Divide(m, a, b)
	if err != nil {
		panic(err)
	}
	return q
}

// ScalarMult returns k * p using MSB-first double-and-add. k is reduced
// modulo N first, so a zero (or multiple of N) scalar yields the identity.
func (c *Curve) ScalarMult(p Point, k *big.Int) Point {
	k = modular.Reduce(c.N, k)
	result := Infinity()
	if p.Infinity || k.Sign() == 0 {
		return result
	}
	for i := k.BitLen() - 1; i >= 0; i-- {
		result = c.Double(result)
		if k.Bit(i) == 1 {
			result = c.Add(result, p)
		}
	}
	return result
}

// ScalarBaseMult returns k * G.
func (c *Curve) ScalarBaseMult(k *big.Int) Point {
	return c.ScalarMult(c.G, k)
}

// NewScalar returns a random scalar in [0, N). A nil random uses
// crypto/rand.
func (c *Curve) NewScalar(random io.Reader) (*big.Int, error) {
	return modular.RandomScalar(random, c.N)
}

// Marshal serializes p as 0x02/0x03 ‖ X when compressed, or 0x04 ‖ X ‖ Y.
func (c *Curve) Marshal(p Point, compressed bool) ([]byte, error) {
	if p.Infinity {
		return nil, ethsig.NewError(ethsig.ErrPointAtInfinity,
			"cannot serialize the point at infinity")
	}

	if compressed {
		b := make([]byte, 1+fieldBytes)
		b[0] = PubKeyCompressedEven
		if p.Y.Bit(0) == 1 {
			b[0] = PubKeyCompressedOdd
		}
		p.X.FillBytes(b[1:])
		return b, nil
	}

	b := make([]byte, 1+2*fieldBytes)
	b[0] = PubKeyUncompressed
	p.X.FillBytes(b[1 : 1+fieldBytes])
	p.Y.FillBytes(b[1+fieldBytes:])
	return b, nil
}

// Unmarshal parses a compressed (33 byte) or uncompressed (65 byte) point.
func (c *Curve) Unmarshal(b []byte) (Point, error) {
	switch {
	case len(b) == 1+fieldBytes && (b[0] == PubKeyCompressedEven || b[0] == PubKeyCompressedOdd):
		x := new(big.Int).SetBytes(b[1:])
		if x.Cmp(c.P) >= 0 {
			return Point{}, ethsig.NewError(ethsig.ErrInvalidEncoding,
				"x coordinate is not a field element")
		}
		p, err := c.PointFromX(x, b[0] == PubKeyCompressedOdd)
		if err != nil {
			return Point{}, err
		}
		return p, nil

	case len(b) == 1+2*fieldBytes && b[0] == PubKeyUncompressed:
		x := new(big.Int).SetBytes(b[1 : 1+fieldBytes])
		y := new(big.Int).SetBytes(b[1+fieldBytes:])
		if x.Cmp(c.P) >= 0 || y.Cmp(c.P) >= 0 {
			return Point{}, ethsig.NewError(ethsig.ErrInvalidEncoding,
				"coordinate is not a field element")
		}
		p := Point{X: x, Y: y}
		if !c.IsOnCurve(p) {
			return Point{}, ethsig.NewError(ethsig.ErrPointNotOnCurve,
				"point does not satisfy the curve equation")
		}
		return p, nil
	}

	return Point{}, ethsig.NewError(ethsig.ErrInvalidEncoding,
		"unsupported point encoding")
}

// PointFromX returns the point with the given x coordinate whose y parity
// matches odd. It fails with ErrNotAQuadraticResidue when no such point
// exists.
func (c *Curve) PointFromX(x *big.Int, odd bool) (Point, error) {
	y, yNeg, err := modular.SquareRoots(c.P, c.Polynomial(x))
	if err != nil {
		return Point{}, err
	}
	if (y.Bit(0) == 1) != odd {
		y = yNeg
	}
	return Point{X: modular.Reduce(c.P, x), Y: y}, nil
}
