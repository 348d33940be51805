// Package field implements arithmetic modulo a fixed prime.
package field

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/Davincible/shamirstore/pkg/errkind"
)

var (
	ErrNotInvertible = errkind.New(errkind.Value, "element has no inverse")
	ErrInvalidPrime  = errkind.New(errkind.Value, "modulus must be a prime greater than 2")
)

// mersenne127 is 2^127 - 1, the modulus used for prime-field secret sharing.
var mersenne127 = mustField(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)))

// Field is the set of integers modulo a prime p. The modulus is copied on
// construction and never exposed for mutation.
type Field struct {
	p *big.Int
}

// Mersenne127 returns the field of integers modulo 2^127 - 1.
func Mersenne127() *Field {
	return mersenne127
}

// New returns the field modulo p. p must be prime; primality is checked
// probabilistically.
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(big.NewInt(3)) < 0 || !p.ProbablyPrime(32) {
		return nil, ErrInvalidPrime
	}
	return &Field{p: new(big.Int).Set(p)}, nil
}

func mustField(p *big.Int) *Field {
	f, err := New(p)
	if err != nil {
		panic(fmt.Sprintf("field: %v", err))
	}
	return f
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// BitLen is the bit width of the modulus.
func (f *Field) BitLen() int {
	return f.p.BitLen()
}

// ByteLen is the number of bytes needed to hold any element.
func (f *Field) ByteLen() int {
	return (f.p.BitLen() + 7) / 8
}

// Contains reports whether 0 <= a < p.
func (f *Field) Contains(a *big.Int) bool {
	return a != nil && a.Sign() >= 0 && a.Cmp(f.p) < 0
}

// Reduce maps any integer into [0, p).
func (f *Field) Reduce(a *big.Int) *big.Int {
	// big.Int.Mod is Euclidean, so the result is never negative.
	return new(big.Int).Mod(a, f.p)
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, f.p)
}

// Sub returns (a - b + p) mod p.
func (f *Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(f.Reduce(a), f.Reduce(b))
	r.Add(r, f.p)
	return r.Mod(r, f.p)
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.p)
}

// Inverse returns the multiplicative inverse of a using the extended
// Euclidean algorithm.
func (f *Field) Inverse(a *big.Int) (*big.Int, error) {
	a = f.Reduce(a)
	if a.Sign() == 0 {
		return nil, ErrNotInvertible
	}

	// Invariant: oldR = oldS*a (mod p), r = s*a (mod p).
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(f.p)
	oldS, s := big.NewInt(1), big.NewInt(0)
	q, tmp := new(big.Int), new(big.Int)

	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)
	}

	if oldR.Cmp(big.NewInt(1)) != 0 {
		return nil, ErrNotInvertible
	}
	return f.Reduce(oldS), nil
}

// Rand returns a uniformly random element of [0, p).
func (f *Field) Rand(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, f.p)
	if err != nil {
		return nil, fmt.Errorf("failed to draw field element: %w", err)
	}
	return n, nil
}

// RandNonZero returns a uniformly random element of [1, p), resampling
// until the draw is nonzero.
func (f *Field) RandNonZero(r io.Reader) (*big.Int, error) {
	for {
		n, err := f.Rand(r)
		if err != nil {
			return nil, err
		}
		if n.Sign() != 0 {
			return n, nil
		}
	}
}
