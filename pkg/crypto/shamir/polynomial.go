package shamir

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/field"
)

// Polynomial is a polynomial over a prime field. coefficients[0] is the
// constant term.
type Polynomial struct {
	field        *field.Field
	coefficients []*big.Int
}

// NewPolynomial returns the polynomial with the given coefficients, each
// reduced into the field.
func NewPolynomial(f *field.Field, coefficients []*big.Int) *Polynomial {
	coeffs := make([]*big.Int, len(coefficients))
	for i, c := range coefficients {
		coeffs[i] = f.Reduce(c)
	}
	return &Polynomial{field: f, coefficients: coeffs}
}

// NewRandomPolynomial returns a polynomial of the given degree whose constant
// term is secret. Every other coefficient is a uniformly random nonzero
// element, so the highest-order term never vanishes.
func NewRandomPolynomial(f *field.Field, secret *big.Int, degree int, r io.Reader) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("%w: degree must be nonnegative, got %d", ErrInvalidConfig, degree)
	}

	coeffs := make([]*big.Int, degree+1)
	coeffs[0] = new(big.Int).Set(secret)
	for i := 1; i <= degree; i++ {
		c, err := f.RandNonZero(r)
		if err != nil {
			return nil, fmt.Errorf("failed to generate coefficient: %w", err)
		}
		coeffs[i] = c
	}

	return &Polynomial{field: f, coefficients: coeffs}, nil
}

func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Coefficients returns a copy of the coefficients, constant term first.
func (p *Polynomial) Coefficients() []*big.Int {
	out := make([]*big.Int, len(p.coefficients))
	for i, c := range p.coefficients {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// Evaluate computes p(x) mod the field prime with Horner's rule.
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	y := new(big.Int)
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		y = p.field.Add(p.field.Mul(y, x), p.coefficients[i])
	}
	return y
}

// Points evaluates the polynomial at x = 1..n.
func (p *Polynomial) Points(n int) []Share {
	shares := make([]Share, n)
	for i := range shares {
		x := big.NewInt(int64(i + 1))
		shares[i] = Share{X: x, Y: p.Evaluate(x)}
	}
	return shares
}

func (p *Polynomial) String() string {
	terms := make([]string, len(p.coefficients))
	for i, c := range p.coefficients {
		switch i {
		case 0:
			terms[i] = c.String()
		case 1:
			terms[i] = c.String() + "x"
		default:
			terms[i] = fmt.Sprintf("%sx^%d", c, i)
		}
	}
	return strings.Join(terms, " + ")
}
