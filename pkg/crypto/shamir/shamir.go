// Package shamir implements threshold secret sharing over a prime field.
//
// A secret s in [0, p) becomes the constant term of a random polynomial of
// degree T-1. Evaluating it at x = 1..N yields N shares; Lagrange interpolation
// at x = 0 over any T of them gives s back. Fewer than T shares produce a
// field element unrelated to s.
package shamir

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/field"
	"github.com/Davincible/shamirstore/pkg/errkind"
)

// MaxParts bounds the number of shares per sharing session.
const MaxParts = 255

var (
	ErrInvalidConfig       = errkind.New(errkind.Value, "invalid sharing parameters")
	ErrSecretOutOfRange    = errkind.New(errkind.Value, "secret is outside the field")
	ErrDuplicateShareIndex = errkind.New(errkind.Value, "duplicate share index")
	ErrInvalidShare        = errkind.New(errkind.Value, "invalid share")
	ErrTooFewShares        = errkind.New(errkind.Value, "at least 2 shares are required for reconstruction")
	ErrMalformedShare      = errkind.New(errkind.Format, "malformed share")
)

// Share is one evaluation (x, y) of the sharing polynomial.
type Share struct {
	X *big.Int
	Y *big.Int
}

type Config struct {
	Parts     int
	Threshold int
}

func (c *Config) Validate() error {
	if c.Parts < 2 {
		return fmt.Errorf("%w: parts must be at least 2, got %d", ErrInvalidConfig, c.Parts)
	}
	if c.Threshold < 2 {
		return fmt.Errorf("%w: threshold must be at least 2, got %d", ErrInvalidConfig, c.Threshold)
	}
	if c.Threshold > c.Parts {
		return fmt.Errorf("%w: threshold (%d) cannot be greater than parts (%d)", ErrInvalidConfig, c.Threshold, c.Parts)
	}
	if c.Parts > MaxParts {
		return fmt.Errorf("%w: parts cannot exceed %d, got %d", ErrInvalidConfig, MaxParts, c.Parts)
	}
	return nil
}

// Sharer splits and reconstructs secrets in one field.
type Sharer struct {
	field *field.Field
	rand  io.Reader
}

var defaultSharer = New(field.Mersenne127(), nil)

// New returns a sharer over f drawing coefficients from r. A nil r uses
// crypto/rand.
func New(f *field.Field, r io.Reader) *Sharer {
	if r == nil {
		r = rand.Reader
	}
	return &Sharer{field: f, rand: r}
}

// Default returns the sharer over the 2^127 - 1 field.
func Default() *Sharer {
	return defaultSharer
}

func (s *Sharer) Field() *field.Field {
	return s.field
}

// Split divides secret into config.Parts shares at x = 1..Parts. Parts must
// be below the field modulus so every share index is a distinct nonzero
// element.
func (s *Sharer) Split(secret *big.Int, config Config) ([]Share, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if big.NewInt(int64(config.Parts)).Cmp(s.field.Modulus()) >= 0 {
		return nil, fmt.Errorf("%w: parts (%d) must be below the field modulus %s", ErrInvalidConfig, config.Parts, s.field.Modulus())
	}
	if !s.field.Contains(secret) {
		return nil, fmt.Errorf("%w: must be in [0, 2^%d)", ErrSecretOutOfRange, s.field.BitLen())
	}

	poly, err := NewRandomPolynomial(s.field, secret, config.Threshold-1, s.rand)
	if err != nil {
		return nil, fmt.Errorf("failed to build polynomial: %w", err)
	}

	return poly.Points(config.Parts), nil
}

// Reconstruct interpolates the shares at x = 0. The result equals the secret
// only when at least the original threshold of shares is supplied.
func (s *Sharer) Reconstruct(shares []Share) (*big.Int, error) {
	if len(shares) < 2 {
		return nil, ErrTooFewShares
	}

	seen := make(map[string]struct{}, len(shares))
	for i, share := range shares {
		if share.X == nil || share.Y == nil {
			return nil, fmt.Errorf("%w: share %d is incomplete", ErrInvalidShare, i+1)
		}
		if share.X.Sign() <= 0 || !s.field.Contains(share.X) {
			return nil, fmt.Errorf("%w: share %d has index %s outside [1, p)", ErrInvalidShare, i+1, share.X)
		}
		if !s.field.Contains(share.Y) {
			return nil, fmt.Errorf("%w: share %d has a value outside the field", ErrInvalidShare, i+1)
		}

		key := share.X.String()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShareIndex, key)
		}
		seen[key] = struct{}{}
	}

	f := s.field
	secret := new(big.Int)
	for i, si := range shares {
		// Lagrange basis at 0: prod_{j != i} x_j / (x_j - x_i).
		basis := big.NewInt(1)
		for j, sj := range shares {
			if i == j {
				continue
			}
			inv, err := f.Inverse(f.Sub(sj.X, si.X))
			if err != nil {
				return nil, fmt.Errorf("failed to invert denominator: %w", err)
			}
			basis = f.Mul(basis, f.Mul(sj.X, inv))
		}
		secret = f.Add(secret, f.Mul(si.Y, basis))
	}

	return secret, nil
}

// Split uses the default sharer.
func Split(secret *big.Int, config Config) ([]Share, error) {
	return defaultSharer.Split(secret, config)
}

// Reconstruct uses the default sharer.
func Reconstruct(shares []Share) (*big.Int, error) {
	return defaultSharer.Reconstruct(shares)
}

// String renders the share as "<x>-<y in hex>", with y zero-padded to the
// width of the default field.
func (s Share) String() string {
	width := defaultSharer.field.ByteLen()
	y := s.Y.Bytes()
	if len(y) < width {
		y = append(make([]byte, width-len(y)), y...)
	}
	return s.X.String() + "-" + hex.EncodeToString(y)
}

// ParseShare parses the output of Share.String.
func ParseShare(text string) (Share, error) {
	text = strings.TrimSpace(text)
	xs, ys, ok := strings.Cut(text, "-")
	if !ok {
		return Share{}, fmt.Errorf("%w: expected <index>-<hex>", ErrMalformedShare)
	}

	x, err := strconv.ParseUint(xs, 10, 32)
	if err != nil || x == 0 {
		return Share{}, fmt.Errorf("%w: invalid index %q", ErrMalformedShare, xs)
	}

	yb, err := hex.DecodeString(ys)
	if err != nil || len(yb) == 0 {
		return Share{}, fmt.Errorf("%w: invalid value", ErrMalformedShare)
	}

	return Share{
		X: new(big.Int).SetUint64(x),
		Y: new(big.Int).SetBytes(yb),
	}, nil
}
