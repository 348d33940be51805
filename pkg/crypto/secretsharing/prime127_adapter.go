package secretsharing

import (
	"fmt"
	"math/big"

	"github.com/Davincible/shamirstore/pkg/crypto/field"
	"github.com/Davincible/shamirstore/pkg/crypto/shamir"
)

// Prime127Sharer implements SecretSharer over the 2^127 - 1 field.
type Prime127Sharer struct {
	sharer *shamir.Sharer
}

func NewPrime127Sharer() *Prime127Sharer {
	return &Prime127Sharer{sharer: shamir.Default()}
}

func (p *Prime127Sharer) Scheme() SchemeType {
	return SchemePrime127
}

// MaxSecretSize is the longest secret the field can hold whole.
func (p *Prime127Sharer) MaxSecretSize() int {
	return p.sharer.Field().ByteLen()
}

func (p *Prime127Sharer) Split(secret []byte, threshold, parts int) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(secret) > p.MaxSecretSize() {
		return nil, fmt.Errorf("%w: %s holds at most %d bytes, got %d", ErrSecretTooLarge, SchemePrime127, p.MaxSecretSize(), len(secret))
	}

	points, err := p.sharer.Split(new(big.Int).SetBytes(secret), shamir.Config{Parts: parts, Threshold: threshold})
	if err != nil {
		return nil, err
	}

	width := p.MaxSecretSize()
	shares := make([]Share, len(points))
	for i, pt := range points {
		shares[i] = Share{
			Scheme:    SchemePrime127,
			Threshold: threshold,
			Index:     int(pt.X.Int64()),
			Size:      len(secret),
			Data:      pt.Y.FillBytes(make([]byte, width)),
		}
	}
	return shares, nil
}

func (p *Prime127Sharer) Combine(shares []Share) ([]byte, error) {
	if err := CheckSet(shares); err != nil {
		return nil, err
	}

	points := make([]shamir.Share, len(shares))
	for i, s := range shares {
		if s.Scheme != SchemePrime127 {
			return nil, fmt.Errorf("%w: share %d is not %s", ErrMixedShares, i+1, SchemePrime127)
		}
		points[i] = shamir.Share{
			X: big.NewInt(int64(s.Index)),
			Y: new(big.Int).SetBytes(s.Data),
		}
	}

	secret, err := p.sharer.Reconstruct(points)
	if err != nil {
		return nil, err
	}

	return fitBytes(secret, shares[0].Size, p.sharer.Field()), nil
}

// fitBytes pads v to size bytes. A value that does not fit, which only happens
// below the threshold, is returned at the full field width.
func fitBytes(v *big.Int, size int, f *field.Field) []byte {
	if size > 0 && (v.BitLen()+7)/8 <= size {
		return v.FillBytes(make([]byte, size))
	}
	return v.FillBytes(make([]byte, f.ByteLen()))
}
