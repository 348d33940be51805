package secretsharing

import (
	"fmt"

	"github.com/Davincible/shamirstore/pkg/crypto/shamir"
	vault "github.com/hashicorp/vault/shamir"
)

// GF256Sharer implements SecretSharer with byte-wise Shamir in GF(2^8). Each
// share is one byte longer than the secret; the trailing byte is its x
// coordinate.
type GF256Sharer struct{}

func NewGF256Sharer() *GF256Sharer {
	return &GF256Sharer{}
}

func (g *GF256Sharer) Scheme() SchemeType {
	return SchemeGF256
}

func (g *GF256Sharer) Split(secret []byte, threshold, parts int) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	config := shamir.Config{Parts: parts, Threshold: threshold}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	raw, err := vault.Split(secret, parts, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}

	shares := make([]Share, len(raw))
	for i, data := range raw {
		shares[i] = Share{
			Scheme:    SchemeGF256,
			Threshold: threshold,
			Index:     int(data[len(data)-1]),
			Size:      len(secret),
			Data:      data,
		}
	}
	return shares, nil
}

func (g *GF256Sharer) Combine(shares []Share) ([]byte, error) {
	if err := CheckSet(shares); err != nil {
		return nil, err
	}
	if len(shares) < 2 {
		return nil, shamir.ErrTooFewShares
	}

	raw := make([][]byte, len(shares))
	for i, s := range shares {
		if s.Scheme != SchemeGF256 {
			return nil, fmt.Errorf("%w: share %d is not %s", ErrMixedShares, i+1, SchemeGF256)
		}
		if len(s.Data) != s.Size+1 || int(s.Data[len(s.Data)-1]) != s.Index {
			return nil, fmt.Errorf("%w: share %d is inconsistent with its header", ErrMalformedShare, i+1)
		}
		raw[i] = s.Data
	}

	secret, err := vault.Combine(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	return secret, nil
}
