// Package secretsharing provides a unified interface over the threshold
// sharing schemes: prime127 (Shamir over the 2^127 - 1 field) and gf256
// (byte-wise Shamir, able to split a full 256-bit master key).
package secretsharing

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/shamir"
	"github.com/Davincible/shamirstore/pkg/errkind"
)

// SchemeType names a secret sharing scheme.
type SchemeType string

const (
	// SchemePrime127 shares a secret of at most 16 bytes as one field element.
	SchemePrime127 SchemeType = "prime127"
	// SchemeGF256 shares each byte independently in GF(2^8).
	SchemeGF256 SchemeType = "gf256"
)

var (
	ErrUnsupportedScheme = errkind.New(errkind.Value, "unsupported scheme")
	ErrNoShares          = errkind.New(errkind.Value, "no shares provided")
	ErrMixedShares       = errkind.New(errkind.Value, "shares do not belong to the same set")
	ErrEmptySecret       = errkind.New(errkind.Value, "secret cannot be empty")
	ErrSecretTooLarge    = errkind.New(errkind.Value, "secret too large for scheme")
	ErrMalformedShare    = errkind.New(errkind.Format, "malformed share")
)

// Share is one share of any scheme. Size is the length of the shared secret in
// bytes so Combine can restore leading zeros.
type Share struct {
	Scheme    SchemeType `json:"scheme"`
	Threshold int        `json:"threshold"`
	Index     int        `json:"index"`
	Size      int        `json:"size"`
	Data      []byte     `json:"data"`
}

// SecretSharer is implemented by every scheme.
type SecretSharer interface {
	// Split divides secret into parts shares, any threshold of which recover it.
	Split(secret []byte, threshold, parts int) ([]Share, error)

	// Combine reconstructs the secret. With fewer than the threshold of shares
	// the output is unrelated to the secret.
	Combine(shares []Share) ([]byte, error)

	// Scheme returns the scheme type this sharer implements.
	Scheme() SchemeType
}

// SharerRegistry manages the available scheme implementations.
type SharerRegistry struct {
	sharers map[SchemeType]SecretSharer
}

func NewRegistry() *SharerRegistry {
	return &SharerRegistry{
		sharers: make(map[SchemeType]SecretSharer),
	}
}

func (r *SharerRegistry) Register(sharer SecretSharer) {
	r.sharers[sharer.Scheme()] = sharer
}

func (r *SharerRegistry) Get(scheme SchemeType) (SecretSharer, error) {
	sharer, exists := r.sharers[scheme]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return sharer, nil
}

// ListSchemes returns the registered schemes in name order.
func (r *SharerRegistry) ListSchemes() []SchemeType {
	schemes := make([]SchemeType, 0, len(r.sharers))
	for scheme := range r.sharers {
		schemes = append(schemes, scheme)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i] < schemes[j] })
	return schemes
}

// DefaultRegistry holds every built-in scheme.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(NewPrime127Sharer())
	DefaultRegistry.Register(NewGF256Sharer())
}

// Split splits a secret using the specified scheme from the default registry.
func Split(scheme SchemeType, secret []byte, threshold, parts int) ([]Share, error) {
	sharer, err := DefaultRegistry.Get(scheme)
	if err != nil {
		return nil, err
	}
	return sharer.Split(secret, threshold, parts)
}

// Combine reconstructs a secret with the scheme recorded in the shares.
func Combine(shares []Share) ([]byte, error) {
	if err := CheckSet(shares); err != nil {
		return nil, err
	}
	sharer, err := DefaultRegistry.Get(shares[0].Scheme)
	if err != nil {
		return nil, err
	}
	return sharer.Combine(shares)
}

// CheckSet verifies that shares agree on scheme, threshold and size and that
// no index repeats.
func CheckSet(shares []Share) error {
	if len(shares) == 0 {
		return ErrNoShares
	}

	first := shares[0]
	seen := make(map[int]bool, len(shares))
	for i, s := range shares {
		if s.Scheme != first.Scheme {
			return fmt.Errorf("%w: share %d uses %s, share 1 uses %s", ErrMixedShares, i+1, s.Scheme, first.Scheme)
		}
		if s.Threshold != first.Threshold {
			return fmt.Errorf("%w: share %d has threshold %d, share 1 has %d", ErrMixedShares, i+1, s.Threshold, first.Threshold)
		}
		if s.Size != first.Size {
			return fmt.Errorf("%w: share %d has size %d, share 1 has %d", ErrMixedShares, i+1, s.Size, first.Size)
		}
		if seen[s.Index] {
			return fmt.Errorf("%w: %d", shamir.ErrDuplicateShareIndex, s.Index)
		}
		seen[s.Index] = true
	}
	return nil
}

// Sufficient reports whether shares meet their recorded threshold.
func Sufficient(shares []Share) bool {
	return len(shares) > 0 && len(shares) >= shares[0].Threshold
}

// Encode renders a share as "<scheme>-<threshold>-<index>-<size>-<hex data>".
func Encode(s Share) string {
	return fmt.Sprintf("%s-%d-%d-%d-%s", s.Scheme, s.Threshold, s.Index, s.Size, hex.EncodeToString(s.Data))
}

// ParseShare parses the output of Encode.
func ParseShare(text string) (Share, error) {
	parts := strings.Split(strings.TrimSpace(text), "-")
	if len(parts) != 5 {
		return Share{}, fmt.Errorf("%w: expected <scheme>-<threshold>-<index>-<size>-<hex>", ErrMalformedShare)
	}

	nums := make([]int, 3)
	for i, field := range parts[1:4] {
		n, err := strconv.Atoi(field)
		if err != nil || n <= 0 {
			return Share{}, fmt.Errorf("%w: invalid number %q", ErrMalformedShare, field)
		}
		nums[i] = n
	}

	data, err := hex.DecodeString(parts[4])
	if err != nil || len(data) == 0 {
		return Share{}, fmt.Errorf("%w: invalid share data", ErrMalformedShare)
	}

	return Share{
		Scheme:    SchemeType(parts[0]),
		Threshold: nums[0],
		Index:     nums[1],
		Size:      nums[2],
		Data:      data,
	}, nil
}
