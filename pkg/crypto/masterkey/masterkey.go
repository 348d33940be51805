// Package masterkey generates and parses the 256-bit key that encrypts a
// store. A key is entered either as 64 hex characters or as a 24-word
// mnemonic.
package masterkey

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/Davincible/shamirstore/pkg/secure"
	"github.com/tyler-smith/go-bip39"
)

const (
	Size    = 32
	HexSize = Size * 2
)

var (
	ErrInvalidSize = errkind.New(errkind.Value, "master key must be 32 bytes")
	ErrInvalidHex  = errkind.New(errkind.Format, "invalid hex key")
	ErrDestroyed   = errkind.New(errkind.Value, "master key has been destroyed")
)

// Key is a 256-bit master key held in wipeable memory.
type Key struct {
	buf *secure.Bytes
}

// Generate draws a fresh key from the operating system's CSPRNG.
func Generate() (*Key, error) {
	entropy, err := bip39.NewEntropy(Size * 8)
	if err != nil {
		return nil, errkind.Wrap(errkind.Crypto, "failed to generate key", err)
	}
	defer secure.Zero(entropy)

	return FromBytes(entropy)
}

// FromBytes copies b into a new key.
func FromBytes(b []byte) (*Key, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, len(b))
	}
	return &Key{buf: secure.FromBytes(b)}, nil
}

// FromInt converts a nonnegative integer of at most 256 bits, left-padding
// with zeros.
func FromInt(v *big.Int) (*Key, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > Size*8 {
		return nil, fmt.Errorf("%w: value does not fit in 256 bits", ErrInvalidSize)
	}
	b := v.FillBytes(make([]byte, Size))
	defer secure.Zero(b)
	return FromBytes(b)
}

// ParseHex parses exactly 64 hex characters. Surrounding whitespace and an
// optional 0x prefix are accepted.
func ParseHex(text string) (*Key, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "0x")
	if len(text) != HexSize {
		return nil, fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidHex, HexSize, len(text))
	}

	b, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	defer secure.Zero(b)

	return FromBytes(b)
}

// ParseMnemonic decodes a 24-word mnemonic with codec. A nil codec uses the
// English dictionary.
func ParseMnemonic(codec *mnemonic.Codec, text string) (*Key, error) {
	if codec == nil {
		codec = mnemonic.Default()
	}
	b, err := codec.DecodeBytes(text)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(b)

	return FromBytes(b)
}

// Parse treats input containing whitespace as a mnemonic and anything else as
// hex.
func Parse(codec *mnemonic.Codec, input string) (*Key, error) {
	input = strings.TrimSpace(input)
	if strings.ContainsAny(input, " \t\r\n") {
		return ParseMnemonic(codec, input)
	}
	return ParseHex(input)
}

// Bytes returns a copy of the key. Callers should wipe it after use.
func (k *Key) Bytes() ([]byte, error) {
	b, err := k.buf.Get()
	if err != nil {
		return nil, ErrDestroyed
	}
	return b, nil
}

// Use calls fn with the key material without copying it.
func (k *Key) Use(fn func(key []byte) error) error {
	err := k.buf.Use(fn)
	if errors.Is(err, secure.ErrDestroyed) {
		return ErrDestroyed
	}
	return err
}

func (k *Key) Int() (*big.Int, error) {
	var v *big.Int
	err := k.Use(func(b []byte) error {
		v = new(big.Int).SetBytes(b)
		return nil
	})
	return v, err
}

func (k *Key) Hex() (string, error) {
	var s string
	err := k.Use(func(b []byte) error {
		s = hex.EncodeToString(b)
		return nil
	})
	return s, err
}

// Mnemonic encodes the key as 24 words. The result is computed on every call.
func (k *Key) Mnemonic(codec *mnemonic.Codec) (string, error) {
	if codec == nil {
		codec = mnemonic.Default()
	}
	var words string
	err := k.Use(func(b []byte) error {
		var err error
		words, err = codec.EncodeBytes(b)
		return err
	})
	return words, err
}

// Equal compares two keys in constant time.
func (k *Key) Equal(other *Key) bool {
	if other == nil {
		return false
	}
	b, err := other.Bytes()
	if err != nil {
		return false
	}
	defer secure.Zero(b)
	return k.buf.Equal(b)
}

// Destroy wipes the key. Every later accessor returns ErrDestroyed.
func (k *Key) Destroy() {
	k.buf.Destroy()
}

func (k *Key) Destroyed() bool {
	return k.buf.Destroyed()
}
