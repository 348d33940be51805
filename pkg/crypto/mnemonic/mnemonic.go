// Package mnemonic converts 256-bit secrets to and from 24-word sentences.
//
// The 256 entropy bits are followed by an 8-bit checksum (the first byte of
// the SHA-256 digest of the entropy). The resulting 264 bits are read as 24
// groups of 11 bits, each selecting one word of a 2048-word dictionary. With
// the embedded English dictionary the output is a standard BIP-39 mnemonic.
package mnemonic

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/Davincible/shamirstore/pkg/errkind"
)

const (
	EntropyBits  = 256
	EntropyBytes = EntropyBits / 8
	ChecksumBits = 8
	WordCount    = (EntropyBits + ChecksumBits) / bitsPerWord

	bitsPerWord = 11
)

var (
	ErrWrongWordCount   = errkind.New(errkind.Format, "wrong word count")
	ErrUnknownWord      = errkind.New(errkind.Format, "unknown word")
	ErrChecksumMismatch = errkind.New(errkind.Checksum, "checksum mismatch")
	ErrSecretOutOfRange = errkind.New(errkind.Value, "secret does not fit in 256 bits")
	ErrEntropyLength    = errkind.New(errkind.Value, "entropy must be 32 bytes")
)

// Codec encodes and decodes mnemonics against one dictionary.
type Codec struct {
	dict *Dictionary
}

var defaultCodec = &Codec{dict: english}

// NewCodec returns a codec for dict.
func NewCodec(dict *Dictionary) *Codec {
	return &Codec{dict: dict}
}

// Default returns the codec for the embedded English dictionary.
func Default() *Codec {
	return defaultCodec
}

// Dictionary returns the codec's word list.
func (c *Codec) Dictionary() *Dictionary {
	return c.dict
}

// Encode renders secret, which must fit in 256 bits, as 24 space-separated words.
func (c *Codec) Encode(secret *big.Int) (string, error) {
	if secret == nil || secret.Sign() < 0 {
		return "", fmt.Errorf("%w: secret must be a nonnegative integer", ErrSecretOutOfRange)
	}
	if secret.BitLen() > EntropyBits {
		return "", fmt.Errorf("%w: got %d bits", ErrSecretOutOfRange, secret.BitLen())
	}

	return c.encode(secret.FillBytes(make([]byte, EntropyBytes)))
}

// EncodeBytes encodes exactly 32 bytes of entropy.
func (c *Codec) EncodeBytes(entropy []byte) (string, error) {
	if len(entropy) != EntropyBytes {
		return "", fmt.Errorf("%w: got %d", ErrEntropyLength, len(entropy))
	}
	return c.encode(entropy)
}

func (c *Codec) encode(entropy []byte) (string, error) {
	data := make([]byte, 0, EntropyBytes+1)
	data = append(data, entropy...)
	data = append(data, checksum(entropy))

	words := make([]string, WordCount)
	for i := range words {
		word, err := c.dict.Word(readBits(data, i*bitsPerWord, bitsPerWord))
		if err != nil {
			return "", err
		}
		words[i] = word
	}

	return strings.Join(words, " "), nil
}

// Decode parses a 24-word mnemonic and returns the 256-bit secret it encodes.
func (c *Codec) Decode(text string) (*big.Int, error) {
	entropy, err := c.decode(text)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(entropy), nil
}

// DecodeBytes parses a mnemonic and returns its 32 bytes of entropy.
func (c *Codec) DecodeBytes(text string) ([]byte, error) {
	return c.decode(text)
}

func (c *Codec) decode(text string) ([]byte, error) {
	words := strings.Fields(text)
	if len(words) != WordCount {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongWordCount, WordCount, len(words))
	}

	data := make([]byte, EntropyBytes+1)
	for i, word := range words {
		idx, ok := c.dict.Index(word)
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownWord, word, i+1)
		}
		writeBits(data, i*bitsPerWord, bitsPerWord, idx)
	}

	entropy := data[:EntropyBytes]
	if got, want := data[EntropyBytes], checksum(entropy); got != want {
		return nil, fmt.Errorf("%w: expected %08b, got %08b", ErrChecksumMismatch, want, got)
	}

	return entropy, nil
}

// Encode uses the English dictionary.
func Encode(secret *big.Int) (string, error) {
	return defaultCodec.Encode(secret)
}

// Decode uses the English dictionary.
func Decode(text string) (*big.Int, error) {
	return defaultCodec.Decode(text)
}

// Normalize collapses all whitespace runs in a mnemonic to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func checksum(entropy []byte) byte {
	h := sha256.Sum256(entropy)
	return h[0]
}

// readBits returns n bits of data starting at bit offset, MSB first.
func readBits(data []byte, offset, n int) int {
	v := 0
	for i := offset; i < offset+n; i++ {
		v = v<<1 | int(data[i/8]>>(7-uint(i%8))&1)
	}
	return v
}

// writeBits stores the low n bits of v into data at bit offset, MSB first.
func writeBits(data []byte, offset, n, v int) {
	for i := 0; i < n; i++ {
		if v>>(n-1-i)&1 == 1 {
			pos := offset + i
			data[pos/8] |= 1 << (7 - uint(pos%8))
		}
	}
}
