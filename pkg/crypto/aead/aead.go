// Package aead encrypts store payloads with a 256-bit key.
//
// Blob layout: [12-byte nonce][ciphertext || 16-byte tag]. A fresh nonce is
// drawn for every call, so encrypting the same plaintext twice never yields
// the same blob.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/Davincible/shamirstore/pkg/errkind"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// Cipher names an AEAD primitive.
type Cipher string

const (
	AES256GCM        Cipher = "aes-256-gcm"
	ChaCha20Poly1305 Cipher = "chacha20-poly1305"
)

// DefaultCipher is used when no cipher is configured.
const DefaultCipher = AES256GCM

var (
	ErrInvalidKeySize       = errkind.New(errkind.Value, "invalid key size")
	ErrUnknownCipher        = errkind.New(errkind.Value, "unknown cipher")
	ErrDataTooShort         = errkind.New(errkind.Format, "data too short")
	ErrAuthenticationFailed = errkind.New(errkind.Crypto, "authentication failed")
)

// Ciphers lists the supported primitives.
func Ciphers() []Cipher {
	return []Cipher{AES256GCM, ChaCha20Poly1305}
}

// ParseCipher maps a configured name to a Cipher. An empty name selects the
// default.
func ParseCipher(name string) (Cipher, error) {
	switch c := Cipher(strings.ToLower(strings.TrimSpace(name))); c {
	case "":
		return DefaultCipher, nil
	case AES256GCM, ChaCha20Poly1305:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCipher, name)
	}
}

type Option func(*Codec)

// WithRand overrides the nonce source.
func WithRand(r io.Reader) Option {
	return func(c *Codec) {
		c.rand = r
	}
}

// Codec seals and opens payloads with one primitive.
type Codec struct {
	cipher Cipher
	rand   io.Reader
}

var defaultCodec = &Codec{cipher: DefaultCipher, rand: rand.Reader}

func New(c Cipher, opts ...Option) (*Codec, error) {
	if c == "" {
		c = DefaultCipher
	}
	if c != AES256GCM && c != ChaCha20Poly1305 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, c)
	}

	codec := &Codec{cipher: c, rand: rand.Reader}
	for _, opt := range opts {
		opt(codec)
	}
	return codec, nil
}

// Default returns the AES-256-GCM codec backed by crypto/rand.
func Default() *Codec {
	return defaultCodec
}

func (c *Codec) Cipher() Cipher {
	return c.cipher
}

func (c *Codec) aead(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	switch c.cipher {
	case ChaCha20Poly1305:
		a, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, errkind.Wrap(errkind.Crypto, "failed to create cipher", err)
		}
		return a, nil
	default:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, errkind.Wrap(errkind.Crypto, "failed to create cipher", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, errkind.Wrap(errkind.Crypto, "failed to create GCM", err)
		}
		return gcm, nil
	}
}

// Encrypt seals plaintext under key and returns nonce || ciphertext || tag.
func (c *Codec) Encrypt(key, plaintext []byte) ([]byte, error) {
	a, err := c.aead(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(c.rand, out); err != nil {
		return nil, errkind.Wrap(errkind.Crypto, "failed to generate nonce", err)
	}

	return a.Seal(out, out[:NonceSize], plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Any tampering with the nonce,
// ciphertext or tag, or a wrong key, yields ErrAuthenticationFailed and no
// plaintext.
func (c *Codec) Decrypt(key, blob []byte) ([]byte, error) {
	a, err := c.aead(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < NonceSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrDataTooShort, len(blob), NonceSize)
	}

	plaintext, err := a.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Encrypt uses the default codec.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	return defaultCodec.Encrypt(key, plaintext)
}

// Decrypt uses the default codec.
func Decrypt(key, blob []byte) ([]byte, error) {
	return defaultCodec.Decrypt(key, blob)
}
