package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Davincible/shamirstore/pkg/crypto/aead"
	"github.com/Davincible/shamirstore/pkg/crypto/masterkey"
	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/Davincible/shamirstore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	s := New(Options{})
	assert.Nil(t, s.Store())
	assert.False(t, s.HasKey())

	creds, err := s.Init(true)
	require.NoError(t, err)
	assert.Len(t, creds.Hex, 64)
	assert.Len(t, strings.Fields(creds.Mnemonic), mnemonic.WordCount)
	assert.True(t, s.HasKey())
	assert.True(t, store.Example().Equal(s.Store()))

	words, err := s.Mnemonic()
	require.NoError(t, err)
	assert.Equal(t, creds.Mnemonic, words)

	fromHex, err := masterkey.ParseHex(creds.Hex)
	require.NoError(t, err)
	assert.True(t, fromHex.Equal(s.Key()))

	// A second init replaces and wipes the previous key.
	previous := s.Key()
	again, err := s.Init(false)
	require.NoError(t, err)
	assert.NotEqual(t, creds.Hex, again.Hex)
	assert.True(t, previous.Destroyed())
	assert.Equal(t, 0, s.Store().Len())
}

func TestSaveLoadEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.enc")

	s := New(Options{})
	creds, err := s.Init(true)
	require.NoError(t, err)
	require.NoError(t, s.Store().Set("db", "password", "hunter2"))
	require.NoError(t, s.Save(path, true))
	assert.Equal(t, path, s.Path())
	assert.True(t, s.Encrypted())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	for _, input := range []string{creds.Hex, creds.Mnemonic} {
		other := New(Options{})
		require.NoError(t, other.Load(path, input))
		v, ok := other.Store().Get("db", "password")
		assert.True(t, ok)
		assert.Equal(t, "hunter2", v)
		assert.True(t, other.Encrypted())
		assert.True(t, other.HasKey())
	}
}

func TestLoadFailuresKeepState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.enc")

	s := New(Options{})
	_, err := s.Init(true)
	require.NoError(t, err)
	require.NoError(t, s.Save(path, true))

	other := New(Options{})
	creds, err := other.Init(false)
	require.NoError(t, err)
	require.NoError(t, other.Store().Set("keep", "me", "1"))

	t.Run("wrong key", func(t *testing.T) {
		err := other.Load(path, creds.Hex)
		assert.ErrorIs(t, err, aead.ErrAuthenticationFailed)
		assert.True(t, errors.Is(err, errkind.Crypto))
	})

	t.Run("bad key text", func(t *testing.T) {
		err := other.Load(path, "not-hex")
		assert.ErrorIs(t, err, masterkey.ErrInvalidHex)

		err = other.Load(path, "abandon abandon abandon")
		assert.ErrorIs(t, err, mnemonic.ErrWrongWordCount)
	})

	t.Run("missing file", func(t *testing.T) {
		err := other.Load(filepath.Join(dir, "absent.enc"), creds.Hex)
		assert.True(t, errors.Is(err, errkind.IO))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.ErrorIs(t, other.Load("  ", creds.Hex), ErrNoPath)
	})

	v, ok := other.Store().Get("keep", "me")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.False(t, other.Key().Destroyed())
}

func TestPlaintextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "store.yaml")

	s := New(Options{})
	_, err := s.Init(true)
	require.NoError(t, err)
	key := s.Key()

	require.NoError(t, s.Save(plain, false))
	assert.False(t, s.Encrypted())

	raw, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "example_section:")

	// Loading plaintext keeps the current key so the store can be re-encrypted.
	require.NoError(t, s.Store().Set("extra", "k", "v"))
	require.NoError(t, s.Load(plain, ""))
	assert.Same(t, key, s.Key())
	assert.False(t, s.Store().HasSection("extra"))

	require.NoError(t, s.Save(store.SwapExtension(plain, true), true))
	assert.Equal(t, filepath.Join(dir, "store.enc"), s.Path())
}

func TestSaveRequiresKeyAndStore(t *testing.T) {
	s := New(Options{})
	path := filepath.Join(t.TempDir(), "store.enc")

	assert.ErrorIs(t, s.Save(path, true), ErrNoStore)

	plain := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, store.SaveFile(plain, nil, store.Example()))
	require.NoError(t, s.Load(plain, ""))
	assert.False(t, s.HasKey())

	assert.ErrorIs(t, s.Save(path, true), ErrNoKey)
	assert.ErrorIs(t, s.Save("", false), ErrNoPath)
	require.NoError(t, s.Save(plain, false))

	_, err := s.Mnemonic()
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestAlternativeCipher(t *testing.T) {
	codec, err := aead.New(aead.ChaCha20Poly1305)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "store.enc")

	s := New(Options{AEAD: codec})
	creds, err := s.Init(true)
	require.NoError(t, err)
	require.NoError(t, s.Save(path, true))

	assert.ErrorIs(t, New(Options{}).Load(path, creds.Hex), aead.ErrAuthenticationFailed)
	require.NoError(t, New(Options{AEAD: codec}).Load(path, creds.Hex))
}

func TestClose(t *testing.T) {
	s := New(Options{})
	_, err := s.Init(true)
	require.NoError(t, err)
	key := s.Key()

	s.Close()
	assert.True(t, key.Destroyed())
	assert.False(t, s.HasKey())
	assert.Nil(t, s.Store())
}

func TestDestroyedKeyIsNotUsable(t *testing.T) {
	s := New(Options{})
	_, err := s.Init(true)
	require.NoError(t, err)
	require.True(t, s.HasKey())

	s.Key().Destroy()
	assert.False(t, s.HasKey())
	assert.ErrorIs(t, s.Save(filepath.Join(t.TempDir(), "store.enc"), true), ErrNoKey)
}

func TestUseKey(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "store.yaml")
	require.NoError(t, store.SaveFile(plain, nil, store.Example()))

	source := New(Options{})
	creds, err := source.Init(false)
	require.NoError(t, err)

	s := New(Options{})
	require.NoError(t, s.Load(plain, ""))
	assert.ErrorIs(t, s.UseKey("zz"), masterkey.ErrInvalidHex)
	assert.False(t, s.HasKey())

	require.NoError(t, s.UseKey(creds.Mnemonic))
	require.NoError(t, s.Save(filepath.Join(dir, "store.enc"), true))

	other := New(Options{})
	require.NoError(t, other.Load(filepath.Join(dir, "store.enc"), creds.Hex))
	assert.True(t, store.Example().Equal(other.Store()))
}
