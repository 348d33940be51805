package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Davincible/shamirstore/pkg/crypto/aead"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/Davincible/shamirstore/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, aead.KeySize)
	for i := range key {
		key[i] = byte(0xA0 + i)
	}
	return key
}

func TestStoreOperations(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Set("db", "user", "admin"))
	require.NoError(t, s.Set("db", "password", "hunter2"))
	require.NoError(t, s.Set("api", "token", "abc"))
	require.NoError(t, s.AddSection("empty"))

	assert.Equal(t, []string{"db", "api", "empty"}, s.Sections())
	assert.Equal(t, []string{"user", "password"}, s.Keys("db"))
	assert.True(t, s.HasSection("empty"))
	assert.Equal(t, 3, s.Len())

	v, ok := s.Get("db", "password")
	assert.True(t, ok)
	assert.Equal(t, "hunter2", v)

	_, ok = s.Get("db", "missing")
	assert.False(t, ok)
	_, ok = s.Get("missing", "user")
	assert.False(t, ok)

	// Overwriting keeps the position.
	require.NoError(t, s.Set("db", "user", "root"))
	entries, ok := s.Entries("db")
	require.True(t, ok)
	assert.Equal(t, []Entry{{"user", "root"}, {"password", "hunter2"}}, entries)

	// Re-adding a section keeps its entries.
	require.NoError(t, s.AddSection("db"))
	assert.Len(t, s.Keys("db"), 2)

	assert.True(t, s.RemoveEntry("db", "user"))
	assert.False(t, s.RemoveEntry("db", "user"))
	assert.False(t, s.RemoveEntry("nope", "user"))
	assert.Equal(t, []string{"password"}, s.Keys("db"))

	assert.True(t, s.RemoveSection("api"))
	assert.False(t, s.RemoveSection("api"))
	assert.Equal(t, []string{"db", "empty"}, s.Sections())

	_, ok = s.Entries("api")
	assert.False(t, ok)
	assert.Nil(t, s.Keys("api"))
}

func TestRenameKeepsPosition(t *testing.T) {
	s := New()
	require.NoError(t, s.Set("db", "user", "admin"))
	require.NoError(t, s.Set("db", "password", "hunter2"))
	require.NoError(t, s.Set("db", "host", "localhost"))

	require.NoError(t, s.Rename("db", "user", "login", "root"))
	entries, _ := s.Entries("db")
	assert.Equal(t, []Entry{{"login", "root"}, {"password", "hunter2"}, {"host", "localhost"}}, entries)

	// Same key only updates the value.
	require.NoError(t, s.Rename("db", "host", "host", "db.internal"))
	assert.Equal(t, []string{"login", "password", "host"}, s.Keys("db"))
	v, _ := s.Get("db", "host")
	assert.Equal(t, "db.internal", v)

	assert.ErrorIs(t, s.Rename("db", "login", "password", "x"), ErrEntryExists)
	assert.ErrorIs(t, s.Rename("db", "missing", "other", "x"), ErrNoEntry)
	assert.ErrorIs(t, s.Rename("nope", "login", "other", "x"), ErrNoEntry)
	assert.ErrorIs(t, s.Rename("db", "login", "", "x"), ErrEmptyKey)
	assert.Equal(t, []string{"login", "password", "host"}, s.Keys("db"))
}

func TestStoreRejectsEmptyNames(t *testing.T) {
	s := New()

	err := s.Set("", "k", "v")
	assert.ErrorIs(t, err, ErrEmptySection)
	assert.True(t, errors.Is(err, errkind.Value))

	assert.ErrorIs(t, s.Set("s", "", "v"), ErrEmptyKey)
	assert.ErrorIs(t, s.AddSection(""), ErrEmptySection)
	assert.Equal(t, 0, s.Len())
}

func TestCloneAndEqual(t *testing.T) {
	s := Example()
	c := s.Clone()
	assert.True(t, s.Equal(c))
	assert.Equal(t, s.Sections(), c.Sections())

	require.NoError(t, c.Set("section2", "entry_name", "changed"))
	assert.False(t, s.Equal(c))
	v, _ := s.Get("section2", "entry_name")
	assert.Equal(t, "val", v)

	// Order does not matter for equality.
	a := New()
	require.NoError(t, a.Set("x", "1", "a"))
	require.NoError(t, a.Set("y", "2", "b"))
	b := New()
	require.NoError(t, b.Set("y", "2", "b"))
	require.NoError(t, b.Set("x", "1", "a"))
	assert.True(t, a.Equal(b))

	require.NoError(t, b.AddSection("z"))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestMarshalFormat(t *testing.T) {
	data, err := Marshal(Example())
	require.NoError(t, err)

	expected := "example_section:\n" +
		"  key: value\n" +
		"section2:\n" +
		"  entry_name: val\n" +
		"  Nom test: Secret key\n"
	assert.Equal(t, expected, string(data))
}

func TestMarshalEmptySection(t *testing.T) {
	s := New()
	require.NoError(t, s.AddSection("empty"))
	require.NoError(t, s.Set("full", "k", "v"))

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, "empty: {}\nfull:\n  k: v\n", string(data))

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "full"}, back.Sections())
}

func TestRoundTripPreservesStrings(t *testing.T) {
	s := New()
	values := map[string]string{
		"int":       "8080",
		"float":     "3.14",
		"bool":      "true",
		"null":      "null",
		"empty":     "",
		"colon":     "a: b",
		"hash":      "# not a comment",
		"multiline": "line one\nline two",
		"leading":   "  padded  ",
		"unicode":   "clé secrète ✓",
		"dash":      "- item",
	}
	keys := []string{"int", "float", "bool", "null", "empty", "colon", "hash", "multiline", "leading", "unicode", "dash"}
	for _, k := range keys {
		require.NoError(t, s.Set("values", k, values[k]))
	}
	require.NoError(t, s.Set("123", "true", "yes"))

	data, err := Marshal(s)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, s.Equal(back), "round trip changed content:\n%s", data)
	assert.Equal(t, keys, back.Keys("values"))
	assert.Equal(t, []string{"values", "123"}, back.Sections())
}

func TestUnmarshal(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		for _, input := range []string{"", "\n", "~\n", "{}\n"} {
			s, err := Unmarshal([]byte(input))
			require.NoError(t, err, input)
			assert.Equal(t, 0, s.Len())
		}
	})

	t.Run("file order and literal scalars", func(t *testing.T) {
		input := "zeta:\n  b: 2\n  a: 0x1F\nalpha:\n  flag: yes\n  none:\n"
		s, err := Unmarshal([]byte(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"zeta", "alpha"}, s.Sections())
		assert.Equal(t, []string{"b", "a"}, s.Keys("zeta"))

		v, _ := s.Get("zeta", "a")
		assert.Equal(t, "0x1F", v)
		v, _ = s.Get("alpha", "flag")
		assert.Equal(t, "yes", v)
		v, ok := s.Get("alpha", "none")
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("null section", func(t *testing.T) {
		s, err := Unmarshal([]byte("a:\nb: ~\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, s.Sections())
		entries, ok := s.Entries("a")
		assert.True(t, ok)
		assert.Empty(t, entries)
	})

	t.Run("flow style", func(t *testing.T) {
		s, err := Unmarshal([]byte("{a: {k: v, j: w}}"))
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "j"}, s.Keys("a"))
	})
}

func TestUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax error", "a:\n  b: [unclosed\n"},
		{"scalar root", "hello\n"},
		{"sequence root", "- a\n- b\n"},
		{"scalar section", "a: value\n"},
		{"sequence section", "a:\n  - x\n"},
		{"three levels", "a:\n  b:\n    c: d\n"},
		{"sequence value", "a:\n  b: [1, 2]\n"},
		{"duplicate section", "a:\n  k: v\na:\n  j: w\n"},
		{"duplicate entry", "a:\n  k: v\n  k: w\n"},
		{"alias", "a: &x\n  k: v\nb: *x\n"},
		{"alias value", "a:\n  k: &v one\n  j: *v\n"},
		{"merge key", "base: &b\n  k: v\nother:\n  <<: *b\n"},
		{"complex key", "? [a, b]\n: {k: v}\n"},
		{"empty entry key", "a:\n  \"\": v\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Equal(t, errkind.Serialization, errkind.KindOf(err))
		})
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()

	t.Run("encrypted", func(t *testing.T) {
		path := DefaultPath(dir, true)
		assert.Equal(t, filepath.Join(dir, "store.enc"), path)

		require.NoError(t, SaveFile(path, testKey(), Example()))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "example_section")

		loaded, err := LoadFile(path, testKey())
		require.NoError(t, err)
		assert.True(t, Example().Equal(loaded))
		assert.Equal(t, Example().Sections(), loaded.Sections())

		_, err = LoadFile(path, nil)
		assert.Error(t, err, "ciphertext is not YAML")

		wrong := testKey()
		wrong[31] ^= 1
		_, err = LoadFile(path, wrong)
		assert.ErrorIs(t, err, aead.ErrAuthenticationFailed)
	})

	t.Run("plaintext", func(t *testing.T) {
		path := DefaultPath(dir, false)
		require.NoError(t, SaveFile(path, nil, Example()))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Nom test: Secret key")

		loaded, err := LoadFile(path, nil)
		require.NoError(t, err)
		assert.True(t, Example().Equal(loaded))
	})

	t.Run("chacha storage", func(t *testing.T) {
		codec, err := aead.New(aead.ChaCha20Poly1305)
		require.NoError(t, err)
		st := storage.NewSecureStorage(filepath.Join(dir, "chacha.enc"), codec)

		require.NoError(t, Example().Save(st, testKey()))
		loaded, err := Load(st, testKey())
		require.NoError(t, err)
		assert.True(t, Example().Equal(loaded))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.yaml"), nil)
		assert.True(t, errors.Is(err, errkind.IO))
	})

	t.Run("malformed plaintext", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- not a store\n"), 0600))
		_, err := LoadFile(path, nil)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestSwapExtension(t *testing.T) {
	tests := []struct {
		path      string
		encrypted bool
		expected  string
	}{
		{"/tmp/store.yaml", true, "/tmp/store.enc"},
		{"/tmp/store.enc", false, "/tmp/store.yaml"},
		{"/tmp/store.enc", true, "/tmp/store.enc"},
		{"/tmp/store.yaml", false, "/tmp/store.yaml"},
		{"/tmp/store.txt", true, "/tmp/store.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SwapExtension(tt.path, tt.encrypted))
	}
}
