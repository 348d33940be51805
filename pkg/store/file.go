package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Davincible/shamirstore/pkg/storage"
)

const (
	EncryptedExt = ".enc"
	PlainExt     = ".yaml"
)

// Load reads a store through st. With a nil key the file is taken as plain
// YAML; otherwise it is decrypted first.
func Load(st *storage.SecureStorage, key []byte) (*Store, error) {
	data, err := st.Load(key)
	if err != nil {
		return nil, err
	}

	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", st.Path(), err)
	}
	return s, nil
}

// Save serializes the store and writes it through st, encrypting when key is
// non-nil.
func (s *Store) Save(st *storage.SecureStorage, key []byte) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return st.Save(data, key)
}

// LoadFile is Load with the default cipher.
func LoadFile(path string, key []byte) (*Store, error) {
	return Load(storage.NewSecureStorage(path, nil), key)
}

// SaveFile is Save with the default cipher.
func SaveFile(path string, key []byte, s *Store) error {
	return s.Save(storage.NewSecureStorage(path, nil), key)
}

// DefaultPath returns dir/store.enc or dir/store.yaml.
func DefaultPath(dir string, encrypted bool) string {
	if encrypted {
		return filepath.Join(dir, "store"+EncryptedExt)
	}
	return filepath.Join(dir, "store"+PlainExt)
}

// SwapExtension turns a .yaml path into .enc when encrypted is true and the
// reverse when false. Other paths are returned unchanged.
func SwapExtension(path string, encrypted bool) string {
	if encrypted && strings.HasSuffix(path, PlainExt) {
		return strings.TrimSuffix(path, PlainExt) + EncryptedExt
	}
	if !encrypted && strings.HasSuffix(path, EncryptedExt) {
		return strings.TrimSuffix(path, EncryptedExt) + PlainExt
	}
	return path
}
