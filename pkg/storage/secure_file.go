// Package storage persists byte payloads on disk, optionally sealed with the
// AEAD store codec.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Davincible/shamirstore/pkg/crypto/aead"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/Davincible/shamirstore/pkg/secure"
)

const (
	DirMode  = 0700
	FileMode = 0600
)

var ErrNotFound = errkind.New(errkind.IO, "file not found")

// SecureStorage reads and writes one file. A nil key means the payload is
// stored as plaintext.
type SecureStorage struct {
	filepath string
	codec    *aead.Codec
}

// NewSecureStorage binds a file path to codec. A nil codec uses the default
// AES-256-GCM codec.
func NewSecureStorage(filepath string, codec *aead.Codec) *SecureStorage {
	if codec == nil {
		codec = aead.Default()
	}
	return &SecureStorage{
		filepath: filepath,
		codec:    codec,
	}
}

func (s *SecureStorage) Path() string {
	return s.filepath
}

// Save writes data, encrypting it first when key is non-nil. The file is
// replaced atomically so a failed write never leaves a truncated store.
func (s *SecureStorage) Save(data []byte, key []byte) error {
	payload := data
	if key != nil {
		sealed, err := s.codec.Encrypt(key, data)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		payload = sealed
	}

	dir := filepath.Dir(s.filepath)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return errkind.Wrap(errkind.IO, "failed to create directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.filepath)+".*.tmp")
	if err != nil {
		return errkind.Wrap(errkind.IO, "failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return errkind.Wrap(errkind.IO, "failed to set file permissions", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return errkind.Wrap(errkind.IO, "failed to write file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errkind.Wrap(errkind.IO, "failed to sync file", err)
	}
	if err := tmp.Close(); err != nil {
		return errkind.Wrap(errkind.IO, "failed to close file", err)
	}

	if err := os.Rename(tmpName, s.filepath); err != nil {
		return errkind.Wrap(errkind.IO, "failed to replace file", err)
	}

	return nil
}

// Load reads the file, decrypting it when key is non-nil.
func (s *SecureStorage) Load(key []byte) ([]byte, error) {
	raw, err := os.ReadFile(s.filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.filepath)
		}
		return nil, errkind.Wrap(errkind.IO, "failed to read file", err)
	}

	if key == nil {
		return raw, nil
	}

	plaintext, err := s.codec.Decrypt(key, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: %w", s.filepath, err)
	}
	return plaintext, nil
}

func (s *SecureStorage) Exists() bool {
	_, err := os.Stat(s.filepath)
	return err == nil
}

// Delete overwrites the file with random bytes before removing it.
func (s *SecureStorage) Delete() error {
	if !s.Exists() {
		return nil
	}

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return errkind.Wrap(errkind.IO, "failed to read file for secure deletion", err)
	}

	noise, err := secure.Random(len(data))
	if err != nil {
		return errkind.Wrap(errkind.IO, "failed to overwrite file", err)
	}
	secure.Zero(data)

	if err := os.WriteFile(s.filepath, noise, FileMode); err != nil {
		return errkind.Wrap(errkind.IO, "failed to overwrite file", err)
	}

	if err := os.Remove(s.filepath); err != nil {
		return errkind.Wrap(errkind.IO, "failed to remove file", err)
	}
	return nil
}
