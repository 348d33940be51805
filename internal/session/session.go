// Package session owns the master key and the store being edited. Front ends
// drive it through Init, Load and Save and never touch key material directly.
package session

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/aead"
	"github.com/Davincible/shamirstore/pkg/crypto/masterkey"
	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/Davincible/shamirstore/pkg/storage"
	"github.com/Davincible/shamirstore/pkg/store"
)

var (
	ErrNoKey   = errkind.New(errkind.Value, "no key loaded, load or init a store first")
	ErrNoPath  = errkind.New(errkind.Value, "path cannot be empty")
	ErrNoStore = errkind.New(errkind.Value, "no store loaded")
)

type Options struct {
	// Codec renders and parses key mnemonics. Nil uses English.
	Codec *mnemonic.Codec
	// AEAD seals store files. Nil uses AES-256-GCM.
	AEAD   *aead.Codec
	Logger *slog.Logger
}

// Session is not safe for concurrent use.
type Session struct {
	codec  *mnemonic.Codec
	aead   *aead.Codec
	logger *slog.Logger

	key       *masterkey.Key
	store     *store.Store
	path      string
	encrypted bool
}

// Credentials is a freshly generated key in both display forms.
type Credentials struct {
	Hex      string
	Mnemonic string
}

func New(opts Options) *Session {
	if opts.Codec == nil {
		opts.Codec = mnemonic.Default()
	}
	if opts.AEAD == nil {
		opts.AEAD = aead.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{
		codec:  opts.Codec,
		aead:   opts.AEAD,
		logger: opts.Logger,
	}
}

// Init generates a new key and replaces the store with an empty one, or with
// sample sections when seedExample is set.
func (s *Session) Init(seedExample bool) (Credentials, error) {
	key, err := masterkey.Generate()
	if err != nil {
		return Credentials{}, err
	}

	hexKey, err := key.Hex()
	if err != nil {
		key.Destroy()
		return Credentials{}, err
	}
	words, err := key.Mnemonic(s.codec)
	if err != nil {
		key.Destroy()
		return Credentials{}, fmt.Errorf("failed to encode mnemonic: %w", err)
	}

	s.replaceKey(key)
	if seedExample {
		s.store = store.Example()
	} else {
		s.store = store.New()
	}
	s.path = ""
	s.encrypted = true

	s.logger.Debug("initialized store", "seeded", seedExample)
	return Credentials{Hex: hexKey, Mnemonic: words}, nil
}

// ParseKey parses a key typed as hex or as a mnemonic.
func (s *Session) ParseKey(input string) (*masterkey.Key, error) {
	return masterkey.Parse(s.codec, input)
}

// UseKey replaces the session key without touching the store, so a store
// read from plain YAML can be saved encrypted under a known key.
func (s *Session) UseKey(input string) error {
	key, err := s.ParseKey(input)
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	s.replaceKey(key)
	return nil
}

// Load reads the store at path. A non-empty keyInput is parsed as a hex or
// mnemonic key and the file is decrypted; an empty keyInput reads plain YAML
// and keeps the current key, if any.
func (s *Session) Load(path, keyInput string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoPath
	}

	var key *masterkey.Key
	if strings.TrimSpace(keyInput) != "" {
		k, err := s.ParseKey(keyInput)
		if err != nil {
			return fmt.Errorf("invalid key: %w", err)
		}
		key = k
	}

	st := storage.NewSecureStorage(path, s.aead)

	var (
		loaded *store.Store
		err    error
	)
	if key != nil {
		err = key.Use(func(raw []byte) error {
			var lerr error
			loaded, lerr = store.Load(st, raw)
			return lerr
		})
	} else {
		loaded, err = store.Load(st, nil)
	}
	if err != nil {
		if key != nil {
			key.Destroy()
		}
		return err
	}

	if key != nil {
		s.replaceKey(key)
	}
	s.store = loaded
	s.path = path
	s.encrypted = key != nil

	s.logger.Debug("loaded store", "path", path, "encrypted", s.encrypted, "sections", loaded.Len())
	return nil
}

// Save writes the store to path, encrypted with the session key or as plain
// YAML.
func (s *Session) Save(path string, encrypted bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoPath
	}
	if s.store == nil {
		return ErrNoStore
	}

	st := storage.NewSecureStorage(path, s.aead)

	var err error
	if encrypted {
		if !s.HasKey() {
			return ErrNoKey
		}
		err = s.key.Use(func(raw []byte) error {
			return s.store.Save(st, raw)
		})
	} else {
		err = s.store.Save(st, nil)
	}
	if err != nil {
		return err
	}

	s.path = path
	s.encrypted = encrypted

	if !encrypted {
		s.logger.Warn("store saved without encryption", "path", path)
	}
	s.logger.Debug("saved store", "path", path, "encrypted", encrypted)
	return nil
}

// Store returns the store being edited, or nil before Init or Load.
func (s *Session) Store() *store.Store {
	return s.store
}

// HasKey reports whether the session holds a usable key.
func (s *Session) HasKey() bool {
	return s.key != nil && !s.key.Destroyed()
}

// Key returns the session key. Callers must not destroy it.
func (s *Session) Key() *masterkey.Key {
	return s.key
}

// Mnemonic renders the session key as words. It is derived on every call.
func (s *Session) Mnemonic() (string, error) {
	if s.key == nil {
		return "", ErrNoKey
	}
	return s.key.Mnemonic(s.codec)
}

// Path is the file last loaded or saved.
func (s *Session) Path() string {
	return s.path
}

// Encrypted reports whether Path holds an encrypted store.
func (s *Session) Encrypted() bool {
	return s.encrypted
}

// Close wipes the key and drops the store.
func (s *Session) Close() {
	s.replaceKey(nil)
	s.store = nil
}

func (s *Session) replaceKey(key *masterkey.Key) {
	if s.key != nil {
		s.key.Destroy()
	}
	s.key = key
}
