// Package store holds the two-level secret store: named sections, each an
// ordered set of key/value entries.
//
// Sections and entries keep insertion order. Setting an existing key replaces
// its value in place.
package store

import (
	"fmt"

	"github.com/Davincible/shamirstore/pkg/errkind"
)

var (
	ErrEmptySection = errkind.New(errkind.Value, "section name cannot be empty")
	ErrEmptyKey     = errkind.New(errkind.Value, "entry key cannot be empty")
	ErrNoEntry      = errkind.New(errkind.Value, "entry not found")
	ErrEntryExists  = errkind.New(errkind.Value, "entry already exists")
)

type Entry struct {
	Key   string
	Value string
}

type section struct {
	keys    []string
	entries map[string]string
}

func newSection() *section {
	return &section{entries: make(map[string]string)}
}

func (s *section) set(key, value string) {
	if _, ok := s.entries[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.entries[key] = value
}

func (s *section) remove(key string) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

// Store is an ordered mapping section -> (key -> value). The zero value is not
// usable; call New.
type Store struct {
	order    []string
	sections map[string]*section
}

func New() *Store {
	return &Store{sections: make(map[string]*section)}
}

// Example returns a store seeded with sample data for a freshly initialised
// store.
func Example() *Store {
	s := New()
	s.mustSet("example_section", "key", "value")
	s.mustSet("section2", "entry_name", "val")
	s.mustSet("section2", "Nom test", "Secret key")
	return s
}

func (s *Store) mustSet(sec, key, value string) {
	if err := s.Set(sec, key, value); err != nil {
		panic(err)
	}
}

// Sections returns the section names in order.
func (s *Store) Sections() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Entries returns the entries of a section in order. ok is false when the
// section does not exist.
func (s *Store) Entries(name string) (entries []Entry, ok bool) {
	sec, ok := s.sections[name]
	if !ok {
		return nil, false
	}
	entries = make([]Entry, len(sec.keys))
	for i, k := range sec.keys {
		entries[i] = Entry{Key: k, Value: sec.entries[k]}
	}
	return entries, true
}

// Keys returns the entry keys of a section in order.
func (s *Store) Keys(name string) []string {
	sec, ok := s.sections[name]
	if !ok {
		return nil
	}
	out := make([]string, len(sec.keys))
	copy(out, sec.keys)
	return out
}

func (s *Store) Get(name, key string) (string, bool) {
	sec, ok := s.sections[name]
	if !ok {
		return "", false
	}
	v, ok := sec.entries[key]
	return v, ok
}

// Set stores value under (name, key), creating the section if needed.
func (s *Store) Set(name, key, value string) error {
	if name == "" {
		return ErrEmptySection
	}
	if key == "" {
		return fmt.Errorf("%w: in section %q", ErrEmptyKey, name)
	}
	s.section(name).set(key, value)
	return nil
}

// AddSection creates an empty section. Adding an existing section is a no-op.
func (s *Store) AddSection(name string) error {
	if name == "" {
		return ErrEmptySection
	}
	s.section(name)
	return nil
}

func (s *Store) section(name string) *section {
	sec, ok := s.sections[name]
	if !ok {
		sec = newSection()
		s.sections[name] = sec
		s.order = append(s.order, name)
	}
	return sec
}

// RemoveSection deletes a section and its entries. It reports whether the
// section existed.
func (s *Store) RemoveSection(name string) bool {
	if _, ok := s.sections[name]; !ok {
		return false
	}
	delete(s.sections, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveEntry deletes one entry. The section stays, even when it becomes
// empty.
func (s *Store) RemoveEntry(name, key string) bool {
	sec, ok := s.sections[name]
	if !ok {
		return false
	}
	return sec.remove(key)
}

// Rename moves the entry oldKey to newKey with value, keeping its position in
// the section. Renaming onto another existing key fails with ErrEntryExists.
func (s *Store) Rename(name, oldKey, newKey, value string) error {
	if newKey == "" {
		return fmt.Errorf("%w: in section %q", ErrEmptyKey, name)
	}
	sec, ok := s.sections[name]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNoEntry, name, oldKey)
	}
	if _, ok := sec.entries[oldKey]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNoEntry, name, oldKey)
	}
	if newKey != oldKey {
		if _, exists := sec.entries[newKey]; exists {
			return fmt.Errorf("%w: %s/%s", ErrEntryExists, name, newKey)
		}
		delete(sec.entries, oldKey)
		for i, k := range sec.keys {
			if k == oldKey {
				sec.keys[i] = newKey
				break
			}
		}
	}
	sec.entries[newKey] = value
	return nil
}

func (s *Store) HasSection(name string) bool {
	_, ok := s.sections[name]
	return ok
}

// Len returns the number of sections.
func (s *Store) Len() int {
	return len(s.order)
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := New()
	for _, name := range s.order {
		src := s.sections[name]
		dst := c.section(name)
		for _, k := range src.keys {
			dst.set(k, src.entries[k])
		}
	}
	return c
}

// Equal reports whether both stores hold the same sections and entries,
// ignoring order.
func (s *Store) Equal(other *Store) bool {
	if other == nil || len(s.sections) != len(other.sections) {
		return false
	}
	for name, sec := range s.sections {
		osec, ok := other.sections[name]
		if !ok || len(sec.entries) != len(osec.entries) {
			return false
		}
		for k, v := range sec.entries {
			if ov, ok := osec.entries[k]; !ok || ov != v {
				return false
			}
		}
	}
	return true
}
