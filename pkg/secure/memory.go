// Package secure holds key material in buffers that can be wiped.
//
// Go offers no guarantee that the runtime has not copied a slice before it is
// zeroed; wiping narrows the window, it does not close it.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

var ErrDestroyed = errors.New("secure: buffer has been destroyed")

// Bytes is a mutex-guarded byte buffer whose contents are zeroed on Destroy.
type Bytes struct {
	mu        sync.RWMutex
	data      []byte
	destroyed bool
}

// FromBytes copies data into a new buffer. The caller keeps ownership of data
// and should wipe it when done.
func FromBytes(data []byte) *Bytes {
	b := &Bytes{data: make([]byte, len(data))}
	copy(b.data, data)
	return b
}

// Get returns a copy of the contents.
func (b *Bytes) Get() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrDestroyed
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Use calls fn with the live contents. fn must not retain the slice.
func (b *Bytes) Use(fn func([]byte) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return ErrDestroyed
	}
	return fn(b.data)
}

func (b *Bytes) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Equal compares the contents with other in constant time.
func (b *Bytes) Equal(other []byte) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.destroyed && ConstantTimeCompare(b.data, other)
}

// Destroy zeroes the contents. Later reads return ErrDestroyed.
func (b *Bytes) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	Zero(b.data)
	b.data = nil
	b.destroyed = true
}

func (b *Bytes) Destroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

func ConstantTimeCompare(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

// Random returns size bytes from crypto/rand.
func Random(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		Zero(b)
		return nil, fmt.Errorf("failed to generate secure random bytes: %w", err)
	}
	return b, nil
}
