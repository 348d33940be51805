package mnemonic

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Davincible/shamirstore/pkg/errkind"
)

// DictionarySize is the number of words a dictionary must hold: one word per
// 11-bit group.
const DictionarySize = 1 << bitsPerWord

//go:embed english.txt
var englishData string

var (
	ErrDictionarySize  = errkind.New(errkind.Format, "wrong dictionary size")
	ErrDuplicateWord   = errkind.New(errkind.Format, "duplicate dictionary word")
	ErrIndexOutOfRange = errkind.New(errkind.Format, "word index out of range")
)

// english is the embedded BIP-39 English word list. A broken resource is a
// build defect, so it panics at startup.
var english = mustLoad(englishData)

func mustLoad(data string) *Dictionary {
	d, err := LoadDictionary(strings.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("mnemonic: embedded word list is invalid: %v", err))
	}
	return d
}

// Dictionary is an ordered list of exactly 2048 unique words with a reverse
// index.
type Dictionary struct {
	words []string
	index map[string]int
}

// English returns the embedded English dictionary.
func English() *Dictionary {
	return english
}

// NewDictionary builds a dictionary from words. Entries are trimmed and blank
// entries ignored; the remainder must be exactly 2048 unique words.
func NewDictionary(words []string) (*Dictionary, error) {
	list := make([]string, 0, DictionarySize)
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		list = append(list, w)
	}

	if len(list) != DictionarySize {
		return nil, fmt.Errorf("%w: expected %d words, got %d", ErrDictionarySize, DictionarySize, len(list))
	}

	index := make(map[string]int, DictionarySize)
	for i, w := range list {
		if prev, ok := index[w]; ok {
			return nil, fmt.Errorf("%w: %q at lines %d and %d", ErrDuplicateWord, w, prev+1, i+1)
		}
		index[w] = i
	}

	return &Dictionary{words: list, index: index}, nil
}

// LoadDictionary reads one word per line from r.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errkind.Wrap(errkind.IO, "failed to read word list", err)
	}
	return NewDictionary(words)
}

// LoadDictionaryFile reads a word list from path.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.IO, "failed to open word list", err)
	}
	defer f.Close()

	return LoadDictionary(f)
}

// Word returns the word at index i.
func (d *Dictionary) Word(i int) (string, error) {
	if i < 0 || i >= len(d.words) {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return d.words[i], nil
}

// Index returns the position of word. Lookup is exact and case-sensitive.
func (d *Dictionary) Index(word string) (int, bool) {
	i, ok := d.index[word]
	return i, ok
}

func (d *Dictionary) Len() int {
	return len(d.words)
}

// Words returns a copy of the word list.
func (d *Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}
