package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameLength  = 256
	mnemonicLength = 24
)

var (
	hexPattern     = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+$`)
)

func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

// ValidateHexKey checks for exactly 64 hex characters.
func ValidateHexKey(input string) error {
	input = strings.TrimPrefix(strings.TrimSpace(input), "0x")
	if err := ValidateHex(input); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if len(input) != 64 {
		return fmt.Errorf("key must be 64 hex characters (got %d)", len(input))
	}
	return nil
}

func ValidateDecimal(input string) error {
	input = strings.TrimSpace(input)
	if !decimalPattern.MatchString(input) {
		return fmt.Errorf("invalid decimal number")
	}
	return nil
}

// ValidateMnemonic checks the shape of a key mnemonic: 24 lowercase words.
// Dictionary membership and the checksum are checked by the codec.
func ValidateMnemonic(words string) error {
	words = strings.TrimSpace(words)
	if words == "" {
		return fmt.Errorf("mnemonic cannot be empty")
	}

	wordList := strings.Fields(words)
	if len(wordList) != mnemonicLength {
		return fmt.Errorf("mnemonic must have %d words (got %d)", mnemonicLength, len(wordList))
	}

	for i, word := range wordList {
		for _, ch := range word {
			if ch < 'a' || ch > 'z' {
				return fmt.Errorf("word %d contains invalid characters: %s", i+1, word)
			}
		}
	}

	return nil
}

// ValidateKey checks the shape of a typed master key: a mnemonic when it
// contains whitespace, otherwise 64 hex characters.
func ValidateKey(input string) error {
	input = strings.TrimSpace(input)
	if strings.ContainsAny(input, " \t\n") {
		return ValidateMnemonic(input)
	}
	return ValidateHexKey(input)
}

func ValidateSplitParams(parts, threshold int) error {
	if parts < 2 || parts > 255 {
		return fmt.Errorf("parts must be between 2 and 255 (got %d)", parts)
	}

	if threshold < 2 || threshold > parts {
		return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
	}

	return nil
}

// ValidateName checks a section name or entry key.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%s too long (max %d bytes)", kind, maxNameLength)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%s is not valid UTF-8", kind)
	}
	for i, ch := range name {
		if unicode.IsControl(ch) {
			return fmt.Errorf("%s contains a control character at position %d", kind, i)
		}
	}
	return nil
}

// ValidateValue checks an entry value. Newlines and tabs are allowed.
func ValidateValue(value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("value is not valid UTF-8")
	}
	for i, ch := range value {
		if ch == 0 {
			return fmt.Errorf("value contains null character at position %d", i)
		}
	}
	return nil
}

func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}
