package cli

import (
	"strings"
	"testing"

	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	env := testEnv(t, "")

	var first, second KeyResult
	runJSON(t, env, &first, "generate", "--decimal")
	runJSON(t, env, &second, "generate")

	assert.Len(t, first.Hex, 64)
	assert.Equal(t, mnemonic.WordCount, first.WordCount)
	assert.Len(t, strings.Fields(first.Mnemonic), mnemonic.WordCount)
	assert.NotEmpty(t, first.Decimal)
	assert.Empty(t, second.Decimal)
	assert.NotEqual(t, first.Hex, second.Hex)

	var decoded CodecResult
	runJSON(t, env, &decoded, "decode", first.Mnemonic)
	assert.Equal(t, first.Hex, decoded.Hex)
	assert.Equal(t, first.Decimal, decoded.Decimal)

	stdout, _, err := run(t, env, "generate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== NEW KEY ===")
	assert.Contains(t, stdout, "IMPORTANT: Save this key securely!")
}

func TestEncodeDecode(t *testing.T) {
	env := testEnv(t, "")

	var byDecimal, byHex CodecResult
	runJSON(t, env, &byDecimal, "encode", "--decimal", "255")
	runJSON(t, env, &byHex, "encode", "0xff")

	assert.Equal(t, strings.Repeat("0", 62)+"ff", byDecimal.Hex)
	assert.Equal(t, byDecimal, byHex)

	words := strings.Fields(byHex.Mnemonic)
	require.Len(t, words, 24)
	assert.Equal(t, strings.Repeat("abandon ", 22), strings.Join(words[:22], " ")+" ")

	// Decoding ignores case and spacing.
	var decoded CodecResult
	runJSON(t, env, &decoded, append([]string{"decode"}, strings.ToUpper(words[0]), "  "+strings.Join(words[1:], "   "))...)
	assert.Equal(t, "255", decoded.Decimal)
	assert.Equal(t, byHex.Mnemonic, decoded.Mnemonic)
}

func TestDecodePrompt(t *testing.T) {
	var encoded CodecResult
	runJSON(t, testEnv(t, ""), &encoded, "encode", "--decimal", "42")

	var decoded CodecResult
	runJSON(t, testEnv(t, encoded.Mnemonic+"\n"), &decoded, "decode")
	assert.Equal(t, "42", decoded.Decimal)
}

func TestCodecErrors(t *testing.T) {
	words := strings.Fields(strings.Repeat("abandon ", 24))

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"value too large", []string{"encode", "01" + strings.Repeat("00", 32)}, mnemonic.ErrSecretOutOfRange},
		{"wrong word count", []string{"decode", "abandon", "abandon"}, mnemonic.ErrWrongWordCount},
		{"unknown word", append([]string{"decode", "notaword"}, words[1:]...), mnemonic.ErrUnknownWord},
		{"bad checksum", append([]string{"decode"}, words...), mnemonic.ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, testEnv(t, ""), tt.args...)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	_, _, err := run(t, testEnv(t, ""), "encode", "--decimal", "-5")
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input   string
		decimal bool
		want    int64
		wantErr bool
	}{
		{"ff", false, 255, false},
		{"0x0100", false, 256, false},
		{" 10 ", true, 10, false},
		{"", false, 0, true},
		{"f", false, 0, true},
		{"1e3", true, 0, true},
	}

	for _, tt := range tests {
		v, err := parseValue(tt.input, tt.decimal)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, v.Int64())
	}
}
