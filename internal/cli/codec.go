package cli

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/Davincible/shamirstore/internal/validation"
	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CodecResult is a 256-bit value with its mnemonic.
type CodecResult struct {
	Hex      string `json:"hex"`
	Decimal  string `json:"decimal"`
	Mnemonic string `json:"mnemonic"`
}

func NewEncodeCommand(env *Env) *cobra.Command {
	var decimal bool

	cmd := &cobra.Command{
		Use:   "encode <value>",
		Short: "Encode a 256-bit value as a 24-word mnemonic",
		Long: `Encode a value below 2^256 as 24 words. The last word carries an
8-bit SHA-256 checksum so typing mistakes are detected on decode.

The value is read as hex unless --decimal is given.`,
		Example: `  # Encode a hex value
  shamirstore encode 00000000000000000000000000000000000000000000000000000000000000ff

  # Encode a decimal value
  shamirstore encode --decimal 255`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := env.codec()
			if err != nil {
				return err
			}

			value, err := parseValue(args[0], decimal)
			if err != nil {
				return err
			}

			words, err := codec.Encode(value)
			if err != nil {
				return fmt.Errorf("failed to encode: %w", err)
			}

			return outputCodecResult(cmd, value, words)
		},
	}

	cmd.Flags().BoolVar(&decimal, "decimal", false, "Value is a decimal number")

	return cmd
}

func NewDecodeCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [words...]",
		Short: "Decode a 24-word mnemonic",
		Long: `Decode 24 words back to the value they encode. Words may be given as
arguments or typed at the prompt. Case and extra spaces are ignored.`,
		Example: `  # Decode from arguments
  shamirstore decode abandon abandon ... zoo

  # Decode interactively
  shamirstore decode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := env.codec()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				text, err = env.readLine(cmd.ErrOrStderr(), "Enter 24 words: ")
				if err != nil {
					return fmt.Errorf("failed to read mnemonic: %w", err)
				}
			}

			text = mnemonic.Normalize(strings.ToLower(text))
			value, err := codec.Decode(text)
			if err != nil {
				return fmt.Errorf("failed to decode: %w", err)
			}

			return outputCodecResult(cmd, value, text)
		},
	}

	return cmd
}

// parseValue reads a hex (optionally 0x-prefixed) or decimal number.
func parseValue(text string, decimal bool) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if decimal {
		if err := validation.ValidateDecimal(text); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, fmt.Errorf("invalid decimal number")
		}
		return v, nil
	}

	b, err := parseHex(text)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

func parseHex(text string) ([]byte, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "0x")
	if err := validation.ValidateHex(text); err != nil {
		return nil, err
	}
	return hex.DecodeString(text)
}

func outputCodecResult(cmd *cobra.Command, value *big.Int, words string) error {
	result := CodecResult{
		Hex:      hex.EncodeToString(value.FillBytes(make([]byte, mnemonic.EntropyBytes))),
		Decimal:  value.String(),
		Mnemonic: words,
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	yellow := color.New(color.FgYellow)

	yellow.Fprintln(w, "Hex:")
	fmt.Fprintf(w, "  %s\n", result.Hex)
	yellow.Fprintln(w, "Decimal:")
	fmt.Fprintf(w, "  %s\n", result.Decimal)
	yellow.Fprintln(w, "Mnemonic:")
	printWords(w, result.Mnemonic)
	return nil
}
