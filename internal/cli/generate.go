package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/masterkey"
	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// KeyResult is a key in every display form.
type KeyResult struct {
	Hex       string `json:"hex"`
	Decimal   string `json:"decimal,omitempty"`
	Mnemonic  string `json:"mnemonic"`
	WordCount int    `json:"word_count"`
}

func NewGenerateCommand(env *Env) *cobra.Command {
	var showDecimal bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new 256-bit key",
		Long: `Generate a new cryptographically secure 256-bit key and show it as
64 hex characters and as a 24-word mnemonic.

The key can be used with 'shamirstore store' and 'shamirstore encrypt'.`,
		Example: `  # Generate a key
  shamirstore generate

  # Output as JSON
  shamirstore generate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := env.codec()
			if err != nil {
				return err
			}

			key, err := masterkey.Generate()
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			defer key.Destroy()

			result, err := keyResult(key, codec, showDecimal)
			if err != nil {
				return err
			}

			env.logger().Debug("generated key")

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			outputKeyText(cmd.OutOrStdout(), "NEW KEY", result, env.config().Security.WarningLevel)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDecimal, "decimal", false, "Also show the key as a decimal number")

	return cmd
}

func keyResult(key *masterkey.Key, codec *mnemonic.Codec, withDecimal bool) (KeyResult, error) {
	hexKey, err := key.Hex()
	if err != nil {
		return KeyResult{}, err
	}
	words, err := key.Mnemonic(codec)
	if err != nil {
		return KeyResult{}, fmt.Errorf("failed to encode mnemonic: %w", err)
	}

	result := KeyResult{
		Hex:       hexKey,
		Mnemonic:  words,
		WordCount: len(strings.Fields(words)),
	}
	if withDecimal {
		v, err := key.Int()
		if err != nil {
			return KeyResult{}, err
		}
		result.Decimal = v.String()
	}
	return result, nil
}

func outputKeyText(w io.Writer, title string, result KeyResult, warningLevel string) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w)
	green.Fprintf(w, "=== %s ===\n", title)
	fmt.Fprintln(w)

	yellow.Fprintln(w, "Hex:")
	fmt.Fprintf(w, "  %s\n", result.Hex)
	if result.Decimal != "" {
		yellow.Fprintln(w, "Decimal:")
		fmt.Fprintf(w, "  %s\n", result.Decimal)
	}
	fmt.Fprintln(w)

	yellow.Fprintf(w, "%d-word mnemonic:\n", result.WordCount)
	printWords(w, result.Mnemonic)
	fmt.Fprintln(w)

	printKeyWarning(w, warningLevel)
	fmt.Fprintln(w)
}
