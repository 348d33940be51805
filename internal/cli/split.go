package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Davincible/shamirstore/internal/validation"
	"github.com/Davincible/shamirstore/pkg/crypto/masterkey"
	"github.com/Davincible/shamirstore/pkg/crypto/secretsharing"
	"github.com/Davincible/shamirstore/pkg/secure"
	"github.com/Davincible/shamirstore/pkg/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type ShareOutput struct {
	Index int    `json:"index"`
	Share string `json:"share"`
}

type SplitResult struct {
	Scheme    secretsharing.SchemeType `json:"scheme"`
	Threshold int                      `json:"threshold"`
	Total     int                      `json:"total"`
	Shares    []ShareOutput            `json:"shares"`
}

func NewSplitCommand(env *Env) *cobra.Command {
	defaults := env.config().Defaults

	var (
		parts      int
		threshold  int
		scheme     string
		secretHex  string
		decimal    string
		keyText    string
		useStdin   bool
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into multiple shares",
		Long: `Split a secret into shares using Shamir's Secret Sharing. Any
threshold number of shares reconstructs the secret; fewer reveal nothing.

Schemes:
- prime127: the secret is one element of the field 2^127 - 1 (at most 16 bytes)
- gf256:    every byte is shared separately, any length (used for store keys)

Each share is printed as <scheme>-<threshold>-<index>-<size>-<hex>.`,
		Example: `  # Split a hex secret into 5 shares with threshold 3
  shamirstore split --parts 5 --threshold 3 --secret 48656c6c6f

  # Split a store key given as hex or 24 words
  shamirstore split -n 5 -t 2 --key "abandon ... zoo"

  # Split raw data from stdin
  echo "short secret" | shamirstore split -n 3 -t 2 --stdin

  # Output shares to file
  shamirstore split -n 5 -t 3 --output shares.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateSplitParams(parts, threshold); err != nil {
				return err
			}

			schemeType := secretsharing.SchemeType(scheme)

			var (
				secret []byte
				err    error
			)
			switch {
			case keyText != "":
				secret, err = keyBytes(env, keyText)
				schemeType = secretsharing.SchemeGF256
			case secretHex != "":
				secret, err = parseHex(secretHex)
			case decimal != "":
				secret, err = decimalBytes(decimal)
			case useStdin:
				secret, err = readStdinSecret(env)
			default:
				var text string
				text, err = env.readHidden(cmd.ErrOrStderr(), "Enter secret (hex): ")
				if err == nil {
					secret, err = parseHex(text)
				}
			}
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			defer secure.Zero(secret)

			shares, err := secretsharing.Split(schemeType, secret, threshold, parts)
			if err != nil {
				return fmt.Errorf("failed to split secret: %w", err)
			}

			result := SplitResult{
				Scheme:    schemeType,
				Threshold: threshold,
				Total:     parts,
				Shares:    make([]ShareOutput, len(shares)),
			}
			for i, share := range shares {
				result.Shares[i] = ShareOutput{
					Index: share.Index,
					Share: secretsharing.Encode(share),
				}
			}

			env.logger().Debug("split secret", "scheme", schemeType, "threshold", threshold, "parts", parts)

			if outputFile != "" {
				return saveSplitResult(cmd.OutOrStdout(), result, outputFile)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			outputTextResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&parts, "parts", "n", defaults.Shares, "Total number of shares to create")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", defaults.Threshold, "Minimum shares needed to reconstruct")
	cmd.Flags().StringVar(&scheme, "scheme", defaults.Scheme, "Sharing scheme (prime127 or gf256)")
	cmd.Flags().StringVar(&secretHex, "secret", "", "Secret as hex")
	cmd.Flags().StringVar(&decimal, "decimal", "", "Secret as a decimal number")
	cmd.Flags().StringVar(&keyText, "key", "", "Store key as hex or 24 words (uses gf256)")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "Read raw secret bytes from stdin")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output shares to file")

	cmd.MarkFlagsMutuallyExclusive("secret", "decimal", "key", "stdin")

	return cmd
}

func keyBytes(env *Env, text string) ([]byte, error) {
	codec, err := env.codec()
	if err != nil {
		return nil, err
	}
	key, err := masterkey.Parse(codec, text)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()
	return key.Bytes()
}

func decimalBytes(text string) ([]byte, error) {
	v, err := parseValue(text, true)
	if err != nil {
		return nil, err
	}
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}
	return b, nil
}

func readStdinSecret(env *Env) ([]byte, error) {
	data, err := env.readAll()
	if err != nil {
		return nil, err
	}
	secret := []byte(strings.TrimRight(string(data), "\r\n"))
	secure.Zero(data)
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}
	return secret, nil
}

func saveSplitResult(w io.Writer, result SplitResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := storage.NewSecureStorage(filename, nil).Save(data, nil); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(w, "Shares saved to %s\n", filename)
	return nil
}

func outputTextResult(w io.Writer, result SplitResult) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	yellow.Fprintln(w, "=== SHAMIR SECRET SHARES ===")
	fmt.Fprintln(w)

	green.Fprintf(w, "Created %d %s shares with threshold %d\n", result.Total, result.Scheme, result.Threshold)
	fmt.Fprintf(w, "Any %d shares can reconstruct the original secret\n\n", result.Threshold)

	red.Fprintln(w, "⚠️  SECURITY WARNING:")
	fmt.Fprintln(w, "- Store each share in a different secure location")
	fmt.Fprintln(w, "- Never store shares together or electronically")
	fmt.Fprintln(w, "- Each share should be treated as highly sensitive")
	fmt.Fprintln(w)

	for i, share := range result.Shares {
		cyan.Fprintf(w, "Share %d of %d:\n", i+1, result.Total)
		fmt.Fprintf(w, "  %s\n\n", share.Share)
	}

	yellow.Fprintln(w, "=== END OF SHARES ===")
}
