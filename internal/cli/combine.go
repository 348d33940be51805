package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Davincible/shamirstore/internal/validation"
	"github.com/Davincible/shamirstore/pkg/crypto/secretsharing"
	"github.com/Davincible/shamirstore/pkg/secure"
	"github.com/Davincible/shamirstore/pkg/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type CombineResult struct {
	Scheme    secretsharing.SchemeType `json:"scheme"`
	Threshold int                      `json:"threshold"`
	Shares    int                      `json:"shares"`
	Verified  bool                     `json:"verified"`
	Hex       string                   `json:"hex"`
	Decimal   string                   `json:"decimal,omitempty"`
	Text      string                   `json:"text,omitempty"`
	Mnemonic  string                   `json:"mnemonic,omitempty"`
}

func NewCombineCommand(env *Env) *cobra.Command {
	var (
		inputFile    string
		force        bool
		showMnemonic bool
	)

	cmd := &cobra.Command{
		Use:   "combine [share...]",
		Short: "Combine shares to recover a secret",
		Long: `Combine shares produced by 'shamirstore split' to recover the secret.

Shares may be given as arguments, in a file written by 'split --output'
(or one share per line), or typed at the prompt.

With fewer shares than the threshold recorded in them, combine refuses to
run. --force combines anyway; the result is then marked UNVERIFIED and is
almost certainly not the secret.`,
		Example: `  # Combine shares from arguments
  shamirstore combine prime127-2-1-5-... prime127-2-3-5-...

  # Combine from file
  shamirstore combine --input shares.json

  # Recover a split store key as 24 words
  shamirstore combine --input shares.json --mnemonic`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				texts []string
				err   error
			)
			switch {
			case len(args) > 0:
				texts = args
			case inputFile != "":
				texts, err = readSharesFromFile(inputFile)
			default:
				texts, err = collectShares(env, cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			shares, err := parseShares(texts)
			if err != nil {
				return err
			}
			if err := secretsharing.CheckSet(shares); err != nil {
				return err
			}

			verified := secretsharing.Sufficient(shares)
			if !verified && !force {
				return fmt.Errorf("%d shares given but the threshold is %d (use --force to combine anyway)", len(shares), shares[0].Threshold)
			}

			secret, err := secretsharing.Combine(shares)
			if err != nil {
				return fmt.Errorf("failed to recover secret: %w", err)
			}
			defer secure.Zero(secret)

			result := CombineResult{
				Scheme:    shares[0].Scheme,
				Threshold: shares[0].Threshold,
				Shares:    len(shares),
				Verified:  verified,
				Hex:       hex.EncodeToString(secret),
			}
			if result.Scheme == secretsharing.SchemePrime127 {
				result.Decimal = new(big.Int).SetBytes(secret).String()
			}
			if printable(secret) {
				result.Text = string(secret)
			}
			if showMnemonic {
				codec, err := env.codec()
				if err != nil {
					return err
				}
				words, err := codec.Encode(new(big.Int).SetBytes(secret))
				if err != nil {
					return fmt.Errorf("failed to encode mnemonic: %w", err)
				}
				result.Mnemonic = words
			}

			env.logger().Debug("combined shares", "scheme", result.Scheme, "shares", result.Shares, "verified", verified)

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			outputCombineText(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "File containing shares")
	cmd.Flags().BoolVar(&force, "force", false, "Combine even below the threshold (result is unverified)")
	cmd.Flags().BoolVar(&showMnemonic, "mnemonic", false, "Also show the result as 24 words")

	return cmd
}

func parseShares(texts []string) ([]secretsharing.Share, error) {
	shares := make([]secretsharing.Share, 0, len(texts))
	for i, text := range texts {
		share, err := secretsharing.ParseShare(text)
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		shares = append(shares, share)
	}
	if len(shares) == 0 {
		return nil, secretsharing.ErrNoShares
	}
	return shares, nil
}

// readSharesFromFile accepts the JSON written by split --output or one share
// per line.
func readSharesFromFile(filename string) ([]string, error) {
	data, err := storage.NewSecureStorage(filename, nil).Load(nil)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var result SplitResult
		if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
			return nil, fmt.Errorf("failed to parse file: %w", err)
		}
		texts := make([]string, 0, len(result.Shares))
		for _, s := range result.Shares {
			texts = append(texts, s.Share)
		}
		if len(texts) == 0 {
			return nil, fmt.Errorf("no shares found in file")
		}
		return texts, nil
	}

	var texts []string
	for _, line := range strings.Split(validation.SanitizeInput(trimmed), "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			texts = append(texts, line)
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no shares found in file")
	}
	return texts, nil
}

// collectShares reads shares one per line until an empty line.
func collectShares(env *Env, w io.Writer) ([]string, error) {
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintln(w)
	yellow.Fprintln(w, "Enter shares (one per line)")
	fmt.Fprintln(w, "Press Enter on an empty line when done")
	fmt.Fprintln(w)

	var texts []string
	for {
		line, err := env.readLine(w, fmt.Sprintf("Share %d: ", len(texts)+1))
		if err != nil {
			if len(texts) > 0 {
				break
			}
			return nil, err
		}
		if line == "" {
			if len(texts) == 0 {
				continue
			}
			break
		}

		share, err := secretsharing.ParseShare(line)
		if err != nil {
			red.Fprintf(w, "  ✗ Invalid share: %v\n", err)
			continue
		}
		green.Fprintf(w, "  ✓ Valid share (%s, index %d, threshold %d)\n", share.Scheme, share.Index, share.Threshold)
		texts = append(texts, line)
	}

	fmt.Fprintf(w, "\nCollected %d shares\n", len(texts))
	return texts, nil
}

func printable(b []byte) bool {
	if len(b) == 0 || !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func outputCombineText(w io.Writer, result CombineResult) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	if result.Verified {
		green.Fprintln(w, "✓ Successfully recovered secret!")
	} else {
		red.Fprintf(w, "⚠️  UNVERIFIED: only %d of %d required shares were combined.\n", result.Shares, result.Threshold)
		fmt.Fprintln(w, "The value below is almost certainly not the secret.")
	}
	fmt.Fprintln(w)

	cyan.Fprintln(w, "Secret:")
	fmt.Fprintf(w, "  Hex:     %s\n", result.Hex)
	if result.Decimal != "" {
		fmt.Fprintf(w, "  Decimal: %s\n", result.Decimal)
	}
	if result.Text != "" {
		fmt.Fprintf(w, "  Text:    %s\n", result.Text)
	}
	if result.Mnemonic != "" {
		fmt.Fprintln(w)
		cyan.Fprintln(w, "Mnemonic:")
		printWords(w, result.Mnemonic)
	}
}
