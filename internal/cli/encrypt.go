package cli

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Davincible/shamirstore/pkg/crypto/masterkey"
	"github.com/Davincible/shamirstore/pkg/secure"
	"github.com/Davincible/shamirstore/pkg/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type payloadFlags struct {
	input  string
	output string
	text   string
	key    string
	armor  bool
}

func (f *payloadFlags) register(cmd *cobra.Command, textUsage string) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input file (default: stdin)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&f.text, "text", "", textUsage)
	cmd.Flags().StringVarP(&f.key, "key", "k", "", "Key as hex or 24 words (default: $"+EnvKey+" or prompt)")
	cmd.Flags().BoolVarP(&f.armor, "armor", "a", false, "Base64 ciphertext")
	cmd.MarkFlagsMutuallyExclusive("input", "text")
}

func NewEncryptCommand(env *Env) *cobra.Command {
	var flags payloadFlags

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file or text with a store key",
		Long: `Encrypt data with a 256-bit key using the configured AEAD cipher
(AES-256-GCM by default). The output is a 12-byte random nonce followed by
the ciphertext and its 16-byte authentication tag.

The key is given as 64 hex characters or 24 words, from --key, then
$` + EnvKey + `, then a prompt. When stdin is not a terminal the prompt reads
the key from the first line of stdin and the payload from the rest.`,
		Example: `  # Encrypt a file
  shamirstore encrypt -i document.pdf -o document.pdf.enc

  # Encrypt text from stdin
  echo "secret message" | SHAMIRSTORE_KEY=... shamirstore encrypt --armor

  # Encrypt text directly with a key from the environment
  SHAMIRSTORE_KEY=... shamirstore encrypt --text "my secret" --armor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(env, cmd, flags.key)
			if err != nil {
				return err
			}
			defer key.Destroy()

			plaintext, err := readPayload(env, flags)
			if err != nil {
				return err
			}
			defer secure.Zero(plaintext)

			sealer, err := env.aead()
			if err != nil {
				return err
			}

			var ciphertext []byte
			err = key.Use(func(raw []byte) error {
				var eerr error
				ciphertext, eerr = sealer.Encrypt(raw, plaintext)
				return eerr
			})
			if err != nil {
				return fmt.Errorf("failed to encrypt: %w", err)
			}

			if flags.armor {
				ciphertext = []byte(base64.StdEncoding.EncodeToString(ciphertext) + "\n")
			}

			env.logger().Debug("encrypted payload", "cipher", sealer.Cipher(), "bytes", len(plaintext))
			return writePayload(cmd, flags.output, ciphertext, "Encrypted")
		},
	}

	flags.register(cmd, "Text to encrypt")

	return cmd
}

func NewDecryptCommand(env *Env) *cobra.Command {
	var flags payloadFlags

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt data written by 'shamirstore encrypt'",
		Long: `Decrypt data sealed by 'shamirstore encrypt'. Decryption fails without
output if the key is wrong or the data was modified.`,
		Example: `  # Decrypt a file
  shamirstore decrypt -i document.pdf.enc -o document.pdf

  # Decrypt armored text
  shamirstore decrypt --armor --text "q83v..."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(env, cmd, flags.key)
			if err != nil {
				return err
			}
			defer key.Destroy()

			data, err := readPayload(env, flags)
			if err != nil {
				return err
			}

			if flags.armor {
				decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(string(data)), ""))
				if err != nil {
					return fmt.Errorf("invalid armored data: %w", err)
				}
				data = decoded
			}

			sealer, err := env.aead()
			if err != nil {
				return err
			}

			var plaintext []byte
			err = key.Use(func(raw []byte) error {
				var derr error
				plaintext, derr = sealer.Decrypt(raw, data)
				return derr
			})
			if err != nil {
				return fmt.Errorf("failed to decrypt: %w", err)
			}
			defer secure.Zero(plaintext)

			return writePayload(cmd, flags.output, plaintext, "Decrypted")
		},
	}

	flags.register(cmd, "Armored text to decrypt")

	return cmd
}

func resolveKey(env *Env, cmd *cobra.Command, flagValue string) (*masterkey.Key, error) {
	input, err := env.keyInput(cmd, flagValue)
	if err != nil {
		return nil, err
	}
	codec, err := env.codec()
	if err != nil {
		return nil, err
	}
	key, err := masterkey.Parse(codec, input)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return key, nil
}

func readPayload(env *Env, flags payloadFlags) ([]byte, error) {
	switch {
	case flags.text != "":
		return []byte(flags.text), nil
	case flags.input != "":
		data, err := storage.NewSecureStorage(flags.input, nil).Load(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, nil
	default:
		data, err := env.readAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}
}

func writePayload(cmd *cobra.Command, output string, data []byte, verb string) error {
	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := storage.NewSecureStorage(output, nil).Save(data, nil); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Fprintf(cmd.ErrOrStderr(), "✓ %s %d bytes to %s\n", verb, len(data), output)
	return nil
}
