// Package cli implements the shamirstore command line.
package cli

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Errors are returned to the caller,
// which prints them and sets the exit status.
func NewRootCommand(env *Env, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shamirstore",
		Short: "Encrypted secret store with mnemonic keys and Shamir sharing",
		Long: `Shamirstore keeps named secrets in an encrypted two-level store.

The store key is 256 bits and can be written down as 24 words. Keys and
other secrets can be split with Shamir's Secret Sharing so that any
threshold of shares recovers them.

Features:
- AES-256-GCM or ChaCha20-Poly1305 store encryption
- 24-word mnemonic encoding with an 8-bit checksum
- Threshold sharing over the prime field 2^127 - 1, or byte-wise in GF(256)
- Interactive terminal editor ('shamirstore tui')`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose && env.LogLevel != nil {
				env.LogLevel.Set(slog.LevelDebug)
			}
			if jsonOutput(cmd) || !env.config().UI.UseColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.AddCommand(
		NewGenerateCommand(env),
		NewEncodeCommand(env),
		NewDecodeCommand(env),
		NewSplitCommand(env),
		NewCombineCommand(env),
		NewEncryptCommand(env),
		NewDecryptCommand(env),
		NewStoreCommand(env),
		NewTUICommand(env),
		NewConfigCommand(env),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")

	return rootCmd
}
