package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/Davincible/shamirstore/internal/session"
	"github.com/Davincible/shamirstore/internal/validation"
	"github.com/Davincible/shamirstore/pkg/storage"
	"github.com/Davincible/shamirstore/pkg/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type storeFlags struct {
	path  string
	key   string
	plain bool
}

// open loads the store named by the flags into a new session.
func (f *storeFlags) open(env *Env, cmd *cobra.Command) (*session.Session, error) {
	s, err := env.newSession()
	if err != nil {
		return nil, err
	}

	keyText := ""
	if !f.plain {
		keyText, err = env.keyInput(cmd, f.key)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Load(f.path, keyText); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *storeFlags) save(s *session.Session) error {
	return s.Save(f.path, !f.plain)
}

type SectionOutput struct {
	Name    string        `json:"name"`
	Entries []EntryOutput `json:"entries"`
}

type EntryOutput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewStoreCommand(env *Env) *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage an encrypted secret store",
		Long: `A store is a set of named sections, each holding key/value entries.
It is saved as YAML sealed with the store key.

The key is read from --key, then $` + EnvKey + `, then a hidden prompt.
With --plain the file is read and written as unencrypted YAML.`,
	}

	cmd.PersistentFlags().StringVarP(&flags.path, "path", "p", env.config().StorePath(), "Store file")
	cmd.PersistentFlags().StringVarP(&flags.key, "key", "k", "", "Store key as hex or 24 words")
	cmd.PersistentFlags().BoolVar(&flags.plain, "plain", false, "Store file is unencrypted YAML")

	cmd.AddCommand(
		newStoreInitCommand(env, &flags),
		newStoreShowCommand(env, &flags),
		newStoreGetCommand(env, &flags),
		newStoreSetCommand(env, &flags),
		newStoreRemoveCommand(env, &flags),
		newStoreExportCommand(env, &flags),
		newStoreImportCommand(env, &flags),
	)

	return cmd
}

func newStoreInitCommand(env *Env, flags *storeFlags) *cobra.Command {
	var (
		seed  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new store with a fresh key",
		Example: `  # Create ./store.enc and print its key
  shamirstore store init

  # Create a store with sample entries
  shamirstore store init --path vault.enc --example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flags.path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", flags.path)
			}

			s, err := env.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			creds, err := s.Init(seed)
			if err != nil {
				return err
			}
			if err := flags.save(s); err != nil {
				return err
			}

			result := struct {
				Path string `json:"path"`
				KeyResult
			}{
				Path: flags.path,
				KeyResult: KeyResult{
					Hex:       creds.Hex,
					Mnemonic:  creds.Mnemonic,
					WordCount: len(strings.Fields(creds.Mnemonic)),
				},
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			outputKeyText(w, "STORE KEY", result.KeyResult, env.config().Security.WarningLevel)
			color.New(color.FgGreen).Fprintf(w, "✓ Store initialized successfully! Saved to %s\n", flags.path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "example", false, "Seed the store with sample entries")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing store")

	return cmd
}

func newStoreShowCommand(env *Env, flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every section and entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(env, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), sectionsOutput(s.Store()))
			}

			data, err := store.Marshal(s.Store())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newStoreGetCommand(env *Env, flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <section> <key>",
		Short: "Print one entry's value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(env, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			value, ok := s.Store().Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("entry %q not found in section %q", args[1], args[0])
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), EntryOutput{Key: args[1], Value: value})
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newStoreSetCommand(env *Env, flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <key> [value]",
		Short: "Add or replace an entry",
		Long: `Add or replace an entry. The section is created when missing. Without a
value argument the value is read from a hidden prompt.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, key := args[0], args[1]
			if err := validation.ValidateName("section", section); err != nil {
				return err
			}
			if err := validation.ValidateName("key", key); err != nil {
				return err
			}

			s, err := flags.open(env, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var value string
			if len(args) == 3 {
				value = args[2]
			} else {
				value, err = env.readHidden(cmd.ErrOrStderr(), "Value: ")
				if err != nil {
					return fmt.Errorf("failed to read value: %w", err)
				}
			}
			if err := validation.ValidateValue(value); err != nil {
				return err
			}

			if err := s.Store().Set(section, key, value); err != nil {
				return err
			}
			if err := flags.save(s); err != nil {
				return err
			}

			env.logger().Debug("set entry", "section", section, "key", key)
			color.New(color.FgGreen).Fprintln(cmd.ErrOrStderr(), "✓ Store saved successfully!")
			return nil
		},
	}
}

func newStoreRemoveCommand(env *Env, flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <section> [key]",
		Aliases: []string{"remove"},
		Short:   "Remove an entry, or a whole section",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(env, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 2 {
				if !s.Store().RemoveEntry(args[0], args[1]) {
					return fmt.Errorf("entry %q not found in section %q", args[1], args[0])
				}
			} else if !s.Store().RemoveSection(args[0]) {
				return fmt.Errorf("section %q not found", args[0])
			}

			if err := flags.save(s); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.ErrOrStderr(), "✓ Store saved successfully!")
			return nil
		},
	}
}

func newStoreExportCommand(env *Env, flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the store as unencrypted YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(env, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			target := args[0]
			if err := s.Save(target, false); err != nil {
				return err
			}

			w := cmd.ErrOrStderr()
			color.New(color.FgRed, color.Bold).Fprintln(w, "⚠️  The exported file is NOT encrypted.")
			fmt.Fprintln(w, "Delete it once it is no longer needed.")
			color.New(color.FgGreen).Fprintf(w, "✓ Exported to %s\n", target)
			return nil
		},
	}
}

func newStoreImportCommand(env *Env, flags *storeFlags) *cobra.Command {
	var shred bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the store with the contents of an unencrypted YAML file",
		Long: `Replace the store with the contents of a YAML file. When the store file
already exists the key is checked against it first. With --shred the YAML file
is overwritten with random bytes and removed after a successful import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if !flags.plain {
				keyText, err := env.keyInput(cmd, flags.key)
				if err != nil {
					return err
				}
				if _, statErr := os.Stat(flags.path); statErr == nil {
					if err := s.Load(flags.path, keyText); err != nil {
						return err
					}
				} else if err := s.UseKey(keyText); err != nil {
					return err
				}
			}

			if err := s.Load(args[0], ""); err != nil {
				return err
			}
			if err := flags.save(s); err != nil {
				return err
			}

			w := cmd.ErrOrStderr()
			color.New(color.FgGreen).Fprintf(w, "✓ Imported %d sections into %s\n", s.Store().Len(), flags.path)

			if shred {
				if err := storage.NewSecureStorage(args[0], nil).Delete(); err != nil {
					return fmt.Errorf("imported, but failed to shred %s: %w", args[0], err)
				}
				color.New(color.FgGreen).Fprintf(w, "✓ Shredded %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&shred, "shred", false, "Overwrite and remove the YAML file after importing")

	return cmd
}

func sectionsOutput(st *store.Store) []SectionOutput {
	out := make([]SectionOutput, 0, st.Len())
	for _, name := range st.Sections() {
		entries, _ := st.Entries(name)
		section := SectionOutput{Name: name, Entries: make([]EntryOutput, len(entries))}
		for i, e := range entries {
			section.Entries[i] = EntryOutput{Key: e.Key, Value: e.Value}
		}
		out = append(out, section)
	}
	return out
}
