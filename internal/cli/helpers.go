package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Davincible/shamirstore/internal/session"
	"github.com/Davincible/shamirstore/pkg/config"
	"github.com/Davincible/shamirstore/pkg/crypto/aead"
	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/Davincible/shamirstore/pkg/secure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// EnvKey holds a master key (hex or mnemonic) for non-interactive use.
const EnvKey = "SHAMIRSTORE_KEY"

// Env is shared by every command.
type Env struct {
	Config *config.Config
	// Manager persists changes made by the config command. Nil opens the
	// default config file on first use.
	Manager  *config.ConfigManager
	Logger   *slog.Logger
	LogLevel *slog.LevelVar
	Stdin    io.Reader

	in *bufio.Reader
}

func (e *Env) config() *config.Config {
	if e.Config == nil {
		e.Config = config.DefaultConfig()
	}
	return e.Config
}

func (e *Env) configManager() (*config.ConfigManager, error) {
	if e.Manager == nil {
		manager, err := config.NewConfigManager()
		if err != nil {
			return nil, err
		}
		e.Manager = manager
	}
	return e.Manager, nil
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) reader() *bufio.Reader {
	if e.in == nil {
		stdin := e.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		e.in = bufio.NewReader(stdin)
	}
	return e.in
}

func (e *Env) codec() (*mnemonic.Codec, error) {
	return e.config().Codec()
}

func (e *Env) aead() (*aead.Codec, error) {
	return e.config().AEAD()
}

func (e *Env) newSession() (*session.Session, error) {
	codec, err := e.codec()
	if err != nil {
		return nil, err
	}
	sealer, err := e.aead()
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Codec:  codec,
		AEAD:   sealer,
		Logger: e.logger(),
	}), nil
}

// readLine reads one line, trimmed. A final line without a newline is
// accepted.
func (e *Env) readLine(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	line, err := e.reader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readHidden reads a line without echo when stdin is a terminal.
func (e *Env) readHidden(w io.Writer, prompt string) (string, error) {
	if f, ok := e.stdinFile(); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		defer secure.Zero(b)
		return strings.TrimSpace(string(b)), nil
	}

	// Fallback for non-terminal
	return e.readLine(w, prompt)
}

func (e *Env) stdinFile() (*os.File, bool) {
	if e.Stdin == nil {
		return os.Stdin, true
	}
	f, ok := e.Stdin.(*os.File)
	return f, ok
}

func (e *Env) readAll() ([]byte, error) {
	return io.ReadAll(e.reader())
}

// keyInput returns the master key text from the flag, then SHAMIRSTORE_KEY,
// then a hidden prompt.
func (e *Env) keyInput(cmd *cobra.Command, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvKey)); v != "" {
		return v, nil
	}

	key, err := e.readHidden(cmd.ErrOrStderr(), "Enter key (64 hex characters or 24 words): ")
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	return key, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printWords prints a mnemonic four words per line with word numbers.
func printWords(w io.Writer, words string) {
	list := strings.Fields(words)
	for i := 0; i < len(list); i += 4 {
		end := i + 4
		if end > len(list) {
			end = len(list)
		}
		var row []string
		for j := i; j < end; j++ {
			row = append(row, fmt.Sprintf("%2d. %-10s", j+1, list[j]))
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(row, " "), " "))
	}
}

// printKeyWarning prints the key handling reminder for the configured
// security.warning_level.
func printKeyWarning(w io.Writer, level string) {
	if level == "none" {
		return
	}
	red := color.New(color.FgRed, color.Bold)

	red.Fprintln(w, "⚠️  IMPORTANT: Save this key securely!")
	fmt.Fprintln(w, "- Anyone holding the key or the words can decrypt the store")
	fmt.Fprintln(w, "- Without them the store cannot be recovered")
	fmt.Fprintln(w, "- Consider splitting the key with 'shamirstore split --key'")
	if level == "paranoid" {
		fmt.Fprintln(w, "- Clear your terminal scrollback once the words are written down")
		fmt.Fprintln(w, "- Never store the key on the same device as the store")
	}
}
