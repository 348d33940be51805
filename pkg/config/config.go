// Package config provides configuration management for the shamirstore tool
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Davincible/shamirstore/pkg/crypto/aead"
	"github.com/Davincible/shamirstore/pkg/crypto/mnemonic"
	"github.com/Davincible/shamirstore/pkg/crypto/secretsharing"
	"github.com/Davincible/shamirstore/pkg/crypto/shamir"
	"github.com/Davincible/shamirstore/pkg/errkind"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "SHAMIRSTORE_CONFIG"

var ErrInvalidConfig = errkind.New(errkind.Value, "invalid configuration")

// Config represents the main configuration structure
type Config struct {
	Version  string          `json:"version"`
	Defaults DefaultSettings `json:"defaults"`
	Security SecurityConfig  `json:"security"`
	Mnemonic MnemonicConfig  `json:"mnemonic"`
	UI       UIConfig        `json:"ui"`
}

// DefaultSettings contains default values for common operations
type DefaultSettings struct {
	Scheme    string `json:"scheme"`     // prime127 or gf256
	Threshold int    `json:"threshold"`  // Default: 3
	Shares    int    `json:"shares"`     // Default: 5
	StorePath string `json:"store_path"` // Empty: ./store.enc
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	Cipher           string `json:"cipher"`            // aes-256-gcm or chacha20-poly1305
	DisableClipboard bool   `json:"disable_clipboard"` // Prevent clipboard usage
	WarningLevel     string `json:"warning_level"`     // none, normal, paranoid
}

// MnemonicConfig selects the dictionary used for key mnemonics.
type MnemonicConfig struct {
	WordList string `json:"wordlist"` // Custom 2048-word list; empty uses English
}

// UIConfig contains user interface settings
type UIConfig struct {
	UseColor  bool   `json:"use_color"` // Enable colored output
	Verbosity string `json:"verbosity"` // quiet, normal, verbose
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager loads the configuration from the default location,
// writing defaults there when no file exists yet.
func NewConfigManager() (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath)
}

// NewConfigManagerAt is NewConfigManager for an explicit path.
func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{configPath: configPath}

	err := cm.LoadConfig()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cm.config = DefaultConfig()
		if err := cm.SaveConfig(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	case err != nil:
		return nil, err
	}

	if err := cm.config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cm, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: DefaultSettings{
			Scheme:    string(secretsharing.SchemePrime127),
			Threshold: 3,
			Shares:    5,
			StorePath: "",
		},
		Security: SecurityConfig{
			Cipher:           string(aead.DefaultCipher),
			DisableClipboard: false,
			WarningLevel:     "normal",
		},
		Mnemonic: MnemonicConfig{
			WordList: "",
		},
		UI: UIConfig{
			UseColor:  true,
			Verbosity: "normal",
		},
	}
}

// Validate checks that every setting names something that exists.
func (c *Config) Validate() error {
	if _, err := secretsharing.DefaultRegistry.Get(secretsharing.SchemeType(c.Defaults.Scheme)); err != nil {
		return fmt.Errorf("%w: defaults.scheme: %v", ErrInvalidConfig, err)
	}

	split := shamir.Config{Parts: c.Defaults.Shares, Threshold: c.Defaults.Threshold}
	if err := split.Validate(); err != nil {
		return fmt.Errorf("%w: defaults: %v", ErrInvalidConfig, err)
	}

	if _, err := aead.ParseCipher(c.Security.Cipher); err != nil {
		return fmt.Errorf("%w: security.cipher: %v", ErrInvalidConfig, err)
	}

	switch c.Security.WarningLevel {
	case "", "none", "normal", "paranoid":
	default:
		return fmt.Errorf("%w: security.warning_level must be none, normal or paranoid, got %q", ErrInvalidConfig, c.Security.WarningLevel)
	}

	switch c.UI.Verbosity {
	case "", "quiet", "normal", "verbose":
	default:
		return fmt.Errorf("%w: ui.verbosity must be quiet, normal or verbose, got %q", ErrInvalidConfig, c.UI.Verbosity)
	}

	return nil
}

// Codec returns the mnemonic codec for the configured dictionary.
func (c *Config) Codec() (*mnemonic.Codec, error) {
	if c.Mnemonic.WordList == "" {
		return mnemonic.Default(), nil
	}
	dict, err := mnemonic.LoadDictionaryFile(expandHome(c.Mnemonic.WordList))
	if err != nil {
		return nil, fmt.Errorf("failed to load word list %s: %w", c.Mnemonic.WordList, err)
	}
	return mnemonic.NewCodec(dict), nil
}

// AEAD returns the store codec for the configured cipher.
func (c *Config) AEAD() (*aead.Codec, error) {
	cipher, err := aead.ParseCipher(c.Security.Cipher)
	if err != nil {
		return nil, err
	}
	return aead.New(cipher)
}

// StorePath returns the configured store path, or the default encrypted
// path in the working directory.
func (c *Config) StorePath() string {
	if c.Defaults.StorePath != "" {
		return expandHome(c.Defaults.StorePath)
	}
	return "store.enc"
}

// LoadConfig loads the configuration from disk
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// SetConfig validates and replaces the configuration
func (cm *ConfigManager) SetConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	cm.config = config
	return nil
}

// Set assigns one setting by its dotted JSON name, for example
// "defaults.threshold", then validates and saves the result. On error the
// current configuration is kept.
func (cm *ConfigManager) Set(name, value string) error {
	previous := cm.config
	next := *previous
	if err := next.set(name, value); err != nil {
		return err
	}
	if err := cm.SetConfig(&next); err != nil {
		return err
	}
	if err := cm.SaveConfig(); err != nil {
		cm.config = previous
		return err
	}
	return nil
}

// SettingNames lists the names accepted by Set.
var SettingNames = []string{
	"defaults.scheme",
	"defaults.threshold",
	"defaults.shares",
	"defaults.store_path",
	"security.cipher",
	"security.disable_clipboard",
	"security.warning_level",
	"mnemonic.wordlist",
	"ui.use_color",
	"ui.verbosity",
}

func (c *Config) set(name, value string) error {
	var err error
	switch name {
	case "defaults.scheme":
		c.Defaults.Scheme = value
	case "defaults.threshold":
		c.Defaults.Threshold, err = strconv.Atoi(value)
	case "defaults.shares":
		c.Defaults.Shares, err = strconv.Atoi(value)
	case "defaults.store_path":
		c.Defaults.StorePath = value
	case "security.cipher":
		c.Security.Cipher = value
	case "security.disable_clipboard":
		c.Security.DisableClipboard, err = strconv.ParseBool(value)
	case "security.warning_level":
		c.Security.WarningLevel = value
	case "mnemonic.wordlist":
		c.Mnemonic.WordList = value
	case "ui.use_color":
		c.UI.UseColor, err = strconv.ParseBool(value)
	case "ui.verbosity":
		c.UI.Verbosity = value
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidConfig, name)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	return nil
}

func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	if customPath := os.Getenv(EnvConfigPath); customPath != "" {
		return customPath, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "shamirstore", "config.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "shamirstore", "config.json"), nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
