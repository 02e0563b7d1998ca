package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variables overriding config values.
const (
	ConfigPathEnv   = "PM_CONFIG"
	RegistryPathEnv = "PM_REGISTRY_PATH"
)

// Tool activation modes for [env].
const (
	EnvAuto   = "auto"
	EnvAlways = "always"
	EnvNever  = "never"
)

// DefaultShell runs compile commands when shell is unset.
const DefaultShell = "/bin/sh"

// DefaultRememberDepth bounds "remember-under" scans when no depth is given.
const DefaultRememberDepth = 2

// EnvConfig controls directory-scoped tool loaders.
type EnvConfig struct {
	Direnv string `toml:"direnv"` // auto, always, or never
	Mise   string `toml:"mise"`   // auto, always, or never
}

// ThemeConfig selects colors and symbols for interactive output.
type ThemeConfig struct {
	Name     string `toml:"name"`     // preset: default, none, nord, dracula
	Mode     string `toml:"mode"`     // auto, light, or dark
	Nerdfont bool   `toml:"nerdfont"` // use nerd font backend symbols
}

// Config holds the pm configuration
type Config struct {
	PreferOtherWindow bool        `toml:"prefer_other_window"`
	RegistryPath      string      `toml:"registry_path"`
	TrustedPath       string      `toml:"trusted_path"`
	LogDir            string      `toml:"log_dir"`
	Shell             string      `toml:"shell"`
	TrustAll          bool        `toml:"trust_all"`
	RememberDepth     int         `toml:"remember_depth"`
	Env               EnvConfig   `toml:"env"`
	Theme             ThemeConfig `toml:"theme"`

	// Commands is the raw default command set, validated by the commands package.
	Commands []map[string]any `toml:"commands"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Shell:         DefaultShell,
		RememberDepth: DefaultRememberDepth,
		Env: EnvConfig{
			Direnv: EnvAuto,
			Mise:   EnvAuto,
		},
	}
}

// DefaultCommands returns the default command set as a raw list suitable for
// schema validation.
func (c *Config) DefaultCommands() []any {
	raw := make([]any, len(c.Commands))
	for i, m := range c.Commands {
		raw[i] = m
	}
	return raw
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the global config file path, honoring PM_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pm", "config.toml"), nil
}

// Load reads the global config and applies environment overrides.
// Returns Default() if the file doesn't exist (no error).
// Returns error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return withEnv(Default())
	}
	return LoadFile(path)
}

// LoadFile reads the config at path and applies environment overrides.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return withEnv(Default())
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return withEnv(cfg)
}

func withEnv(cfg Config) (Config, error) {
	if p := os.Getenv(RegistryPathEnv); p != "" {
		cfg.RegistryPath = p
		if err := cfg.normalize(); err != nil {
			return Default(), fmt.Errorf("%s: %w", RegistryPathEnv, err)
		}
	}
	return cfg, nil
}

// normalize validates enums and paths, expands ~ and fills empty values.
func (c *Config) normalize() error {
	if err := validateEnum(c.Env.Direnv, "env.direnv", ValidEnvModes); err != nil {
		return err
	}
	if err := validateEnum(c.Env.Mise, "env.mise", ValidEnvModes); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Name, "theme.name", ValidThemeNames); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return err
	}
	if c.RememberDepth < 0 {
		return fmt.Errorf("remember_depth must not be negative, got %d", c.RememberDepth)
	}

	for _, field := range []struct {
		name string
		ptr  *string
	}{
		{"registry_path", &c.RegistryPath},
		{"trusted_path", &c.TrustedPath},
		{"log_dir", &c.LogDir},
	} {
		if err := ValidatePath(*field.ptr, field.name); err != nil {
			return err
		}
		expanded, err := expandPath(*field.ptr)
		if err != nil {
			return fmt.Errorf("expand %s: %w", field.name, err)
		}
		*field.ptr = expanded
	}

	if c.Env.Direnv == "" {
		c.Env.Direnv = EnvAuto
	}
	if c.Env.Mise == "" {
		c.Env.Mise = EnvAuto
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
	if c.RememberDepth == 0 {
		c.RememberDepth = DefaultRememberDepth
	}
	return nil
}

const defaultConfig = `# pm configuration

# Show dispatched command output in another tmux window (or a background log)
# instead of the current terminal.
# prefer_other_window = false

# State file locations. Must be absolute or start with ~.
# registry_path = "~/.pm/projects.json"   # also PM_REGISTRY_PATH
# trusted_path = "~/.pm/trusted.json"
# log_dir = "~/.pm/logs"

# Shell used for compile commands
# shell = "/bin/sh"

# Trust every directory-local .pm.toml/.pm.yaml without asking
# trust_all = false

# Default depth for "pm projects remember-under"
# remember_depth = 2

# Directory tooling: "auto" loads a tool only if it was already active in the
# invoking shell, "always" forces it, "never" disables it.
# [env]
# direnv = "auto"
# mise = "auto"

# Interactive prompt appearance
# [theme]
# name = "default"   # default, none, nord, or dracula
# mode = "auto"      # auto, light, or dark
# nerdfont = false   # nerd font icons for VCS backends

# Default custom commands, used when a project defines none or its local
# commands are invalid.
#
# type is one of:
#   compile   - run command as a shell command in the project root
#   call      - run a built-in action in the project environment
#   bare-call - run a built-in action as-is
#
# Compile commands may use {root}, {project} and {instance} placeholders.
#
# [[commands]]
# key = "m"
# description = "make"
# type = "compile"
# command = "make -k"
# identifier = "make"
#
# [[commands]]
# key = "s"
# description = "shell"
# type = "call"
# command = { action = "shell" }
`

// DefaultConfig returns the default global configuration template content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, writeTemplate(path, defaultConfig, force)
}

func writeTemplate(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
