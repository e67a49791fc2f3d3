package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sudovim/sudovim/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	shadowDirName = "sudovim"

	DefaultEditor      = "vim"
	DefaultSudoCommand = "sudo"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".config", "sudovim", "config.yaml")

	ErrNoDataHome = errors.New("neither XDG_DATA_HOME nor HOME is set")
)

type Config struct {
	ShadowRoot  string `yaml:"shadow_root"`
	Editor      string `yaml:"editor"`
	SudoCommand string `yaml:"sudo_command"`
	LogFile     string `yaml:"log_file,omitempty"`
	Path        string `yaml:"-"`
}

// DefaultShadowRoot is $XDG_DATA_HOME/sudovim, or $HOME/sudovim when
// XDG_DATA_HOME is unset.
func DefaultShadowRoot() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = os.Getenv("HOME")
	}
	if base == "" {
		return "", ErrNoDataHome
	}
	return filepath.Join(base, shadowDirName), nil
}

// Validate fills defaults and makes every path absolute.
func (c *Config) Validate() error {
	var err error

	if c.ShadowRoot == "" {
		if c.ShadowRoot, err = DefaultShadowRoot(); err != nil {
			return err
		}
	}
	if c.ShadowRoot, err = utils.ResolvePath(c.ShadowRoot); err != nil {
		return fmt.Errorf("shadow root: %w", err)
	}

	if c.Editor == "" {
		c.Editor = DefaultEditor
	}

	if c.LogFile != "" {
		if c.LogFile, err = utils.ResolvePath(c.LogFile); err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		if c.LogFile == c.ShadowRoot || utils.IsWithin(c.ShadowRoot, c.LogFile) {
			return fmt.Errorf("log file %s must not live inside the shadow root", c.LogFile)
		}
	}

	return nil
}

// Dump writes the effective configuration as YAML.
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
