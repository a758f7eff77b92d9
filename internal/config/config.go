package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const FileName = ".slrc.yaml"

// REPL holds the interactive driver settings.
type REPL struct {
	Path         string `yaml:"-"`
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"`
	HistoryFile  string `yaml:"history_file"`
	HistoryLimit int    `yaml:"history_limit"`
	Banner       bool   `yaml:"banner"`
}

// replDisk mirrors the file; pointers tell absent keys from zero values.
type replDisk struct {
	Prompt       *string `yaml:"prompt"`
	Continuation *string `yaml:"continuation"`
	HistoryFile  *string `yaml:"history_file"`
	HistoryLimit *int    `yaml:"history_limit"`
	Banner       *bool   `yaml:"banner"`
}

// Default returns the settings used when no file exists. History lives in
// home; an empty home disables it.
func Default(home string) *REPL {
	cfg := &REPL{
		Prompt:       "> ",
		Continuation: ".. ",
		HistoryLimit: 1000,
		Banner:       true,
	}
	if home != "" {
		cfg.HistoryFile = filepath.Join(home, ".sl_history")
		cfg.Path = filepath.Join(home, FileName)
	}
	return cfg
}

// DefaultPath returns $HOME/.slrc.yaml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads the config at path over the defaults. A missing file is not an
// error; a malformed file or an unknown key is.
func Load(path string) (*REPL, error) {
	home, _ := os.UserHomeDir()
	cfg := Default(home)
	if path == "" {
		return cfg, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	cfg.Path = abs

	file, err := os.Open(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", abs, err)
	}
	defer file.Close()

	var raw replDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	raw.apply(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

func (d *replDisk) apply(cfg *REPL) {
	if d.Prompt != nil {
		cfg.Prompt = *d.Prompt
	}
	if d.Continuation != nil {
		cfg.Continuation = *d.Continuation
	}
	if d.HistoryFile != nil {
		cfg.HistoryFile = expandHome(*d.HistoryFile)
	}
	if d.HistoryLimit != nil {
		cfg.HistoryLimit = *d.HistoryLimit
	}
	if d.Banner != nil {
		cfg.Banner = *d.Banner
	}
}

func (c *REPL) validate() error {
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit)
	}
	return nil
}

// Write serialises cfg to path, or to cfg.Path when path is empty.
func Write(cfg *REPL, path string) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	if path == "" {
		if cfg.Path == "" {
			return fmt.Errorf("config: missing path")
		}
		path = cfg.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", path, err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal %s: %w", abs, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", abs, err)
	}
	cfg.Path = abs
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *REPL) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
