// Package config resolves treezy settings from flags, TREEZY_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sadopc/treezy/internal/output"
	"github.com/sadopc/treezy/internal/walker"
)

// EnvPrefix is prepended to every environment key, e.g. TREEZY_DTYPE.
const EnvPrefix = "TREEZY"

const (
	DefaultSSHPort    = 22
	DefaultSSHTimeout = 15 * time.Second
)

// Keys shared by flags, environment and config files.
const (
	KeyConfig     = "config"
	KeyNoRecurse  = "no-recurse"
	KeyDtype      = "dtype"
	KeySort       = "sort"
	KeyMaxPath    = "max-path"
	KeyMaxDepth   = "max-depth"
	KeyFormat     = "format"
	KeyOutput     = "output"
	KeyColor      = "color"
	KeyDebug      = "debug"
	KeySSHPort    = "ssh-port"
	KeySSHBatch   = "ssh-batch"
	KeySSHTimeout = "ssh-timeout"
)

// Config is the resolved, validated configuration for one run.
type Config struct {
	Recurse    bool
	ShowHint   bool
	Sort       bool
	MaxPath    int
	MaxDepth   int
	Format     output.Format
	Output     string
	Color      output.ColorMode
	Debug      bool
	SSHPort    int
	SSHBatch   bool
	SSHTimeout time.Duration

	// File is the config file that was read, if any.
	File string
}

// RegisterFlags defines every configurable flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "Config file (default $XDG_CONFIG_HOME/treezy/config.*)")
	fs.BoolP(KeyNoRecurse, "n", false, "List only the immediate entries of the directory")
	fs.Bool(KeyDtype, false, "Print the raw listing type hint (dtype) for each entry")
	fs.BoolP(KeySort, "s", false, "Sort entries by name within each directory")
	fs.Int(KeyMaxPath, walker.DefaultMaxPath, "Maximum path length in bytes")
	fs.IntP(KeyMaxDepth, "d", 0, "Maximum directory depth (0 = unlimited)")
	fs.StringP(KeyFormat, "f", string(output.FormatText), "Output format: text or json")
	fs.StringP(KeyOutput, "o", "-", "Write records to this file instead of stdout (\"-\" = stdout)")
	fs.String(KeyColor, string(output.ColorAuto), "Color type tags: auto, always or never")
	fs.Bool(KeyDebug, false, "Trace directory visits to stderr")
	fs.Int(KeySSHPort, DefaultSSHPort, "SSH port for remote walks")
	fs.Bool(KeySSHBatch, false, "Disable SSH password prompts (key/agent auth only)")
	fs.Duration(KeySSHTimeout, DefaultSSHTimeout, "SSH connection timeout")
}

// Load resolves the flags registered on fs against the environment and the
// config file. A config file named with --config must exist; the default
// location is optional.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	file, err := readConfigFile(v, v.GetString(KeyConfig))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Recurse:    !v.GetBool(KeyNoRecurse),
		ShowHint:   v.GetBool(KeyDtype),
		Sort:       v.GetBool(KeySort),
		MaxPath:    v.GetInt(KeyMaxPath),
		MaxDepth:   v.GetInt(KeyMaxDepth),
		Output:     v.GetString(KeyOutput),
		Debug:      v.GetBool(KeyDebug),
		SSHPort:    v.GetInt(KeySSHPort),
		SSHBatch:   v.GetBool(KeySSHBatch),
		SSHTimeout: v.GetDuration(KeySSHTimeout),
		File:       file,
	}

	if cfg.Format, err = output.ParseFormat(v.GetString(KeyFormat)); err != nil {
		return Config{}, err
	}
	if cfg.Color, err = output.ParseColorMode(v.GetString(KeyColor)); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks numeric ranges.
func (c Config) Validate() error {
	if c.MaxPath <= 0 {
		return errors.New("max-path must be greater than 0")
	}
	if c.MaxDepth < 0 {
		return errors.New("max-depth cannot be negative")
	}
	if c.SSHPort < 1 || c.SSHPort > 65535 {
		return errors.New("ssh-port must be between 1 and 65535")
	}
	if c.SSHTimeout < 0 {
		return errors.New("ssh-timeout cannot be negative")
	}
	return nil
}

func readConfigFile(v *viper.Viper, explicit string) (string, error) {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("reading config file %s: %w", explicit, err)
		}
		return v.ConfigFileUsed(), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}
	v.AddConfigPath(filepath.Join(dir, "treezy"))
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}
