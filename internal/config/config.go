// Package config loads .sexpfmt.toml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/r9s-ai/sexpfmt/internal/pretty"
)

// FileName is the config file looked up in the working directory.
const FileName = ".sexpfmt.toml"

// Config mirrors the keys of a config file. Zero values mean "not set".
// Normalize is nil when the key is absent, which leaves normalization on.
type Config struct {
	Path      string `toml:"-"`
	Indent    int    `toml:"indent"`
	Tabs      bool   `toml:"tabs"`
	Policy    string `toml:"policy"`
	Normalize *bool  `toml:"normalize"`
}

// Load decodes and validates the config file at path.
func Load(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("indent") && (cfg.Indent < 1 || cfg.Indent > 16) {
		return Config{}, fmt.Errorf("%s: indent must be between 1 and 16, got %d", path, cfg.Indent)
	}
	if _, err := pretty.ParsePolicy(cfg.Policy); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover returns the path of the config file in dir, if present.
func Discover(dir string) (string, bool, error) {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat config %q: %w", path, err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config %q is a directory", path)
	}
	return path, true, nil
}

// Resolve loads explicit when set, otherwise the file discovered in dir.
// With neither, it returns an empty Config.
func Resolve(explicit, dir string) (Config, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return Load(explicit)
	}
	if dir == "" {
		return Config{}, nil
	}
	path, ok, err := Discover(dir)
	if err != nil || !ok {
		return Config{}, err
	}
	return Load(path)
}

// Options converts the config to formatter options, filling defaults.
// Normalization defaults to on so that reformatting is a no-op.
func (c Config) Options() pretty.Options {
	opts := pretty.DefaultOptions()
	if c.Indent > 0 {
		opts.IndentSize = c.Indent
	}
	opts.UseTabs = c.Tabs
	// Validated by Load.
	opts.Policy, _ = pretty.ParsePolicy(c.Policy)
	opts.NormalizeSpace = c.Normalize == nil || *c.Normalize
	return opts
}
