// Package toml loads pipeline configuration from TOML files.
package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/llmpatch"
)

// fileConfig is the on-disk configuration shape.
type fileConfig struct {
	Generation generationConfig `toml:"generation"`
	Policy     policyConfig     `toml:"policy"`
}

type generationConfig struct {
	Model        string `toml:"model"`
	MaxAttempts  int    `toml:"max_attempts"`
	PreviewBytes int    `toml:"preview_bytes"`
	MaxDiffBytes int    `toml:"max_diff_bytes"`
}

type policyConfig struct {
	AllowExact    []string `toml:"allow_exact"`
	AllowPrefixes []string `toml:"allow_prefixes"`
	DenyExact     []string `toml:"deny_exact"`
	DenyPrefixes  []string `toml:"deny_prefixes"`
}

// LoadConfig reads the TOML file at path and returns the pipeline
// configuration, starting from llmpatch.DefaultConfig and overriding only
// the fields the file sets. A missing file yields the defaults; a present
// but unparseable file is an error.
func LoadConfig(path string) (llmpatch.Config, error) {
	cfg := llmpatch.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return llmpatch.Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return llmpatch.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Generation.Model != "" {
		cfg.Model = fc.Generation.Model
	}
	if fc.Generation.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Generation.MaxAttempts
	}
	if fc.Generation.PreviewBytes > 0 {
		cfg.PreviewBytes = fc.Generation.PreviewBytes
	}
	if fc.Generation.MaxDiffBytes > 0 {
		cfg.MaxDiffBytes = fc.Generation.MaxDiffBytes
	}

	// Policy lists replace the defaults wholesale when present: merging
	// allow/deny lists would loosen or tighten the rails unpredictably.
	if fc.Policy.AllowExact != nil {
		cfg.Policy.AllowExact = fc.Policy.AllowExact
	}
	if fc.Policy.AllowPrefixes != nil {
		cfg.Policy.AllowPrefixes = fc.Policy.AllowPrefixes
	}
	if fc.Policy.DenyExact != nil {
		cfg.Policy.DenyExact = fc.Policy.DenyExact
	}
	if fc.Policy.DenyPrefixes != nil {
		cfg.Policy.DenyPrefixes = fc.Policy.DenyPrefixes
	}

	return cfg, nil
}
