// Package config loads the optional annogen.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "annogen.toml"

// Config is the decoded annogen.toml. Fields missing from the file keep the
// values of Default().
type Config struct {
	Limits Limits      `toml:"limits"`
	Lock   LockConfig  `toml:"lock"`
	Cache  CacheConfig `toml:"cache"`
	Output Output      `toml:"output"`

	// Path is the file the config was read from ("" for defaults).
	Path string `toml:"-"`
}

// Limits bounds the input the tool accepts.
type Limits struct {
	MaxLine    int `toml:"max_line"`
	MaxName    int `toml:"max_name"`
	MaxJobs    int `toml:"max_jobs"`
	MaxReplays int `toml:"max_replays"`
}

// LockConfig locates and paces the output lock.
type LockConfig struct {
	// Path of the lock file; "" means "<output>.lock".
	Path      string `toml:"path"`
	BackoffMS int    `toml:"backoff_ms"`
}

// Backoff returns the retry delay as a duration.
func (l LockConfig) Backoff() time.Duration {
	return time.Duration(l.BackoffMS) * time.Millisecond
}

// CacheConfig controls the snapshot cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Output tweaks the generated file.
type Output struct {
	TimestampFormat string `toml:"timestamp_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxLine:    4096,
			MaxName:    255,
			MaxJobs:    0,
			MaxReplays: 100000,
		},
		Lock:   LockConfig{BackoffMS: 50},
		Cache:  CacheConfig{Enabled: true},
		Output: Output{TimestampFormat: time.RFC3339},
	}
}

// Find walks up from startDir to locate annogen.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the file at path on top of Default().
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads explicit when given, otherwise the nearest annogen.toml above
// startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate rejects values no run could work with.
func (c Config) Validate() error {
	switch {
	case c.Limits.MaxLine <= 0:
		return fmt.Errorf("[limits].max_line must be positive, got %d", c.Limits.MaxLine)
	case c.Limits.MaxName <= 0:
		return fmt.Errorf("[limits].max_name must be positive, got %d", c.Limits.MaxName)
	case c.Limits.MaxJobs < 0:
		return fmt.Errorf("[limits].max_jobs must not be negative, got %d", c.Limits.MaxJobs)
	case c.Limits.MaxReplays <= 0:
		return fmt.Errorf("[limits].max_replays must be positive, got %d", c.Limits.MaxReplays)
	case c.Lock.BackoffMS <= 0:
		return fmt.Errorf("[lock].backoff_ms must be positive, got %d", c.Lock.BackoffMS)
	case strings.TrimSpace(c.Output.TimestampFormat) == "":
		return errors.New("[output].timestamp_format must not be empty")
	}
	return nil
}
