// Package config loads and saves curator's user settings.
//
// Settings live in a single YAML file under the user's home directory. The
// loaded Settings value is constructed once at startup and passed explicitly
// to the components that need it — there is no global configuration state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/curatormcp/curator/internal/collection"
)

const (
	// HomeDirName is curator's directory under the user's home.
	HomeDirName = ".curator"

	// FileName is the settings file inside the curator home dir.
	FileName = "config.yml"
)

// Settings is the full on-disk configuration.
type Settings struct {
	// Collection tunes the collection index cache.
	Collection CollectionSettings `yaml:"collection"`

	// Elements configures local element storage.
	Elements ElementSettings `yaml:"elements"`

	// Portfolio configures GitHub portfolio sync.
	Portfolio PortfolioSettings `yaml:"portfolio"`
}

// CollectionSettings tunes the collection index cache. Durations are Go
// duration strings ("1h", "5s") and are validated at load time.
type CollectionSettings struct {
	IndexURL     string `yaml:"index_url"`
	TTL          string `yaml:"ttl"`
	FetchTimeout string `yaml:"fetch_timeout"`
	MaxRetries   int    `yaml:"max_retries"`
	CacheDir     string `yaml:"cache_dir"`

	// compiled
	ttl          time.Duration
	fetchTimeout time.Duration
}

// ElementSettings configures where local elements are stored.
type ElementSettings struct {
	Dir string `yaml:"dir"`
}

// PortfolioSettings identifies the user's GitHub portfolio repository.
type PortfolioSettings struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// HomeDir returns curator's home directory (~/.curator).
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, HomeDirName)
}

// Path returns the settings file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Default returns the settings used when no config file exists, rooted at dir.
func Default(dir string) Settings {
	cc := collection.DefaultConfig()
	return Settings{
		Collection: CollectionSettings{
			IndexURL:     cc.IndexURL,
			TTL:          cc.TTL.String(),
			FetchTimeout: cc.FetchTimeout.String(),
			MaxRetries:   cc.MaxRetries,
			CacheDir:     filepath.Join(dir, "cache"),
			ttl:          cc.TTL,
			fetchTimeout: cc.FetchTimeout,
		},
		Elements: ElementSettings{
			Dir: filepath.Join(dir, "elements"),
		},
		Portfolio: PortfolioSettings{
			Repo: "curator-portfolio",
		},
	}
}

// Load reads settings from dir, filling any omitted field with its default
// and compiling duration strings. A missing file is not an error — defaults
// are returned as-is.
func Load(dir string) (Settings, error) {
	s := Default(dir)

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(dir), fmt.Errorf("parsing %s: %w", FileName, err)
	}

	def := Default(dir)
	if s.Collection.IndexURL == "" {
		s.Collection.IndexURL = def.Collection.IndexURL
	}
	if s.Collection.CacheDir == "" {
		s.Collection.CacheDir = def.Collection.CacheDir
	}
	if s.Collection.MaxRetries < 0 {
		s.Collection.MaxRetries = def.Collection.MaxRetries
	}
	if s.Elements.Dir == "" {
		s.Elements.Dir = def.Elements.Dir
	}
	if s.Portfolio.Repo == "" {
		s.Portfolio.Repo = def.Portfolio.Repo
	}

	s.Collection.ttl, err = compileDuration("collection.ttl", s.Collection.TTL, def.Collection.ttl)
	if err != nil {
		return def, err
	}
	s.Collection.fetchTimeout, err = compileDuration("collection.fetch_timeout", s.Collection.FetchTimeout, def.Collection.fetchTimeout)
	if err != nil {
		return def, err
	}

	return s, nil
}

// compileDuration parses a duration string, keeping the fallback for an
// empty value and rejecting invalid or non-positive ones.
func compileDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", field, raw)
	}
	return d, nil
}

// Save writes settings to dir, creating it if needed.
func Save(dir string, s Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// CollectionConfig maps the compiled settings onto the cache's config struct.
func (s Settings) CollectionConfig() collection.Config {
	cc := collection.DefaultConfig()
	cc.IndexURL = s.Collection.IndexURL
	cc.TTL = s.Collection.ttl
	cc.FetchTimeout = s.Collection.fetchTimeout
	cc.MaxRetries = s.Collection.MaxRetries
	cc.CacheDir = s.Collection.CacheDir
	return cc
}
