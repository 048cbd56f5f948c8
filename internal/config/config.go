// Package config loads the sheetpm configuration file and applies
// environment overrides.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ukaji3/sheetpm-go/internal/logging"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	DirEnvKey   = "SHEETPM_DIR"
	StoreEnvKey = "SHEETPM_STORE"
	TokenEnvKey = "SHEETPM_TOKEN"
)

// Directory and file names
const (
	DirName        = ".sheetpm"
	ConfigFileName = "config.yml"
	BlobFileName   = "workbook.json"
	DBFileName     = "sheetpm.db"
)

// Store types
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// DefaultTokenURL is the OAuth2 token endpoint used for refresh tokens.
const DefaultTokenURL = "https://oauth2.googleapis.com/token"

// Config is the resolved sheetpm configuration.
type Config struct {
	Dir     string  `yaml:"-"` // Resolved configuration directory
	Store   Store   `yaml:"store"`
	Logging Logging `yaml:"logging,omitempty"`
	Remote  Remote  `yaml:"remote,omitempty"`
}

// Store selects the workbook blob store.
type Store struct {
	Type string `yaml:"type"`           // file (default) | sqlite
	Path string `yaml:"path,omitempty"` // File or database path, relative to Dir
	Key  string `yaml:"key,omitempty"`  // Blob key for sqlite
}

// Logging configures the CLI logger.
type Logging struct {
	Format string `yaml:"format,omitempty"` // human (default) | text | json
	Level  string `yaml:"level,omitempty"`  // DEBUG, INFO (default), WARN, ERROR
}

// Remote holds credentials and endpoints for the remote document service.
type Remote struct {
	AccessToken  string `yaml:"accessToken,omitempty"`
	RefreshToken string `yaml:"refreshToken,omitempty"`
	ClientID     string `yaml:"clientID,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	TokenURL     string `yaml:"tokenURL,omitempty"`
	DriveURL     string `yaml:"driveURL,omitempty"`
	SheetsURL    string `yaml:"sheetsURL,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default(dir string) *Config {
	return &Config{
		Dir:     dir,
		Store:   Store{Type: StoreFile},
		Logging: Logging{Format: "human", Level: "INFO"},
	}
}

// ResolveDir returns the configuration directory.
//
// Resolution order:
//  1. dir parameter (from --config-dir)
//  2. SHEETPM_DIR environment variable
//  3. $HOME/.sheetpm
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		dir = os.Getenv(DirEnvKey)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, DirName)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving config directory %q: %w", dir, err)
	}
	return filepath.Clean(abs), nil
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFileName)
}

// Load reads dir/config.yml, applies environment overrides and validates the
// result. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := Default(dir)

	data, err := os.ReadFile(cfg.Path())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", cfg.Path(), err)
		}
		cfg.Dir = dir
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file %q: %w", cfg.Path(), err)
	}

	cfg.applyEnv()
	if cfg.Store.Type == "" {
		cfg.Store.Type = StoreFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(StoreEnvKey); v != "" {
		c.Store.Type = v
	}
	if v := os.Getenv(TokenEnvKey); v != "" {
		c.Remote.AccessToken = v
	}
}

// Validate reports unsupported store types and logging settings.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unsupported store type %q (want file or sqlite)", c.Store.Type)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration file, creating Dir if needed. The file may
// hold tokens and is written owner-readable only.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// StorePath returns the file or database path of the configured store.
func (c *Config) StorePath() string {
	p := c.Store.Path
	if p == "" {
		switch c.Store.Type {
		case StoreSQLite:
			p = DBFileName
		default:
			p = BlobFileName
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.Dir, p)
	}
	return p
}

// TokenSource builds the OAuth2 token source for the remote service, or nil
// when no credentials are configured.
func (c *Config) TokenSource(ctx context.Context) oauth2.TokenSource {
	r := c.Remote
	if r.RefreshToken != "" && r.ClientID != "" {
		tokenURL := r.TokenURL
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		oc := &oauth2.Config{
			ClientID:     r.ClientID,
			ClientSecret: r.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		}
		tok := &oauth2.Token{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
		if r.AccessToken != "" {
			// Unknown expiry; force a refresh on first use.
			tok.Expiry = time.Unix(1, 0)
		}
		return oc.TokenSource(ctx, tok)
	}
	if r.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: r.AccessToken})
	}
	return nil
}
