package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppDirName is the per-user data directory under $HOME
	AppDirName = ".codefend-panel"

	configFileName = "config.toml"

	defaultLogMaxAgeDays   = 3
	defaultUpdaterTimeout  = 30
	defaultHTTPTimeout     = 30
	defaultHTTPMaxBodySize = 32 << 20
)

// DefaultUpdaterPubkey is the minisign public key release artifacts are signed with
const DefaultUpdaterPubkey = "dW50cnVzdGVkIGNvbW1lbnQ6IG1pbmlzaWduIHB1YmxpYyBrZXk6IDU1ODYxRUI4NTI0MUNEN0EKUldSNnpVRlN1QjZHVmJLL1l2QXUxdnJ5amUxUTJwd0VjR1FXVmU2YU8wZnFZcnVBOURmMGVjU2QK"

// Config represents config.toml
type Config struct {
	Log          LogConfig          `toml:"log"`
	Updater      UpdaterConfig      `toml:"updater"`
	Devtools     DevtoolsConfig     `toml:"devtools"`
	Notification NotificationConfig `toml:"notification"`
	FS           FSConfig           `toml:"fs"`
	HTTP         HTTPConfig         `toml:"http"`
	Shell        ShellConfig        `toml:"shell"`

	// Dir is the data directory the config was loaded from
	Dir string `toml:"-"`
}

// LogConfig controls the log sink
type LogConfig struct {
	JSON       bool `toml:"json"`
	Dev        bool `toml:"dev"`
	MaxAgeDays int  `toml:"max_age_days"`
}

// UpdaterConfig controls update checks
type UpdaterConfig struct {
	// Endpoints may contain {{target}}, {{arch}} and {{current_version}}
	Endpoints      []string `toml:"endpoints"`
	Pubkey         string   `toml:"pubkey"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// DevtoolsConfig controls the webview inspector
type DevtoolsConfig struct {
	OpenInspector bool `toml:"open_inspector"`
}

// NotificationConfig controls desktop notifications
type NotificationConfig struct {
	Enabled bool `toml:"enabled"`
}

// FSConfig lists the directories the UI may touch. "$APPDATA" and "~" are expanded.
type FSConfig struct {
	Scopes []string `toml:"scopes"`
}

// HTTPConfig controls the webview HTTP passthrough
type HTTPConfig struct {
	TimeoutSeconds int   `toml:"timeout_seconds"`
	MaxBodyBytes   int64 `toml:"max_body_bytes"`
}

// ShellConfig lists the programs the UI may run
type ShellConfig struct {
	Allow []string `toml:"allow"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	home, _ := os.UserHomeDir()
	return defaultsFor(filepath.Join(home, AppDirName))
}

func defaultsFor(dir string) *Config {
	return &Config{
		Log: LogConfig{
			JSON:       true,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		Updater: UpdaterConfig{
			Pubkey:         DefaultUpdaterPubkey,
			TimeoutSeconds: defaultUpdaterTimeout,
		},
		Notification: NotificationConfig{Enabled: true},
		FS: FSConfig{
			Scopes: []string{"$APPDATA"},
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: defaultHTTPTimeout,
			MaxBodyBytes:   defaultHTTPMaxBodySize,
		},
		Dir: dir,
	}
}

// Load reads config.toml from the default data directory
func Load() (*Config, error) {
	return LoadFrom(Default().Dir)
}

// LoadFrom reads config.toml from dir. A missing file yields defaults.
func LoadFrom(dir string) (*Config, error) {
	cfg := defaultsFor(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	cfg.Dir = dir
	cfg.normalize()
	cfg.applyEnv()
	return cfg, nil
}

// normalize replaces out-of-range values with defaults
func (c *Config) normalize() {
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = defaultLogMaxAgeDays
	}
	if c.Updater.TimeoutSeconds <= 0 {
		c.Updater.TimeoutSeconds = defaultUpdaterTimeout
	}
	if strings.TrimSpace(c.Updater.Pubkey) == "" {
		c.Updater.Pubkey = DefaultUpdaterPubkey
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = defaultHTTPTimeout
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = defaultHTTPMaxBodySize
	}

	endpoints := c.Updater.Endpoints[:0]
	for _, e := range c.Updater.Endpoints {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	c.Updater.Endpoints = endpoints
}

func (c *Config) applyEnv() {
	switch strings.ToLower(os.Getenv("CODEFEND_DEV")) {
	case "1", "true", "yes":
		c.Log.Dev = true
		c.Devtools.OpenInspector = true
	}
}

// Save writes the configuration back to config.toml
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(c.Dir, configFileName))
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// LogDir returns the directory log files are written to
func (c *Config) LogDir() string {
	return filepath.Join(c.Dir, "logs")
}

// LogMaxAge returns the log retention period
func (c *Config) LogMaxAge() time.Duration {
	return time.Duration(c.Log.MaxAgeDays) * 24 * time.Hour
}

// UpdaterTimeout returns the update request timeout
func (c *Config) UpdaterTimeout() time.Duration {
	return time.Duration(c.Updater.TimeoutSeconds) * time.Second
}

// HTTPTimeout returns the default timeout for webview HTTP requests
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ExpandScopes resolves the filesystem scopes to absolute paths
func (c *Config) ExpandScopes() []string {
	home, _ := os.UserHomeDir()
	scopes := make([]string, 0, len(c.FS.Scopes))
	for _, s := range c.FS.Scopes {
		switch {
		case s == "$APPDATA":
			s = c.Dir
		case strings.HasPrefix(s, "$APPDATA/"):
			s = filepath.Join(c.Dir, strings.TrimPrefix(s, "$APPDATA/"))
		case s == "~":
			s = home
		case strings.HasPrefix(s, "~/"):
			s = filepath.Join(home, s[2:])
		}
		if abs, err := filepath.Abs(s); err == nil {
			scopes = append(scopes, abs)
		}
	}
	return scopes
}
