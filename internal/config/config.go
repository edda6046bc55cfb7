package config

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultRegistryURL is the published plugin registry document
	DefaultRegistryURL = "https://raw.githubusercontent.com/ledmatrix/plugins/main/plugins.json"

	// DefaultRefreshInterval is how often the registry is re-checked
	DefaultRefreshInterval = 6 * time.Hour

	// EnvPrefix is the prefix for per-plugin environment overrides,
	// e.g. MATRIXSTORE_PLUGIN_MUSIC_CLIENT_SECRET
	EnvPrefix = "MATRIXSTORE_PLUGIN_"
)

// PluginConfig is the per-plugin settings block in the host config,
// keyed by plugin id. The enabled flag lives here, never inside the
// plugin's own directory, so uninstall leaves no traces behind.
type PluginConfig struct {
	Enabled  bool           `json:"enabled"`
	Settings map[string]any `json:"settings,omitempty"`
}

// GitHubConfig holds credentials for the registry refresh job.
type GitHubConfig struct {
	APIToken string `json:"api_token,omitempty"`
}

// DisplayConfig describes the matrix the host renders for.
type DisplayConfig struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Timezone string `json:"timezone,omitempty"`
}

// LogConfig configures the daemon log output.
type LogConfig struct {
	Level      string `json:"level"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// Config represents the main configuration file structure
type Config struct {
	Locale          string                  `json:"locale"` // "auto" or ISO format (e.g., "en-US")
	RegistryURL     string                  `json:"registry_url"`
	RefreshInterval string                  `json:"refresh_interval"` // Go duration string
	PluginsDir      string                  `json:"plugins_dir"`
	Display         DisplayConfig           `json:"display"`
	GitHub          GitHubConfig            `json:"github"`
	Log             LogConfig               `json:"log"`
	Plugins         map[string]PluginConfig `json:"plugins"`
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale:          "auto",
		RegistryURL:     DefaultRegistryURL,
		RefreshInterval: DefaultRefreshInterval.String(),
		PluginsDir:      DefaultPluginsDir(),
		Display: DisplayConfig{
			Width:  64,
			Height: 32,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Plugins: make(map[string]PluginConfig),
	}
}

// Load loads the configuration from file
func Load() (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Ensure maps and defaults are in place for older config files
	if config.Plugins == nil {
		config.Plugins = make(map[string]PluginConfig)
	}
	if config.Locale == "" {
		config.Locale = "auto"
	}
	if config.RegistryURL == "" {
		config.RegistryURL = DefaultRegistryURL
	}
	if config.RefreshInterval == "" {
		config.RefreshInterval = DefaultRefreshInterval.String()
	}
	if config.PluginsDir == "" {
		config.PluginsDir = DefaultPluginsDir()
	}
	if config.Display.Width == 0 {
		config.Display.Width = 64
	}
	if config.Display.Height == 0 {
		config.Display.Height = 32
	}

	return &config, nil
}

// Save saves the configuration to file
func Save(config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	return saveLocked(config)
}

func saveLocked(config *Config) error {
	if err := EnsureDir(MatrixStoreDir()); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
		}
	})
	return cfg
}

// RefreshIntervalDuration parses the configured refresh interval,
// falling back to the default on a malformed value.
func (c *Config) RefreshIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return DefaultRefreshInterval
	}
	return d
}

// Plugin returns the settings block for a plugin id, or a zero block
// when none is configured yet. The daemon's API handlers mutate the
// plugins map while the host's discovery lookup reads it, so every
// map access goes through cfgMu.
func (c *Config) Plugin(id string) PluginConfig {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return c.Plugins[id]
}

// SetPluginEnabled flips the enabled flag for a plugin and saves.
func SetPluginEnabled(id string, enabled bool) error {
	config := Get()
	cfgMu.Lock()
	defer cfgMu.Unlock()

	pc := config.Plugins[id]
	pc.Enabled = enabled
	config.Plugins[id] = pc
	return saveLocked(config)
}

// SetPluginSettings replaces the plugin's settings block and saves.
// Callers hand over a fresh map; the stored block is never mutated in
// place.
func SetPluginSettings(id string, settings map[string]any) error {
	config := Get()
	cfgMu.Lock()
	defer cfgMu.Unlock()

	pc := config.Plugins[id]
	pc.Settings = settings
	config.Plugins[id] = pc
	return saveLocked(config)
}

// RemovePlugin drops the plugin's settings block entirely and saves.
// Called on uninstall so no residual state survives outside the
// plugin directory.
func RemovePlugin(id string) error {
	config := Get()
	cfgMu.Lock()
	defer cfgMu.Unlock()

	delete(config.Plugins, id)
	return saveLocked(config)
}

// PluginSetting returns a plugin setting by key. Precedence is
// config-first: a value in the config file always wins, and the
// MATRIXSTORE_PLUGIN_<ID>_<KEY> environment variable only fills gaps.
func (c *Config) PluginSetting(id, key string) (any, bool) {
	cfgMu.RLock()
	pc, ok := c.Plugins[id]
	cfgMu.RUnlock()

	if ok {
		if v, ok := pc.Settings[key]; ok {
			return v, true
		}
	}
	if v, ok := os.LookupEnv(envKey(id, key)); ok {
		return v, true
	}
	return nil, false
}

// GitHubToken returns the GitHub API token, config value first, then
// the GITHUB_TOKEN / GH_TOKEN environment variables.
func (c *Config) GitHubToken() string {
	if t := strings.TrimSpace(c.GitHub.APIToken); t != "" {
		return t
	}
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}

// envKey maps (id, key) to the override variable name:
// ("music-player", "client_secret") -> MATRIXSTORE_PLUGIN_MUSIC_PLAYER_CLIENT_SECRET
func envKey(id, key string) string {
	mangle := func(s string) string {
		s = strings.ToUpper(s)
		s = strings.ReplaceAll(s, "-", "_")
		s = strings.ReplaceAll(s, ".", "_")
		return s
	}
	return EnvPrefix + mangle(id) + "_" + mangle(key)
}

// GetLocale returns the configured locale
func GetLocale() string {
	config := Get()
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return config.Locale
}

// SetLocale sets the locale and saves
func SetLocale(locale string) error {
	config := Get()
	cfgMu.Lock()
	defer cfgMu.Unlock()

	config.Locale = locale
	return saveLocked(config)
}
