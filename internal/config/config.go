package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot source kinds.
const (
	SourceFile          = "file"
	SourceHomeAssistant = "homeassistant"
	SourceHue           = "hue"
)

// Config is the process configuration, loaded from YAML and overridden by environment variables.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Source        string              `yaml:"source"`
	Snapshot      SnapshotConfig      `yaml:"snapshot"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Hue           HueConfig           `yaml:"hue"`
	Options       OptionsConfig       `yaml:"options"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
	// Timeout bounds one fetch from any source, in seconds.
	Timeout int `yaml:"timeout"`
}

type HomeAssistantConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type HueConfig struct {
	Host string `yaml:"host"`
	User string `yaml:"user"`
}

type OptionsConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path over the defaults, then applies the
// environment overrides and validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15,
			WriteTimeout: 30,
		},
		Source: SourceFile,
		Snapshot: SnapshotConfig{
			Path:    "/app/snapshot.json",
			Timeout: 20,
		},
		Options: OptionsConfig{Path: "/app/options.yaml"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"DASHBOARD_ADDR":          &cfg.Server.Addr,
		"DASHBOARD_SOURCE":        &cfg.Source,
		"DASHBOARD_SNAPSHOT_PATH": &cfg.Snapshot.Path,
		"DASHBOARD_OPTIONS_PATH":  &cfg.Options.Path,
		"HASS_URL":                &cfg.HomeAssistant.URL,
		"HASS_TOKEN":              &cfg.HomeAssistant.Token,
		"HUE_HOST":                &cfg.Hue.Host,
		"HUE_USER":                &cfg.Hue.User,
		"LOG_LEVEL":               &cfg.Logging.Level,
		"LOG_FORMAT":              &cfg.Logging.Format,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
}

// Validate checks that the selected source has what it needs to connect.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Options.Path == "" {
		errs = append(errs, "options.path is required")
	}
	if c.Snapshot.Timeout <= 0 {
		errs = append(errs, "snapshot.timeout must be positive")
	}

	switch c.Source {
	case SourceFile:
		if c.Snapshot.Path == "" {
			errs = append(errs, "snapshot.path is required for the file source")
		}
	case SourceHomeAssistant:
		if c.HomeAssistant.URL == "" || c.HomeAssistant.Token == "" {
			errs = append(errs, "homeassistant.url and homeassistant.token are required (set HASS_URL and HASS_TOKEN)")
		}
	case SourceHue:
		if c.Hue.Host == "" || c.Hue.User == "" {
			errs = append(errs, "hue.host and hue.user are required (set HUE_HOST and HUE_USER)")
		}
	default:
		errs = append(errs, fmt.Sprintf("source must be one of %s, %s, %s, got %q", SourceFile, SourceHomeAssistant, SourceHue, c.Source))
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, "logging.format must be json or console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}

func (c *Config) GetFetchTimeout() time.Duration {
	return time.Duration(c.Snapshot.Timeout) * time.Second
}
