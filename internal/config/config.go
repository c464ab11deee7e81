// Package config loads and saves the pilotdeck client configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".pilotdeck"
	DefaultConfigFile = "config.json"
	DefaultCookieFile = "cookies.json"
	DefaultServerURL  = "http://localhost:8080"
)

// Load reads the config file and returns a populated Config. A missing file
// yields the defaults. The configPath flag may override the default location;
// PILOTDECK_SERVER_URL and friends override via the environment.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("pilotdeck")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config yet — defaults apply until the first Save.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")
	return &cfg, nil
}

// Save writes the config to disk as JSON.
func Save(cfg *Config, configPath string) error {
	if configPath == "" {
		p, err := Path("")
		if err != nil {
			return err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	return os.WriteFile(configPath, data, 0o600)
}

// Path returns the effective config file path.
func Path(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// CookiePath returns where the session cookie jar is persisted.
func CookiePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultCookieFile), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", DefaultServerURL)
	v.SetDefault("git.co_author_name", "")
	v.SetDefault("git.co_author_email", "")
	v.SetDefault("poll.session", 2)
	v.SetDefault("poll.list", 30)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.per_page", 20)
}
