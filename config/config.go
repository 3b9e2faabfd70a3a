// Package config loads startup settings. Every key has a default, so the
// program runs identically when no config file exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// AppID identifies the application to fyne and names the config directory.
const AppID = "org.webviewzoom"

// DefaultInitialURL is the page loaded when the window opens.
const DefaultInitialURL = "https://www.swift.org"

// Config holds application configuration.
type Config struct {
	Browser BrowserConfig
	Window  WindowConfig
	Icons   IconsConfig
	Network NetworkConfig
	Log     LogConfig
}

// BrowserConfig holds the initial navigation target.
type BrowserConfig struct {
	InitialURL string `mapstructure:"initial_url"`
}

// WindowConfig holds native window settings.
type WindowConfig struct {
	Title  string
	Width  float32
	Height float32
}

// IconsConfig holds the favicon service settings. ServiceURL is a
// fmt template taking the host.
type IconsConfig struct {
	ServiceURL string        `mapstructure:"service_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// NetworkConfig holds HTTP client settings.
type NetworkConfig struct {
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	CacheEntries int           `mapstructure:"cache_entries"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.initial_url", DefaultInitialURL)
	v.SetDefault("window.title", "WebView Zoom")
	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 768)
	v.SetDefault("icons.service_url", "https://icons.duckduckgo.com/ip3/%s.ico")
	v.SetDefault("icons.timeout", 10*time.Second)
	v.SetDefault("network.user_agent", "WebViewZoom/1.0")
	v.SetDefault("network.timeout", 30*time.Second)
	v.SetDefault("network.max_redirects", 10)
	v.SetDefault("network.cache_entries", 128)
	v.SetDefault("log.level", "info")
}

// DefaultPath returns <user config dir>/webviewzoom/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "webviewzoom", "config.toml"), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	c, _ := Load("")
	return c
}

// Load reads the TOML file at path. An empty path means no file: only
// defaults apply. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %vx%v must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Network.MaxRedirects < 0 {
		return fmt.Errorf("network.max_redirects must not be negative")
	}
	return nil
}
