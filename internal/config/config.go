// Package config loads cncview settings from defaults, an optional file and
// CNCVIEW_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. CNCVIEW_SERVER_URL
const EnvPrefix = "CNCVIEW"

// Server holds controller connection settings
type Server struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Poll holds the tracking and coarse status intervals
type Poll struct {
	Interval       time.Duration `mapstructure:"interval"`
	StatusInterval time.Duration `mapstructure:"statusInterval"`
}

// View holds viewer settings
type View struct {
	FieldOfView float64 `mapstructure:"fieldOfView"`
	Damping     float64 `mapstructure:"damping"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	FrameRate   int     `mapstructure:"frameRate"`
}

// Watch holds local file reload settings
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config is the complete application configuration
type Config struct {
	Server   Server `mapstructure:"server"`
	Poll     Poll   `mapstructure:"poll"`
	View     View   `mapstructure:"view"`
	Watch    Watch  `mapstructure:"watch"`
	LogLevel string `mapstructure:"logLevel"`
	LogFile  string `mapstructure:"logFile"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.timeout", 10*time.Second)

	v.SetDefault("poll.interval", time.Second)
	v.SetDefault("poll.statusInterval", 5*time.Second)

	v.SetDefault("view.fieldOfView", 75.0)
	v.SetDefault("view.damping", 0.25)
	v.SetDefault("view.width", 1280)
	v.SetDefault("view.height", 800)
	v.SetDefault("view.frameRate", 60)

	v.SetDefault("watch.debounce", 300*time.Millisecond)

	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the configuration. An explicit path must exist; without one,
// cncview.{yaml,json} is looked up in the working directory and
// $HOME/.config/cncview and skipped if absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("cncview")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cncview")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Server.URL == "" {
		errs = append(errs, errors.New("server.url must not be empty"))
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, errors.New("poll.interval must be positive"))
	}
	if c.Poll.StatusInterval <= 0 {
		errs = append(errs, errors.New("poll.statusInterval must be positive"))
	}
	if c.View.FieldOfView <= 0 || c.View.FieldOfView >= 180 {
		errs = append(errs, fmt.Errorf("view.fieldOfView must be between 0 and 180, got %v", c.View.FieldOfView))
	}
	if c.View.Damping <= 0 || c.View.Damping > 1 {
		errs = append(errs, fmt.Errorf("view.damping must be in (0, 1], got %v", c.View.Damping))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, errors.New("view.width and view.height must be positive"))
	}
	if c.View.FrameRate <= 0 {
		errs = append(errs, errors.New("view.frameRate must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
