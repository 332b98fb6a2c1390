package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted for the storefront API URL, in order.
var apiURLEnv = []string{"STOREFRONT_API_URL", "VITE_API_URL"}

// Config holds all configuration (CLI flags + .env + config file).
type Config struct {
	Listen          string        `yaml:"listen"`
	APIURL          string        `yaml:"api_url"`
	Insecure        bool          `yaml:"insecure"`
	StateFile       string        `yaml:"state_file"`
	ProbeInterval   time.Duration `yaml:"probe_interval"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	UIDir           string        `yaml:"ui_dir"`
	Debug           bool          `yaml:"debug"`

	// internal: paths from CLI flags
	configFile string
	envFile    string
	flags      *pflag.FlagSet
}

// Bind registers the configuration flags on fs. Call Load after parsing.
func Bind(fs *pflag.FlagSet) *Config {
	c := &Config{flags: fs}
	fs.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	fs.StringVar(&c.envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	fs.StringVar(&c.Listen, "listen", ":8080", "HTTP listen address")
	fs.StringVar(&c.APIURL, "api-url", "http://localhost:5000/api", "Storefront API base URL")
	fs.BoolVar(&c.Insecure, "insecure", false, "Skip TLS verification for the storefront API")
	fs.StringVar(&c.StateFile, "state-file", "", "Session state file (default: user config dir)")
	fs.DurationVar(&c.ProbeInterval, "probe-interval", 30*time.Second, "Backend health probe interval")
	fs.DurationVar(&c.ProbeTimeout, "probe-timeout", 5*time.Second, "Backend health probe timeout")
	fs.DurationVar(&c.NotificationTTL, "notification-ttl", 5*time.Second, "How long notifications stay visible")
	fs.StringVar(&c.UIDir, "ui-dir", "", "Directory of a built browser UI to serve")
	fs.BoolVar(&c.Debug, "debug", false, "Debug logging")
	return c
}

// Load overlays the .env file, the environment and the config file onto the
// parsed flags. Flags set on the command line always win, then the
// environment, then the config file, then flag defaults.
func (c *Config) Load() error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", c.envFile, err)
		}
	}
	if c.configFile != "" {
		if err := c.loadFile(c.configFile); err != nil {
			return err
		}
	}
	if !c.changed("api-url") {
		for _, key := range apiURLEnv {
			if v := os.Getenv(key); v != "" {
				c.APIURL = v
				break
			}
		}
	}
	return c.validate()
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if !c.changed("listen") && file.Listen != "" {
		c.Listen = file.Listen
	}
	if !c.changed("api-url") && file.APIURL != "" {
		c.APIURL = file.APIURL
	}
	if !c.changed("insecure") && file.Insecure {
		c.Insecure = true
	}
	if !c.changed("state-file") && file.StateFile != "" {
		c.StateFile = file.StateFile
	}
	if !c.changed("probe-interval") && file.ProbeInterval > 0 {
		c.ProbeInterval = file.ProbeInterval
	}
	if !c.changed("probe-timeout") && file.ProbeTimeout > 0 {
		c.ProbeTimeout = file.ProbeTimeout
	}
	if !c.changed("notification-ttl") && file.NotificationTTL > 0 {
		c.NotificationTTL = file.NotificationTTL
	}
	if !c.changed("ui-dir") && file.UIDir != "" {
		c.UIDir = file.UIDir
	}
	if !c.changed("debug") && file.Debug {
		c.Debug = true
	}
	return nil
}

func (c *Config) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return errors.New("api url must not be empty")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %s", c.ProbeInterval)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("notification ttl must be positive, got %s", c.NotificationTTL)
	}
	return nil
}
