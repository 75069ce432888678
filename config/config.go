package config

import (
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEngineURL = "http://127.0.0.1:8080"
	DefaultLogLevel  = "info"
)

var Version = "*undefined*"

type Config struct {
	EngineURL string `yaml:"engine_url"`
	LogLevel  string `yaml:"log_level"`
}

// LoadConfig builds a Config from defaults, an optional YAML file and the
// environment, in that order. An empty path falls back to the dmrctlConfig
// environment variable; when both are empty no file is read.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		EngineURL: DefaultEngineURL,
		LogLevel:  DefaultLogLevel,
	}

	if path == "" {
		path = os.Getenv("dmrctlConfig")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if envEngineURL := os.Getenv("engineUrl"); envEngineURL != "" {
		cfg.EngineURL = envEngineURL
	}
	if envLogLevel := os.Getenv("logLevel"); envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}

	if fileCfg.EngineURL != "" {
		c.EngineURL = fileCfg.EngineURL
	}
	if fileCfg.LogLevel != "" {
		c.LogLevel = fileCfg.LogLevel
	}
	log.Debug("config file loaded", "path", path)
	return nil
}

// Override applies command line values on top of the loaded configuration.
// Empty values leave the current setting untouched.
func (c *Config) Override(engineURL, logLevel string) error {
	if engineURL != "" {
		c.EngineURL = engineURL
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	c.normalize()
	return c.Validate()
}

func (c *Config) normalize() {
	c.EngineURL = strings.TrimSuffix(strings.TrimSpace(c.EngineURL), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.EngineURL)
	if err != nil {
		return errors.Wrapf(err, "invalid engine url %q", c.EngineURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid engine url %q: scheme must be http or https", c.EngineURL)
	}
	if u.Host == "" {
		return errors.Errorf("invalid engine url %q: missing host", c.EngineURL)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
